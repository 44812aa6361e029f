package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew(t *testing.T) {
	led, err := New(d("1000"))
	require.NoError(t, err)
	assert.Equal(t, StatusDue, led.Status)
	assert.True(t, led.PaidAmount.IsZero())
	assert.True(t, led.DueAmount.Equal(d("1000")))
	assert.Nil(t, led.LastPaymentDate)

	_, err = New(d("-1"))
	require.ErrorIs(t, err, ErrNegativeTotal)
}

func TestApplyPaid(t *testing.T) {
	led, _ := New(d("1000"))
	now := time.Now()

	next, err := led.Apply(StatusPaid, decimal.Zero, now)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, next.Status)
	assert.True(t, next.PaidAmount.Equal(d("1000")))
	assert.True(t, next.DueAmount.IsZero())
	require.NotNil(t, next.LastPaymentDate)
	assert.Equal(t, now, *next.LastPaymentDate)
}

func TestApplyDueLeavesLastPaymentDate(t *testing.T) {
	led, _ := New(d("500"))
	now := time.Now()
	paid, err := led.Apply(StatusPaid, decimal.Zero, now)
	require.NoError(t, err)

	// PAID back to DUE is allowed; the last payment date stays put.
	back, err := paid.Apply(StatusDue, d("123"), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusDue, back.Status)
	assert.True(t, back.PaidAmount.IsZero())
	assert.True(t, back.DueAmount.Equal(d("500")))
	require.NotNil(t, back.LastPaymentDate)
	assert.Equal(t, now, *back.LastPaymentDate)
}

func TestApplyPartial(t *testing.T) {
	led, _ := New(d("1000"))
	now := time.Now()

	next, err := led.Apply(StatusPartial, d("400"), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, next.Status)
	assert.True(t, next.PaidAmount.Equal(d("400")))
	assert.True(t, next.DueAmount.Equal(d("600")))
	require.NotNil(t, next.LastPaymentDate)
}

func TestApplyPartialNormalizes(t *testing.T) {
	led, _ := New(d("1000"))
	now := time.Now()

	// Paying nothing partially is just DUE.
	next, err := led.Apply(StatusPartial, decimal.Zero, now)
	require.NoError(t, err)
	assert.Equal(t, StatusDue, next.Status)
	assert.Nil(t, next.LastPaymentDate)

	// Paying the full total partially is just PAID.
	next, err = led.Apply(StatusPartial, d("1000"), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, next.Status)
}

func TestApplyPartialOutOfRange(t *testing.T) {
	led, _ := New(d("1000"))
	now := time.Now()

	for _, amount := range []string{"-1", "1000.01", "99999"} {
		next, err := led.Apply(StatusPartial, d(amount), now)
		require.ErrorIs(t, err, ErrInvalidPaymentAmount, "amount %s", amount)
		// The record is returned unchanged on failure.
		assert.Equal(t, led, next)
	}
}

func TestApplyUnknownStatus(t *testing.T) {
	led, _ := New(d("10"))
	_, err := led.Apply(Status("REFUNDED"), decimal.Zero, time.Now())
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestInvariantPaidPlusDueEqualsTotal(t *testing.T) {
	led, _ := New(d("1234.56"))
	now := time.Now()

	cases := []struct {
		status Status
		paid   decimal.Decimal
	}{
		{StatusPaid, decimal.Zero},
		{StatusDue, decimal.Zero},
		{StatusPartial, d("0.01")},
		{StatusPartial, d("617.28")},
		{StatusPartial, d("1234.55")},
	}
	for _, tc := range cases {
		next, err := led.Apply(tc.status, tc.paid, now)
		require.NoError(t, err)
		assert.True(t, next.PaidAmount.Add(next.DueAmount).Equal(next.ReferenceTotal),
			"paid %s + due %s != total %s", next.PaidAmount, next.DueAmount, next.ReferenceTotal)
	}
}

func TestDerive(t *testing.T) {
	assert.Equal(t, StatusPaid, Derive(d("100"), d("100")))
	assert.Equal(t, StatusPaid, Derive(d("100"), d("150")))
	assert.Equal(t, StatusPartial, Derive(d("100"), d("1")))
	assert.Equal(t, StatusDue, Derive(d("100"), decimal.Zero))
	assert.Equal(t, StatusDue, Derive(decimal.Zero, decimal.Zero))
}

func TestApplyPayment(t *testing.T) {
	led, _ := New(d("500"))
	now := time.Now()

	partial, err := led.ApplyPayment(d("200"), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, partial.Status)
	assert.True(t, partial.PaidAmount.Equal(d("200")))
	assert.True(t, partial.DueAmount.Equal(d("300")))

	settled, err := partial.ApplyPayment(d("300"), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, settled.Status)
	assert.True(t, settled.DueAmount.IsZero())

	_, err = partial.ApplyPayment(d("300.01"), now)
	require.ErrorIs(t, err, ErrInvalidPaymentAmount)
	_, err = partial.ApplyPayment(decimal.Zero, now)
	require.ErrorIs(t, err, ErrInvalidPaymentAmount)
	_, err = partial.ApplyPayment(d("-5"), now)
	require.ErrorIs(t, err, ErrInvalidPaymentAmount)
}

func TestWithPaid(t *testing.T) {
	led, _ := New(d("800"))
	now := time.Now()

	next, err := led.WithPaid(d("800"), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, next.Status)

	// Overpayment is clamped to the total.
	next, err = led.WithPaid(d("900"), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, next.Status)
	assert.True(t, next.PaidAmount.Equal(d("800")))

	next, err = led.WithPaid(d("250"), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, next.Status)
	assert.True(t, next.DueAmount.Equal(d("550")))

	_, err = led.WithPaid(d("-1"), now)
	require.ErrorIs(t, err, ErrInvalidPaymentAmount)
}

func TestMedicineScenario(t *testing.T) {
	// purchase price 1000: PARTIAL 400, then PAID.
	led, err := New(d("1000"))
	require.NoError(t, err)
	now := time.Now()

	step1, err := led.Apply(StatusPartial, d("400"), now)
	require.NoError(t, err)
	assert.True(t, step1.PaidAmount.Equal(d("400")))
	assert.True(t, step1.DueAmount.Equal(d("600")))

	step2, err := step1.Apply(StatusPaid, decimal.Zero, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, step2.PaidAmount.Equal(d("1000")))
	assert.True(t, step2.DueAmount.IsZero())
}

func TestProfitMargin(t *testing.T) {
	margin, err := ProfitMargin(d("100"), d("150"))
	require.NoError(t, err)
	assert.True(t, margin.Equal(d("0.5")))

	margin, err = ProfitMargin(d("200"), d("150"))
	require.NoError(t, err)
	assert.True(t, margin.Equal(d("-0.25")))

	_, err = ProfitMargin(decimal.Zero, d("150"))
	require.ErrorIs(t, err, ErrZeroPurchasePrice)
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"PAID", "PARTIAL", "DUE"} {
		status, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, Status(valid), status)
	}
	_, err := ParseStatus("paid")
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, err = ParseStatus("")
	require.ErrorIs(t, err, ErrInvalidStatus)
}
