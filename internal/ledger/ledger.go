package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the payment state of a ledger record.
type Status string

const (
	StatusPaid    Status = "PAID"
	StatusPartial Status = "PARTIAL"
	StatusDue     Status = "DUE"
)

var (
	ErrInvalidPaymentAmount = errors.New("paid amount out of range")
	ErrNegativeTotal        = errors.New("reference total must not be negative")
	ErrInvalidStatus        = errors.New("unknown payment status")
	ErrZeroPurchasePrice    = errors.New("purchase price is zero")
)

// ParseStatus validates a status string coming off the wire.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPaid, StatusPartial, StatusDue:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Ledger tracks a fixed reference total against paid and due amounts.
// It is a value type: mutations return a new Ledger and leave the
// receiver untouched, so a failed update never corrupts the record.
type Ledger struct {
	ReferenceTotal  decimal.Decimal
	PaidAmount      decimal.Decimal
	DueAmount       decimal.Decimal
	Status          Status
	LastPaymentDate *time.Time
}

// New creates a ledger for the given total, starting fully due.
func New(total decimal.Decimal) (Ledger, error) {
	if total.IsNegative() {
		return Ledger{}, ErrNegativeTotal
	}
	return Ledger{
		ReferenceTotal: total,
		PaidAmount:     decimal.Zero,
		DueAmount:      total,
		Status:         StatusDue,
	}, nil
}

// Derive maps a paid amount to a status: paid >= total is PAID,
// anything positive below the total is PARTIAL, otherwise DUE.
func Derive(total, paid decimal.Decimal) Status {
	switch {
	case paid.GreaterThanOrEqual(total) && total.IsPositive():
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusDue
	}
}

// Apply recomputes the ledger for a target status. For PAID and DUE the
// supplied amount is ignored and forced to the total or zero. For PARTIAL
// the amount must lie in [0, total]; a partial update that pays nothing or
// everything lands on DUE or PAID so the status always agrees with the
// amounts. lastPaymentDate moves only when a payment actually happened.
func (l Ledger) Apply(status Status, paid decimal.Decimal, now time.Time) (Ledger, error) {
	next := l
	switch status {
	case StatusPaid:
		next.PaidAmount = l.ReferenceTotal
		next.DueAmount = decimal.Zero
		next.Status = StatusPaid
		next.LastPaymentDate = &now
	case StatusDue:
		next.PaidAmount = decimal.Zero
		next.DueAmount = l.ReferenceTotal
		next.Status = StatusDue
	case StatusPartial:
		if paid.IsNegative() || paid.GreaterThan(l.ReferenceTotal) {
			return l, ErrInvalidPaymentAmount
		}
		next.PaidAmount = paid
		next.DueAmount = l.ReferenceTotal.Sub(paid)
		next.Status = Derive(l.ReferenceTotal, paid)
		if paid.IsPositive() {
			next.LastPaymentDate = &now
		}
	default:
		return l, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return next, nil
}

// ApplyPayment records an additional payment of the given amount on top
// of what has been paid so far and derives the resulting status. The
// amount must be positive and must not exceed the remaining due.
func (l Ledger) ApplyPayment(amount decimal.Decimal, now time.Time) (Ledger, error) {
	if !amount.IsPositive() {
		return l, ErrInvalidPaymentAmount
	}
	paid := l.PaidAmount.Add(amount)
	if paid.GreaterThan(l.ReferenceTotal) {
		return l, ErrInvalidPaymentAmount
	}
	return l.Apply(Derive(l.ReferenceTotal, paid), paid, now)
}

// WithPaid sets the absolute paid amount and derives the status, the
// calling convention purchase orders use. Overpayment is clamped to the
// total; a negative amount is rejected.
func (l Ledger) WithPaid(paid decimal.Decimal, now time.Time) (Ledger, error) {
	if paid.IsNegative() {
		return l, ErrInvalidPaymentAmount
	}
	if paid.GreaterThan(l.ReferenceTotal) {
		paid = l.ReferenceTotal
	}
	return l.Apply(Derive(l.ReferenceTotal, paid), paid, now)
}

// ProfitMargin returns (sale - purchase) / purchase. A zero purchase
// price has no meaningful margin and yields ErrZeroPurchasePrice.
func ProfitMargin(purchase, sale decimal.Decimal) (decimal.Decimal, error) {
	if purchase.IsZero() {
		return decimal.Zero, ErrZeroPurchasePrice
	}
	return sale.Sub(purchase).Div(purchase), nil
}
