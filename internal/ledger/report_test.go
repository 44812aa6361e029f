package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(key string, status Status, total, paid, due string, date time.Time) Entry {
	return Entry{Key: key, Status: status, Total: d(total), Paid: d(paid), Due: d(due), Date: date}
}

func TestTotalDue(t *testing.T) {
	entries := []Entry{
		entry("a", StatusDue, "100", "0", "100", time.Time{}),
		entry("b", StatusPartial, "200", "50", "150", time.Time{}),
		entry("c", StatusPaid, "300", "300", "0", time.Time{}),
	}
	assert.True(t, TotalDue(entries).Equal(d("250")))
	assert.True(t, TotalDue(nil).IsZero())
}

func TestSummarizeByStatus(t *testing.T) {
	entries := []Entry{
		entry("a", StatusPaid, "100", "100", "0", time.Time{}),
		entry("b", StatusPaid, "50", "50", "0", time.Time{}),
		entry("c", StatusPartial, "200", "80", "120", time.Time{}),
		entry("d", StatusDue, "400", "0", "400", time.Time{}),
	}
	summary := SummarizeByStatus(entries)

	require.Len(t, summary.ByStatus, 3)
	assert.Equal(t, StatusPaid, summary.ByStatus[0].Status)
	assert.Equal(t, 2, summary.ByStatus[0].Count)
	assert.True(t, summary.ByStatus[0].TotalAmount.Equal(d("150")))
	assert.Equal(t, StatusPartial, summary.ByStatus[1].Status)
	assert.True(t, summary.ByStatus[1].TotalDue.Equal(d("120")))
	assert.Equal(t, StatusDue, summary.ByStatus[2].Status)

	assert.Equal(t, 4, summary.GrandTotal.Count)
	assert.True(t, summary.GrandTotal.TotalAmount.Equal(d("750")))
	assert.True(t, summary.GrandTotal.TotalPaid.Equal(d("230")))
	assert.True(t, summary.GrandTotal.TotalDue.Equal(d("520")))

	// The grand total reconciles with a direct sum over the records.
	assert.True(t, summary.GrandTotal.TotalDue.Equal(TotalDue(entries)))
}

func TestSummarizeByStatusEmpty(t *testing.T) {
	summary := SummarizeByStatus(nil)
	assert.Empty(t, summary.ByStatus)
	assert.Equal(t, 0, summary.GrandTotal.Count)
	assert.True(t, summary.GrandTotal.TotalDue.IsZero())
}

func TestGroupByCounterparty(t *testing.T) {
	early := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	entries := []Entry{
		entry("alice|0170", StatusPartial, "100", "40", "60", early),
		entry("alice|0170", StatusDue, "50", "0", "50", late),
		entry("bob|0180", StatusPaid, "200", "200", "0", late),
		entry("carol|0190", StatusDue, "500", "0", "500", early),
	}
	balances := GroupByCounterparty(entries)

	// bob owes nothing and is excluded; carol owes the most and leads.
	require.Len(t, balances, 2)
	assert.Equal(t, "carol|0190", balances[0].Key)
	assert.True(t, balances[0].TotalDue.Equal(d("500")))
	assert.Equal(t, "alice|0170", balances[1].Key)
	assert.Equal(t, 2, balances[1].Count)
	assert.True(t, balances[1].TotalDue.Equal(d("110")))
	assert.Equal(t, late, balances[1].LastActivity)
}

func TestGroupByCounterpartyStableOrder(t *testing.T) {
	entries := []Entry{
		entry("b", StatusDue, "100", "0", "100", time.Time{}),
		entry("a", StatusDue, "100", "0", "100", time.Time{}),
	}
	balances := GroupByCounterparty(entries)
	require.Len(t, balances, 2)
	assert.Equal(t, "a", balances[0].Key)
	assert.Equal(t, "b", balances[1].Key)
}

func TestSummaryGrandTotalMatchesDueSum(t *testing.T) {
	entries := []Entry{}
	total := decimal.Zero
	for i := 0; i < 50; i++ {
		due := decimal.NewFromInt(int64(i)).Mul(d("1.01"))
		paid := decimal.NewFromInt(int64(i))
		entries = append(entries, Entry{
			Status: Derive(due.Add(paid), paid),
			Total:  due.Add(paid),
			Paid:   paid,
			Due:    due,
		})
		total = total.Add(due)
	}
	summary := SummarizeByStatus(entries)
	assert.True(t, summary.GrandTotal.TotalDue.Equal(total))
}
