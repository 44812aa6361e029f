package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one ledger record flattened for aggregation: the counterparty
// key it belongs to, its amounts, and when it was last active.
type Entry struct {
	Key    string
	Status Status
	Total  decimal.Decimal
	Paid   decimal.Decimal
	Due    decimal.Decimal
	Date   time.Time
}

// TotalDue sums the outstanding amount over a set of entries.
func TotalDue(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Due)
	}
	return total
}

// StatusBreakdown aggregates the entries sharing one payment status.
type StatusBreakdown struct {
	Status      Status          `json:"status"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	TotalDue    decimal.Decimal `json:"total_due"`
}

// StatusSummary is a per-status breakdown plus a grand total row.
type StatusSummary struct {
	ByStatus   []StatusBreakdown `json:"by_status"`
	GrandTotal StatusBreakdown   `json:"grand_total"`
}

// SummarizeByStatus groups entries by payment status. The grand total is
// the sum of the group rows, so it always reconciles with the breakdown.
// Statuses with no entries are omitted; group order is PAID, PARTIAL, DUE.
func SummarizeByStatus(entries []Entry) StatusSummary {
	groups := map[Status]*StatusBreakdown{}
	for _, e := range entries {
		b, ok := groups[e.Status]
		if !ok {
			b = &StatusBreakdown{Status: e.Status, TotalAmount: decimal.Zero, TotalPaid: decimal.Zero, TotalDue: decimal.Zero}
			groups[e.Status] = b
		}
		b.Count++
		b.TotalAmount = b.TotalAmount.Add(e.Total)
		b.TotalPaid = b.TotalPaid.Add(e.Paid)
		b.TotalDue = b.TotalDue.Add(e.Due)
	}

	summary := StatusSummary{
		GrandTotal: StatusBreakdown{TotalAmount: decimal.Zero, TotalPaid: decimal.Zero, TotalDue: decimal.Zero},
	}
	for _, status := range []Status{StatusPaid, StatusPartial, StatusDue} {
		b, ok := groups[status]
		if !ok {
			continue
		}
		summary.ByStatus = append(summary.ByStatus, *b)
		summary.GrandTotal.Count += b.Count
		summary.GrandTotal.TotalAmount = summary.GrandTotal.TotalAmount.Add(b.TotalAmount)
		summary.GrandTotal.TotalPaid = summary.GrandTotal.TotalPaid.Add(b.TotalPaid)
		summary.GrandTotal.TotalDue = summary.GrandTotal.TotalDue.Add(b.TotalDue)
	}
	return summary
}

// CounterpartyBalance is the outstanding position against one vendor or
// customer.
type CounterpartyBalance struct {
	Key          string          `json:"key"`
	Count        int             `json:"count"`
	TotalDue     decimal.Decimal `json:"total_due"`
	LastActivity time.Time       `json:"last_activity"`
}

// GroupByCounterparty folds entries per key and keeps only counterparties
// that still owe (or are owed) something. Results are ordered by total
// due, largest first, ties broken by key for stable output.
func GroupByCounterparty(entries []Entry) []CounterpartyBalance {
	groups := map[string]*CounterpartyBalance{}
	for _, e := range entries {
		b, ok := groups[e.Key]
		if !ok {
			b = &CounterpartyBalance{Key: e.Key, TotalDue: decimal.Zero}
			groups[e.Key] = b
		}
		b.Count++
		b.TotalDue = b.TotalDue.Add(e.Due)
		if e.Date.After(b.LastActivity) {
			b.LastActivity = e.Date
		}
	}

	balances := make([]CounterpartyBalance, 0, len(groups))
	for _, b := range groups {
		if b.TotalDue.IsPositive() {
			balances = append(balances, *b)
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		if !balances[i].TotalDue.Equal(balances[j].TotalDue) {
			return balances[i].TotalDue.GreaterThan(balances[j].TotalDue)
		}
		return balances[i].Key < balances[j].Key
	})
	return balances
}
