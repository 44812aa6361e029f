package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pharmacare/p/domain"
	"pharmacare/p/internal/ledger"
)

const (
	paymentCash   = "CASH"
	paymentCredit = "CREDIT"
)

type saleItemRequest struct {
	MedicineID int64 `json:"medicine_id"`
	Quantity   int64 `json:"quantity"`
}

type saleRequest struct {
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	Items         []saleItemRequest `json:"items"`
	Discount      decimal.Decimal   `json:"discount"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
	PaymentType   string            `json:"payment_type"`
}

func newInvoiceNo() string {
	return "INV-" + strings.ToUpper(uuid.NewString()[:8])
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	if req.PaymentType == "" {
		req.PaymentType = paymentCash
	}
	if req.PaymentType != paymentCash && req.PaymentType != paymentCredit {
		respondError(w, http.StatusBadRequest, "payment_type must be CASH or CREDIT")
		return
	}
	if req.Discount.IsNegative() || req.PaidAmount.IsNegative() {
		respondError(w, http.StatusBadRequest, "discount and paid_amount must not be negative")
		return
	}
	for _, item := range req.Items {
		if item.MedicineID == 0 || item.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "medicine_id and quantity are required for each item")
			return
		}
	}

	// The whole sale runs in one transaction: stock checks, the sale row,
	// its items and every stock decrement commit together or not at all.
	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start sale")
		return
	}
	defer tx.Rollback()

	type stockSnapshot struct {
		ID        int64           `db:"id"`
		BrandName string          `db:"brand_name"`
		Stock     int64           `db:"stock"`
		SalePrice decimal.Decimal `db:"sale_price"`
	}

	snapshots := make(map[int64]stockSnapshot)
	subtotal := decimal.Zero
	for _, item := range req.Items {
		var snap stockSnapshot
		err := tx.Get(&snap, `SELECT id, brand_name, stock, sale_price FROM medicines WHERE id = ?`, item.MedicineID)
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("medicine %d not found", item.MedicineID))
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to fetch medicine")
			return
		}
		if snap.Stock < item.Quantity {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("insufficient stock for %s", snap.BrandName))
			return
		}
		snapshots[item.MedicineID] = snap
		subtotal = subtotal.Add(snap.SalePrice.Mul(decimal.NewFromInt(item.Quantity)))
	}

	total := subtotal.Sub(req.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	led, err := ledger.New(total)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	if req.PaidAmount.IsPositive() {
		led, err = led.WithPaid(req.PaidAmount, time.Now().UTC())
		if err != nil {
			respondLedgerError(w, err)
			return
		}
	}

	var lastPaid *string
	if led.LastPaymentDate != nil {
		stamp := led.LastPaymentDate.Format(time.RFC3339)
		lastPaid = &stamp
	}

	userID := r.Context().Value(ctxUserID).(int64)
	invoiceNo := newInvoiceNo()
	res, err := tx.Exec(`INSERT INTO sales (invoice_no, user_id, customer_name, customer_phone, subtotal, discount, total_amount, payment_type, payment_status, paid_amount, due_amount, last_payment_date)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoiceNo, userID, req.CustomerName, req.CustomerPhone, subtotal, req.Discount, total,
		req.PaymentType, string(led.Status), led.PaidAmount, led.DueAmount, lastPaid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create sale")
		return
	}
	saleID, _ := res.LastInsertId()

	for _, item := range req.Items {
		snap := snapshots[item.MedicineID]
		if _, err := tx.Exec(`UPDATE medicines SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, item.Quantity, item.MedicineID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update stock")
			return
		}
		lineTotal := snap.SalePrice.Mul(decimal.NewFromInt(item.Quantity))
		if _, err := tx.Exec(`INSERT INTO sale_items (sale_id, medicine_id, quantity, unit_price, subtotal) VALUES (?, ?, ?, ?, ?)`,
			saleID, item.MedicineID, item.Quantity, snap.SalePrice, lineTotal); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to save sale items")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize sale")
		return
	}
	h.respondSale(w, http.StatusCreated, saleID)
}

type saleResponse struct {
	domain.Sale
	Items []domain.SaleItem `json:"items"`
}

func (h *Handler) respondSale(w http.ResponseWriter, status int, id int64) {
	var sale domain.Sale
	err := h.db.Get(&sale, `SELECT * FROM sales WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "sale not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}
	items := []domain.SaleItem{}
	if err := h.db.Select(&items, `SELECT * FROM sale_items WHERE sale_id = ? ORDER BY id ASC`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale items")
		return
	}
	respondJSON(w, status, saleResponse{Sale: sale, Items: items})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if pt := strings.TrimSpace(r.URL.Query().Get("payment_type")); pt != "" {
		clauses = append(clauses, "payment_type = ?")
		args = append(args, pt)
	}
	if start := strings.TrimSpace(r.URL.Query().Get("start_date")); start != "" {
		if _, err := time.Parse("2006-01-02", start); err != nil {
			respondError(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
			return
		}
		clauses = append(clauses, "DATE(created_at) >= ?")
		args = append(args, start)
	}
	if end := strings.TrimSpace(r.URL.Query().Get("end_date")); end != "" {
		if _, err := time.Parse("2006-01-02", end); err != nil {
			respondError(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
			return
		}
		clauses = append(clauses, "DATE(created_at) <= ?")
		args = append(args, end)
	}

	query := `SELECT * FROM sales`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	sales := []domain.Sale{}
	if err := h.db.Select(&sales, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list sales")
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	h.respondSale(w, http.StatusOK, id)
}

func (h *Handler) updateSalePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sale domain.Sale
	err = h.db.Get(&sale, `SELECT * FROM sales WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "sale not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}

	led := ledger.Ledger{
		ReferenceTotal: sale.TotalAmount,
		PaidAmount:     sale.PaidAmount,
		DueAmount:      sale.DueAmount,
		Status:         ledger.Status(sale.PaymentStatus),
	}
	next, err := led.ApplyPayment(req.Amount, time.Now().UTC())
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	lastPaid := sale.LastPaymentDate
	if next.LastPaymentDate != nil {
		stamp := next.LastPaymentDate.Format(time.RFC3339)
		lastPaid = &stamp
	}
	if _, err := h.db.Exec(`UPDATE sales SET payment_status = ?, paid_amount = ?, due_amount = ?, last_payment_date = ? WHERE id = ?`,
		string(next.Status), next.PaidAmount, next.DueAmount, lastPaid, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record payment")
		return
	}
	h.respondSale(w, http.StatusOK, id)
}

// Receivables & creditors

func (h *Handler) receivables(w http.ResponseWriter, r *http.Request) {
	var rows []ledgerRow
	if err := h.db.Select(&rows, `SELECT payment_status, total_amount AS total, paid_amount, due_amount FROM sales WHERE payment_type = ?`, paymentCredit); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load receivables")
		return
	}
	entries := make([]ledger.Entry, len(rows))
	for i, row := range rows {
		entries[i] = ledger.Entry{Status: ledger.Status(row.Status), Total: row.Total, Paid: row.Paid, Due: row.Due}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_due": ledger.TotalDue(entries),
		"count":     len(entries),
	})
}

type creditorRow struct {
	CustomerName  string          `db:"customer_name"`
	CustomerPhone string          `db:"customer_phone"`
	DueAmount     decimal.Decimal `db:"due_amount"`
	CreatedAt     string          `db:"created_at"`
}

type creditorResponse struct {
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Count         int             `json:"count"`
	TotalDue      decimal.Decimal `json:"total_due"`
	LastActivity  string          `json:"last_activity"`
}

func (h *Handler) creditors(w http.ResponseWriter, r *http.Request) {
	var rows []creditorRow
	if err := h.db.Select(&rows, `SELECT customer_name, customer_phone, due_amount, created_at FROM sales WHERE payment_type = ?`, paymentCredit); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load creditors")
		return
	}
	entries := make([]ledger.Entry, len(rows))
	for i, row := range rows {
		entries[i] = ledger.Entry{
			Key:  row.CustomerName + "|" + row.CustomerPhone,
			Due:  row.DueAmount,
			Date: parseStamp(row.CreatedAt),
		}
	}
	balances := ledger.GroupByCounterparty(entries)
	resp := make([]creditorResponse, len(balances))
	for i, b := range balances {
		name, phone, _ := strings.Cut(b.Key, "|")
		resp[i] = creditorResponse{
			CustomerName:  name,
			CustomerPhone: phone,
			Count:         b.Count,
			TotalDue:      b.TotalDue,
			LastActivity:  b.LastActivity.Format(time.RFC3339),
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// Reports

type revenueRow struct {
	Total decimal.Decimal `db:"total_amount"`
}

func (h *Handler) sumRevenue(w http.ResponseWriter, dateClause string) {
	var rows []revenueRow
	if err := h.db.Select(&rows, `SELECT total_amount FROM sales WHERE `+dateClause); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch sales report")
		return
	}
	revenue := decimal.Zero
	for _, row := range rows {
		revenue = revenue.Add(row.Total)
	}
	respondJSON(w, http.StatusOK, map[string]any{"revenue": revenue, "sales_count": len(rows)})
}

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	h.sumRevenue(w, `DATE(created_at) = DATE('now')`)
}

func (h *Handler) monthlySales(w http.ResponseWriter, r *http.Request) {
	h.sumRevenue(w, `DATE(created_at) >= DATE('now', 'start of month')`)
}

// parseStamp accepts both SQLite's default timestamp layout and RFC3339.
func parseStamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
