package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pharmacare/p/domain"
	"pharmacare/p/internal/ledger"
)

type vendorRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	var req vendorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	res, err := h.db.Exec(`INSERT INTO vendors (name, phone, email, address) VALUES (?, ?, ?, ?)`,
		req.Name, req.Phone, req.Email, req.Address)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create vendor")
		return
	}
	id, _ := res.LastInsertId()
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	vendors := []domain.Vendor{}
	if err := h.db.Select(&vendors, `SELECT * FROM vendors ORDER BY name`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list vendors")
		return
	}
	respondJSON(w, http.StatusOK, vendors)
}

func (h *Handler) updateVendor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vendor id")
		return
	}
	var req vendorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	res, err := h.db.Exec(`UPDATE vendors SET name = ?, phone = ?, email = ?, address = ? WHERE id = ?`,
		req.Name, req.Phone, req.Email, req.Address, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update vendor")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "vendor not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteVendor(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vendor id")
		return
	}
	var pending int
	if err := h.db.Get(&pending, `SELECT COUNT(*) FROM vendor_transactions WHERE vendor_id = ? AND payment_status != ?`, id, string(ledger.StatusPaid)); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete vendor")
		return
	}
	if pending > 0 {
		respondError(w, http.StatusConflict, "vendor has unpaid transactions")
		return
	}
	res, err := h.db.Exec(`DELETE FROM vendors WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete vendor")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "vendor not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Vendor transactions

type vendorTransactionRequest struct {
	Purpose       string          `json:"purpose"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

func (h *Handler) createVendorTransaction(w http.ResponseWriter, r *http.Request) {
	vendorID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vendor id")
		return
	}
	var req vendorTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var exists int
	if err := h.db.Get(&exists, `SELECT COUNT(*) FROM vendors WHERE id = ?`, vendorID); err != nil || exists == 0 {
		respondError(w, http.StatusNotFound, "vendor not found")
		return
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = string(ledger.StatusDue)
	}
	status, err := ledger.ParseStatus(req.PaymentStatus)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	led, err := ledger.New(req.Amount)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	led, err = led.Apply(status, req.PaidAmount, time.Now().UTC())
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	var lastPaid *string
	if led.LastPaymentDate != nil {
		stamp := led.LastPaymentDate.Format(time.RFC3339)
		lastPaid = &stamp
	}
	res, err := h.db.Exec(`INSERT INTO vendor_transactions (vendor_id, purpose, amount, payment_status, paid_amount, due_amount, last_payment_date)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		vendorID, req.Purpose, led.ReferenceTotal, string(led.Status), led.PaidAmount, led.DueAmount, lastPaid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create transaction")
		return
	}
	id, _ := res.LastInsertId()
	h.respondVendorTransaction(w, http.StatusCreated, id)
}

func (h *Handler) respondVendorTransaction(w http.ResponseWriter, status int, id int64) {
	var txn domain.VendorTransaction
	err := h.db.Get(&txn, `SELECT * FROM vendor_transactions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transaction")
		return
	}
	respondJSON(w, status, txn)
}

func (h *Handler) listVendorTransactions(w http.ResponseWriter, r *http.Request) {
	vendorID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vendor id")
		return
	}
	txns := []domain.VendorTransaction{}
	if err := h.db.Select(&txns, `SELECT * FROM vendor_transactions WHERE vendor_id = ? ORDER BY id DESC`, vendorID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, txns)
}

func (h *Handler) updateVendorTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var req vendorTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := ledger.ParseStatus(req.PaymentStatus)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	var txn domain.VendorTransaction
	err = h.db.Get(&txn, `SELECT * FROM vendor_transactions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transaction")
		return
	}

	led := ledger.Ledger{
		ReferenceTotal: txn.Amount,
		PaidAmount:     txn.PaidAmount,
		DueAmount:      txn.DueAmount,
		Status:         ledger.Status(txn.PaymentStatus),
	}
	next, err := led.Apply(status, req.PaidAmount, time.Now().UTC())
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	lastPaid := txn.LastPaymentDate
	if next.LastPaymentDate != nil {
		stamp := next.LastPaymentDate.Format(time.RFC3339)
		lastPaid = &stamp
	}
	if _, err := h.db.Exec(`UPDATE vendor_transactions SET payment_status = ?, paid_amount = ?, due_amount = ?, last_payment_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(next.Status), next.PaidAmount, next.DueAmount, lastPaid, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update transaction")
		return
	}
	h.respondVendorTransaction(w, http.StatusOK, id)
}

// Payables report

type payableRow struct {
	VendorID   int64           `db:"vendor_id"`
	VendorName string          `db:"vendor_name"`
	DueAmount  decimal.Decimal `db:"due_amount"`
	CreatedAt  string          `db:"created_at"`
}

type payableResponse struct {
	VendorID     int64           `json:"vendor_id"`
	VendorName   string          `json:"vendor_name"`
	Count        int             `json:"count"`
	TotalDue     decimal.Decimal `json:"total_due"`
	LastActivity string          `json:"last_activity"`
}

func (h *Handler) payables(w http.ResponseWriter, r *http.Request) {
	var rows []payableRow
	if err := h.db.Select(&rows, `SELECT vt.vendor_id, v.name AS vendor_name, vt.due_amount, vt.created_at
        FROM vendor_transactions vt
        JOIN vendors v ON v.id = vt.vendor_id`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load payables")
		return
	}

	names := make(map[string]string, len(rows))
	entries := make([]ledger.Entry, len(rows))
	for i, row := range rows {
		key := strconv.FormatInt(row.VendorID, 10)
		names[key] = row.VendorName
		entries[i] = ledger.Entry{Key: key, Due: row.DueAmount, Date: parseStamp(row.CreatedAt)}
	}

	balances := ledger.GroupByCounterparty(entries)
	vendorsOut := make([]payableResponse, len(balances))
	for i, b := range balances {
		vendorID, _ := strconv.ParseInt(b.Key, 10, 64)
		vendorsOut[i] = payableResponse{
			VendorID:     vendorID,
			VendorName:   names[b.Key],
			Count:        b.Count,
			TotalDue:     b.TotalDue,
			LastActivity: b.LastActivity.Format(time.RFC3339),
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_due": ledger.TotalDue(entries),
		"vendors":   vendorsOut,
	})
}
