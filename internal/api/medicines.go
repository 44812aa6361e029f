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

type medicineRequest struct {
	BrandName     string          `json:"brand_name"`
	GenericName   string          `json:"generic_name"`
	Manufacturer  string          `json:"manufacturer"`
	Category      string          `json:"category"`
	BatchNo       string          `json:"batch_no"`
	Shelf         string          `json:"shelf"`
	VendorID      *int64          `json:"vendor_id"`
	Stock         int64           `json:"stock"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	ExpiryDate    string          `json:"expiry_date"`
}

func (req *medicineRequest) validate() string {
	if strings.TrimSpace(req.BrandName) == "" {
		return "brand_name is required"
	}
	if req.Stock < 0 {
		return "stock must not be negative"
	}
	if req.PurchasePrice.IsNegative() || req.SalePrice.IsNegative() {
		return "prices must not be negative"
	}
	return ""
}

// medicineResponse decorates a medicine with its profit margin. The margin
// is omitted when the purchase price is zero.
type medicineResponse struct {
	domain.Medicine
	ProfitMargin *decimal.Decimal `json:"profit_margin,omitempty"`
}

func toMedicineResponse(m domain.Medicine) medicineResponse {
	resp := medicineResponse{Medicine: m}
	if margin, err := ledger.ProfitMargin(m.PurchasePrice, m.SalePrice); err == nil {
		resp.ProfitMargin = &margin
	}
	return resp
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	led, err := ledger.New(req.PurchasePrice)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	res, err := h.db.Exec(`INSERT INTO medicines (brand_name, generic_name, manufacturer, category, batch_no, shelf, vendor_id, stock, purchase_price, sale_price, expiry_date, payment_status, paid_amount, due_amount)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.BrandName, req.GenericName, req.Manufacturer, req.Category, req.BatchNo, req.Shelf,
		req.VendorID, req.Stock, led.ReferenceTotal, req.SalePrice, nullIfEmpty(req.ExpiryDate),
		string(led.Status), led.PaidAmount, led.DueAmount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create medicine")
		return
	}
	id, _ := res.LastInsertId()
	h.respondMedicine(w, http.StatusCreated, id)
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if q := strings.TrimSpace(r.URL.Query().Get("query")); q != "" {
		like := "%" + q + "%"
		clauses = append(clauses, "(brand_name LIKE ? OR generic_name LIKE ?)")
		args = append(args, like, like)
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, category)
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	query := `SELECT * FROM medicines`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY brand_name LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var medicines []domain.Medicine
	if err := h.db.Select(&medicines, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list medicines")
		return
	}
	resp := make([]medicineResponse, len(medicines))
	for i, m := range medicines {
		resp[i] = toMedicineResponse(m)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	h.respondMedicine(w, http.StatusOK, id)
}

func (h *Handler) respondMedicine(w http.ResponseWriter, status int, id int64) {
	var m domain.Medicine
	err := h.db.Get(&m, `SELECT * FROM medicines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load medicine")
		return
	}
	respondJSON(w, status, toMedicineResponse(m))
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	var current domain.Medicine
	err = h.db.Get(&current, `SELECT * FROM medicines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load medicine")
		return
	}

	// A changed purchase price moves the ledger's reference total; the due
	// amount is recomputed against the amount already paid.
	due := req.PurchasePrice.Sub(current.PaidAmount)
	if due.IsNegative() {
		respondError(w, http.StatusBadRequest, "purchase_price is below the amount already paid")
		return
	}
	status := ledger.Derive(req.PurchasePrice, current.PaidAmount)

	_, err = h.db.Exec(`UPDATE medicines SET brand_name = ?, generic_name = ?, manufacturer = ?, category = ?, batch_no = ?, shelf = ?, vendor_id = ?, stock = ?, purchase_price = ?, sale_price = ?, expiry_date = ?, payment_status = ?, due_amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		req.BrandName, req.GenericName, req.Manufacturer, req.Category, req.BatchNo, req.Shelf,
		req.VendorID, req.Stock, req.PurchasePrice, req.SalePrice, nullIfEmpty(req.ExpiryDate),
		string(status), due, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update medicine")
		return
	}
	h.respondMedicine(w, http.StatusOK, id)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete medicine")
		return
	}
	defer tx.Rollback()

	// Payment history lives and dies with its medicine.
	if _, err := tx.Exec(`DELETE FROM medicine_payments WHERE medicine_id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete payment history")
		return
	}
	res, err := tx.Exec(`DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete medicine")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete medicine")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Payment ledger

type medicinePaymentRequest struct {
	PaymentStatus string          `json:"payment_status"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

func (h *Handler) updateMedicinePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req medicinePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := ledger.ParseStatus(req.PaymentStatus)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	var m domain.Medicine
	err = h.db.Get(&m, `SELECT * FROM medicines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load medicine")
		return
	}

	led := ledger.Ledger{
		ReferenceTotal: m.PurchasePrice,
		PaidAmount:     m.PaidAmount,
		DueAmount:      m.DueAmount,
		Status:         ledger.Status(m.PaymentStatus),
	}
	next, err := led.Apply(status, req.PaidAmount, time.Now().UTC())
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record payment")
		return
	}
	defer tx.Rollback()

	lastPaid := m.LastPaymentDate
	if next.LastPaymentDate != nil {
		stamp := next.LastPaymentDate.Format(time.RFC3339)
		lastPaid = &stamp
	}
	if _, err := tx.Exec(`UPDATE medicines SET payment_status = ?, paid_amount = ?, due_amount = ?, last_payment_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(next.Status), next.PaidAmount, next.DueAmount, lastPaid, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record payment")
		return
	}

	// History is recorded only when the resulting state reflects a payment.
	if next.Status == ledger.StatusPaid || next.Status == ledger.StatusPartial {
		if _, err := tx.Exec(`INSERT INTO medicine_payments (medicine_id, amount, status, paid_at) VALUES (?, ?, ?, ?)`,
			id, next.PaidAmount, string(next.Status), nowStamp()); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to record payment history")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record payment")
		return
	}
	h.respondMedicine(w, http.StatusOK, id)
}

func (h *Handler) medicinePaymentHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var exists int
	if err := h.db.Get(&exists, `SELECT COUNT(*) FROM medicines WHERE id = ?`, id); err != nil || exists == 0 {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	entries := []domain.PaymentHistoryEntry{}
	if err := h.db.Select(&entries, `SELECT id, medicine_id, amount, status, paid_at FROM medicine_payments WHERE medicine_id = ? ORDER BY id ASC`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load payment history")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

type ledgerRow struct {
	Status string          `db:"payment_status"`
	Total  decimal.Decimal `db:"total"`
	Paid   decimal.Decimal `db:"paid_amount"`
	Due    decimal.Decimal `db:"due_amount"`
}

func (h *Handler) medicinePaymentSummary(w http.ResponseWriter, r *http.Request) {
	var rows []ledgerRow
	if err := h.db.Select(&rows, `SELECT payment_status, purchase_price AS total, paid_amount, due_amount FROM medicines`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load payment summary")
		return
	}
	entries := make([]ledger.Entry, len(rows))
	for i, row := range rows {
		entries[i] = ledger.Entry{
			Status: ledger.Status(row.Status),
			Total:  row.Total,
			Paid:   row.Paid,
			Due:    row.Due,
		}
	}
	respondJSON(w, http.StatusOK, ledger.SummarizeByStatus(entries))
}

func (h *Handler) expiryAlerts(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
	var medicines []domain.Medicine
	if err := h.db.Select(&medicines, `SELECT * FROM medicines
        WHERE expiry_date IS NOT NULL AND expiry_date <= ?
        ORDER BY expiry_date ASC`, cutoff); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch alerts")
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}
