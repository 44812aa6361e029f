package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pharmacare/p/domain"
	"pharmacare/p/internal/ledger"
)

type purchaseOrderItemRequest struct {
	MedicineName string          `json:"medicine_name"`
	Quantity     int64           `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

type purchaseOrderRequest struct {
	VendorID int64                      `json:"vendor_id"`
	Items    []purchaseOrderItemRequest `json:"items"`
}

func newOrderNo() string {
	return "PO-" + strings.ToUpper(uuid.NewString()[:8])
}

func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req purchaseOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.VendorID == 0 || len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "vendor_id and at least one item are required")
		return
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.MedicineName) == "" || item.Quantity <= 0 || item.UnitCost.IsNegative() {
			respondError(w, http.StatusBadRequest, "each item needs medicine_name, a positive quantity and a non-negative unit_cost")
			return
		}
	}

	var exists int
	if err := h.db.Get(&exists, `SELECT COUNT(*) FROM vendors WHERE id = ?`, req.VendorID); err != nil || exists == 0 {
		respondError(w, http.StatusNotFound, "vendor not found")
		return
	}

	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(item.Quantity)))
	}
	led, err := ledger.New(total)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create purchase order")
		return
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO purchase_orders (order_no, vendor_id, status, total_amount, payment_status, paid_amount, due_amount)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		newOrderNo(), req.VendorID, domain.OrderPending, led.ReferenceTotal,
		string(led.Status), led.PaidAmount, led.DueAmount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create purchase order")
		return
	}
	orderID, _ := res.LastInsertId()

	for _, item := range req.Items {
		subtotal := item.UnitCost.Mul(decimal.NewFromInt(item.Quantity))
		if _, err := tx.Exec(`INSERT INTO purchase_order_items (order_id, medicine_name, quantity, unit_cost, subtotal) VALUES (?, ?, ?, ?, ?)`,
			orderID, item.MedicineName, item.Quantity, item.UnitCost, subtotal); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to save order items")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create purchase order")
		return
	}
	h.respondPurchaseOrder(w, http.StatusCreated, orderID)
}

type purchaseOrderResponse struct {
	domain.PurchaseOrder
	Items []domain.PurchaseOrderItem `json:"items"`
}

func (h *Handler) respondPurchaseOrder(w http.ResponseWriter, status int, id int64) {
	var order domain.PurchaseOrder
	err := h.db.Get(&order, `SELECT * FROM purchase_orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "purchase order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load purchase order")
		return
	}
	items := []domain.PurchaseOrderItem{}
	if err := h.db.Select(&items, `SELECT * FROM purchase_order_items WHERE order_id = ? ORDER BY id ASC`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load order items")
		return
	}
	respondJSON(w, status, purchaseOrderResponse{PurchaseOrder: order, Items: items})
}

func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, status)
	}
	if vendor := strings.TrimSpace(r.URL.Query().Get("vendor_id")); vendor != "" {
		clauses = append(clauses, "vendor_id = ?")
		args = append(args, vendor)
	}
	query := `SELECT * FROM purchase_orders`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"

	orders := []domain.PurchaseOrder{}
	if err := h.db.Select(&orders, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list purchase orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid purchase order id")
		return
	}
	h.respondPurchaseOrder(w, http.StatusOK, id)
}

// updatePurchaseOrderPayment sets the absolute paid amount; the payment
// status is derived from it rather than accepted from the caller.
func (h *Handler) updatePurchaseOrderPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid purchase order id")
		return
	}
	var req struct {
		PaidAmount decimal.Decimal `json:"paid_amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var order domain.PurchaseOrder
	err = h.db.Get(&order, `SELECT * FROM purchase_orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "purchase order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load purchase order")
		return
	}

	led := ledger.Ledger{
		ReferenceTotal: order.TotalAmount,
		PaidAmount:     order.PaidAmount,
		DueAmount:      order.DueAmount,
		Status:         ledger.Status(order.PaymentStatus),
	}
	next, err := led.WithPaid(req.PaidAmount, time.Now().UTC())
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	lastPaid := order.LastPaymentDate
	if next.LastPaymentDate != nil {
		stamp := next.LastPaymentDate.Format(time.RFC3339)
		lastPaid = &stamp
	}
	if _, err := h.db.Exec(`UPDATE purchase_orders SET payment_status = ?, paid_amount = ?, due_amount = ?, last_payment_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(next.Status), next.PaidAmount, next.DueAmount, lastPaid, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record payment")
		return
	}
	h.respondPurchaseOrder(w, http.StatusOK, id)
}

// updatePurchaseOrderStatus moves the fulfilment state. Receiving an order
// folds its item quantities into matching medicines' stock in the same
// transaction as the status change.
func (h *Handler) updatePurchaseOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid purchase order id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status != domain.OrderPending && req.Status != domain.OrderReceived && req.Status != domain.OrderCancelled {
		respondError(w, http.StatusBadRequest, "status must be PENDING, RECEIVED or CANCELLED")
		return
	}

	var order domain.PurchaseOrder
	err = h.db.Get(&order, `SELECT * FROM purchase_orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "purchase order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load purchase order")
		return
	}
	if order.Status == domain.OrderReceived && req.Status == domain.OrderReceived {
		respondError(w, http.StatusConflict, "purchase order already received")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update purchase order")
		return
	}
	defer tx.Rollback()

	if req.Status == domain.OrderReceived {
		items := []domain.PurchaseOrderItem{}
		if err := tx.Select(&items, `SELECT * FROM purchase_order_items WHERE order_id = ?`, id); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to load order items")
			return
		}
		for _, item := range items {
			if _, err := tx.Exec(`UPDATE medicines SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP WHERE brand_name = ?`, item.Quantity, item.MedicineName); err != nil {
				respondError(w, http.StatusInternalServerError, "unable to restock medicines")
				return
			}
		}
	}

	if _, err := tx.Exec(`UPDATE purchase_orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, req.Status, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update purchase order")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update purchase order")
		return
	}
	h.respondPurchaseOrder(w, http.StatusOK, id)
}
