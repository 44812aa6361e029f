package domain

import "github.com/shopspring/decimal"

// Purchase order fulfilment states, separate from payment status.
const (
	OrderPending   = "PENDING"
	OrderReceived  = "RECEIVED"
	OrderCancelled = "CANCELLED"
)

type PurchaseOrder struct {
	ID              int64           `db:"id" json:"id"`
	OrderNo         string          `db:"order_no" json:"order_no"`
	VendorID        int64           `db:"vendor_id" json:"vendor_id"`
	Status          string          `db:"status" json:"status"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	DueAmount       decimal.Decimal `db:"due_amount" json:"due_amount"`
	LastPaymentDate *string         `db:"last_payment_date" json:"last_payment_date,omitempty"`
	CreatedAt       string          `db:"created_at" json:"created_at"`
	UpdatedAt       string          `db:"updated_at" json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID           int64           `db:"id" json:"id"`
	OrderID      int64           `db:"order_id" json:"order_id"`
	MedicineName string          `db:"medicine_name" json:"medicine_name"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	UnitCost     decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
}
