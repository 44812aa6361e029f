package domain

import "github.com/shopspring/decimal"

type Sale struct {
	ID              int64           `db:"id" json:"id"`
	InvoiceNo       string          `db:"invoice_no" json:"invoice_no"`
	UserID          *int64          `db:"user_id" json:"user_id,omitempty"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerPhone   string          `db:"customer_phone" json:"customer_phone"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount        decimal.Decimal `db:"discount" json:"discount"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentType     string          `db:"payment_type" json:"payment_type"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	DueAmount       decimal.Decimal `db:"due_amount" json:"due_amount"`
	LastPaymentDate *string         `db:"last_payment_date" json:"last_payment_date,omitempty"`
	CreatedAt       string          `db:"created_at" json:"created_at"`
}

type SaleItem struct {
	ID         int64           `db:"id" json:"id"`
	SaleID     int64           `db:"sale_id" json:"sale_id"`
	MedicineID int64           `db:"medicine_id" json:"medicine_id"`
	Quantity   int64           `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal   decimal.Decimal `db:"subtotal" json:"subtotal"`
}
