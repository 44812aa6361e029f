package domain

import "github.com/shopspring/decimal"

type Vendor struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone"`
	Email     string `db:"email" json:"email"`
	Address   string `db:"address" json:"address"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type VendorTransaction struct {
	ID              int64           `db:"id" json:"id"`
	VendorID        int64           `db:"vendor_id" json:"vendor_id"`
	Purpose         string          `db:"purpose" json:"purpose"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	DueAmount       decimal.Decimal `db:"due_amount" json:"due_amount"`
	LastPaymentDate *string         `db:"last_payment_date" json:"last_payment_date,omitempty"`
	CreatedAt       string          `db:"created_at" json:"created_at"`
	UpdatedAt       string          `db:"updated_at" json:"updated_at"`
}
