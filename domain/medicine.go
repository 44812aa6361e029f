package domain

import "github.com/shopspring/decimal"

type Medicine struct {
	ID              int64           `db:"id" json:"id"`
	BrandName       string          `db:"brand_name" json:"brand_name"`
	GenericName     string          `db:"generic_name" json:"generic_name"`
	Manufacturer    string          `db:"manufacturer" json:"manufacturer"`
	Category        string          `db:"category" json:"category"`
	BatchNo         string          `db:"batch_no" json:"batch_no"`
	Shelf           string          `db:"shelf" json:"shelf"`
	VendorID        *int64          `db:"vendor_id" json:"vendor_id,omitempty"`
	Stock           int64           `db:"stock" json:"stock"`
	PurchasePrice   decimal.Decimal `db:"purchase_price" json:"purchase_price"`
	SalePrice       decimal.Decimal `db:"sale_price" json:"sale_price"`
	ExpiryDate      *string         `db:"expiry_date" json:"expiry_date,omitempty"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	DueAmount       decimal.Decimal `db:"due_amount" json:"due_amount"`
	LastPaymentDate *string         `db:"last_payment_date" json:"last_payment_date,omitempty"`
	CreatedAt       string          `db:"created_at" json:"created_at"`
	UpdatedAt       string          `db:"updated_at" json:"updated_at"`
}

// PaymentHistoryEntry is one payment event on a medicine purchase.
// Rows are appended, never updated or deleted.
type PaymentHistoryEntry struct {
	ID         int64           `db:"id" json:"id"`
	MedicineID int64           `db:"medicine_id" json:"medicine_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Status     string          `db:"status" json:"status"`
	PaidAt     string          `db:"paid_at" json:"paid_at"`
}
