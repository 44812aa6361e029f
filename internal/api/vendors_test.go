package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacare/p/domain"
)

func createVendor(t *testing.T, router http.Handler, token, name string) int64 {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/vendors/", token, map[string]any{
		"name": name, "phone": "016", "address": "Dhaka",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &resp)
	return resp.ID
}

func TestVendorCRUD(t *testing.T) {
	_, router := newTestRouter(t)
	token := registerUser(t, router, "admin@pharmacy.test")

	rec := doJSON(t, router, http.MethodPost, "/vendors/", token, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := createVendor(t, router, token, "Beximco")

	rec = doJSON(t, router, http.MethodGet, "/vendors/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var vendors []domain.Vendor
	decodeBody(t, rec, &vendors)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Beximco", vendors[0].Name)

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/vendors/%d", id), token, map[string]any{"name": "Beximco Pharma"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/vendors/999", token, map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/vendors/%d", id), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVendorTransactionLedger(t *testing.T) {
	_, router := newTestRouter(t)
	token := registerUser(t, router, "admin@pharmacy.test")
	vendorID := createVendor(t, router, token, "Square")

	// Created as DUE by default.
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/vendors/%d/transactions", vendorID), token, map[string]any{
		"purpose": "June supply",
		"amount":  "5000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var txn domain.VendorTransaction
	decodeBody(t, rec, &txn)
	assert.Equal(t, "DUE", txn.PaymentStatus)
	assert.True(t, txn.DueAmount.Equal(decimal.RequireFromString("5000")))

	// Update to PARTIAL.
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/vendors/transactions/%d", txn.ID), token, map[string]any{
		"payment_status": "PARTIAL",
		"paid_amount":    "2000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &txn)
	assert.Equal(t, "PARTIAL", txn.PaymentStatus)
	assert.True(t, txn.PaidAmount.Equal(decimal.RequireFromString("2000")))
	assert.True(t, txn.DueAmount.Equal(decimal.RequireFromString("3000")))
	require.NotNil(t, txn.LastPaymentDate)

	// Out-of-range partial leaves the record alone.
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/vendors/transactions/%d", txn.ID), token, map[string]any{
		"payment_status": "PARTIAL",
		"paid_amount":    "9000",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/vendors/%d/transactions", vendorID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txns []domain.VendorTransaction
	decodeBody(t, rec, &txns)
	require.Len(t, txns, 1)
	assert.Equal(t, "PARTIAL", txns[0].PaymentStatus)
	assert.True(t, txns[0].PaidAmount.Equal(decimal.RequireFromString("2000")))

	// Transactions against a missing vendor 404.
	rec = doJSON(t, router, http.MethodPost, "/vendors/999/transactions", token, map[string]any{"amount": "100"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVendorTransactionCreatedPaid(t *testing.T) {
	_, router := newTestRouter(t)
	token := registerUser(t, router, "admin@pharmacy.test")
	vendorID := createVendor(t, router, token, "Square")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/vendors/%d/transactions", vendorID), token, map[string]any{
		"amount":         "1200",
		"payment_status": "PAID",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var txn domain.VendorTransaction
	decodeBody(t, rec, &txn)
	assert.Equal(t, "PAID", txn.PaymentStatus)
	assert.True(t, txn.PaidAmount.Equal(decimal.RequireFromString("1200")))
	assert.True(t, txn.DueAmount.IsZero())
	assert.NotNil(t, txn.LastPaymentDate)
}

func TestVendorPayables(t *testing.T) {
	_, router := newTestRouter(t)
	token := registerUser(t, router, "admin@pharmacy.test")

	square := createVendor(t, router, token, "Square")
	beximco := createVendor(t, router, token, "Beximco")
	acme := createVendor(t, router, token, "Acme")

	post := func(vendorID int64, amount, status, paid string) {
		body := map[string]any{"amount": amount, "payment_status": status}
		if status == "PARTIAL" {
			body["paid_amount"] = paid
		}
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/vendors/%d/transactions", vendorID), token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	post(square, "1000", "DUE", "")        // square owes 1000
	post(square, "500", "PARTIAL", "100")  // square owes 400 more
	post(beximco, "800", "PAID", "")       // settled
	post(acme, "300", "DUE", "")           // acme owes 300

	rec := doJSON(t, router, http.MethodGet, "/vendors/stats/payables", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var payablesOut struct {
		TotalDue string `json:"total_due"`
		Vendors  []struct {
			VendorID   int64  `json:"vendor_id"`
			VendorName string `json:"vendor_name"`
			Count      int    `json:"count"`
			TotalDue   string `json:"total_due"`
		} `json:"vendors"`
	}
	decodeBody(t, rec, &payablesOut)
	assert.Equal(t, "1700", payablesOut.TotalDue)
	// Beximco is fully paid and excluded; Square owes the most and leads.
	require.Len(t, payablesOut.Vendors, 2)
	assert.Equal(t, "Square", payablesOut.Vendors[0].VendorName)
	assert.Equal(t, "1400", payablesOut.Vendors[0].TotalDue)
	assert.Equal(t, 2, payablesOut.Vendors[0].Count)
	assert.Equal(t, "Acme", payablesOut.Vendors[1].VendorName)
	assert.Equal(t, "300", payablesOut.Vendors[1].TotalDue)
}

func TestDeleteVendorWithUnpaidTransactions(t *testing.T) {
	_, router := newTestRouter(t)
	token := registerUser(t, router, "admin@pharmacy.test")
	vendorID := createVendor(t, router, token, "Square")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/vendors/%d/transactions", vendorID), token, map[string]any{"amount": "100"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/vendors/%d", vendorID), token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
