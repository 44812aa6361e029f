package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the pharmacy backend.
// Monetary columns are TEXT holding decimal strings so payment math stays
// exact end to end.
func Run(db *sqlx.DB) {
	if err := Apply(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}

// Apply runs the schema statements and reports the first failure.
func Apply(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS vendors (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            phone TEXT,
            email TEXT,
            address TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            brand_name TEXT NOT NULL,
            generic_name TEXT,
            manufacturer TEXT,
            category TEXT,
            batch_no TEXT,
            shelf TEXT,
            vendor_id INTEGER,
            stock INTEGER NOT NULL DEFAULT 0,
            purchase_price TEXT NOT NULL DEFAULT '0',
            sale_price TEXT NOT NULL DEFAULT '0',
            expiry_date TEXT,
            payment_status TEXT NOT NULL DEFAULT 'DUE',
            paid_amount TEXT NOT NULL DEFAULT '0',
            due_amount TEXT NOT NULL DEFAULT '0',
            last_payment_date TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(vendor_id) REFERENCES vendors(id)
        );`,
		`CREATE TABLE IF NOT EXISTS medicine_payments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            medicine_id INTEGER NOT NULL,
            amount TEXT NOT NULL,
            status TEXT NOT NULL,
            paid_at TEXT NOT NULL,
            FOREIGN KEY(medicine_id) REFERENCES medicines(id)
        );`,
		`CREATE TABLE IF NOT EXISTS vendor_transactions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            vendor_id INTEGER NOT NULL,
            purpose TEXT,
            amount TEXT NOT NULL,
            payment_status TEXT NOT NULL DEFAULT 'DUE',
            paid_amount TEXT NOT NULL DEFAULT '0',
            due_amount TEXT NOT NULL DEFAULT '0',
            last_payment_date TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(vendor_id) REFERENCES vendors(id)
        );`,
		`CREATE TABLE IF NOT EXISTS purchase_orders (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            order_no TEXT NOT NULL UNIQUE,
            vendor_id INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'PENDING',
            total_amount TEXT NOT NULL DEFAULT '0',
            payment_status TEXT NOT NULL DEFAULT 'DUE',
            paid_amount TEXT NOT NULL DEFAULT '0',
            due_amount TEXT NOT NULL DEFAULT '0',
            last_payment_date TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(vendor_id) REFERENCES vendors(id)
        );`,
		`CREATE TABLE IF NOT EXISTS purchase_order_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            order_id INTEGER NOT NULL,
            medicine_name TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            unit_cost TEXT NOT NULL,
            subtotal TEXT NOT NULL,
            FOREIGN KEY(order_id) REFERENCES purchase_orders(id)
        );`,
		`CREATE TABLE IF NOT EXISTS sales (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_no TEXT NOT NULL UNIQUE,
            user_id INTEGER,
            customer_name TEXT,
            customer_phone TEXT,
            subtotal TEXT NOT NULL DEFAULT '0',
            discount TEXT NOT NULL DEFAULT '0',
            total_amount TEXT NOT NULL DEFAULT '0',
            payment_type TEXT NOT NULL DEFAULT 'CASH',
            payment_status TEXT NOT NULL DEFAULT 'DUE',
            paid_amount TEXT NOT NULL DEFAULT '0',
            due_amount TEXT NOT NULL DEFAULT '0',
            last_payment_date TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(user_id) REFERENCES users(id)
        );`,
		`CREATE TABLE IF NOT EXISTS sale_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            sale_id INTEGER NOT NULL,
            medicine_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL,
            unit_price TEXT NOT NULL,
            subtotal TEXT NOT NULL,
            FOREIGN KEY(sale_id) REFERENCES sales(id),
            FOREIGN KEY(medicine_id) REFERENCES medicines(id)
        );`,
		`CREATE TABLE IF NOT EXISTS prescriptions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            patient_name TEXT NOT NULL,
            patient_phone TEXT,
            doctor_name TEXT,
            notes TEXT,
            items TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
