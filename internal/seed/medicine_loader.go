package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
)

// LoadMedicines ingests the catalog CSV into the medicines table, skipping
// brand names that already exist. Columns: brand name, type, generic name,
// manufacturer, category.
func LoadMedicines(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load medicine catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read medicine header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start medicine transaction: %v", err)
		return
	}
	stmt, err := tx.Preparex(`INSERT INTO medicines (brand_name, generic_name, manufacturer, category)
        SELECT ?, ?, ?, ?
        WHERE NOT EXISTS (SELECT 1 FROM medicines WHERE brand_name = ?)`)
	if err != nil {
		log.Printf("unable to prepare medicine insert: %v", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read medicine row: %v", err)
			continue
		}
		if len(record) < 5 {
			continue
		}
		brandName := strings.TrimSpace(record[0])
		generic := strings.TrimSpace(record[2])
		manufacturer := strings.TrimSpace(record[3])
		category := strings.TrimSpace(record[4])

		if brandName == "" {
			continue
		}

		if _, err := stmt.Exec(brandName, generic, manufacturer, category, brandName); err != nil {
			log.Printf("unable to insert medicine %s: %v", brandName, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit medicine seed: %v", err)
	} else {
		log.Printf("seeded medicine catalog with %d rows", rows)
	}
}
