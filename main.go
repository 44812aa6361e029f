package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"pharmacare/p/internal/api"
	"pharmacare/p/internal/config"
	"pharmacare/p/internal/database"
	"pharmacare/p/internal/migrations"
	"pharmacare/p/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	if _, err := os.Stat(cfg.CatalogCSV); err == nil {
		seed.LoadMedicines(db, cfg.CatalogCSV)
	}

	handler := api.New(db, cfg.Secret)

	log.Printf("PharmaCare server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
