package main

import (
	"log"

	"inkchat/config"
	"inkchat/internal/store"
	"inkchat/pkg/database"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&store.DocumentRow{}); err != nil {
		log.Fatalf("Failed to migrate documents table: %v", err)
	}

	// Containment filters and membership lookups go through this index.
	if err := db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_documents_data ON documents USING GIN (data jsonb_path_ops)",
	).Error; err != nil {
		log.Fatalf("Failed to create jsonb index: %v", err)
	}

	log.Println("Migrations applied")
}
