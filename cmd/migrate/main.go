package main

import (
	"log"

	"clements/backend/config"
	"clements/backend/migration"
	"clements/backend/utils"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Copies the legacy MySQL database into the new Postgres schema. Safe to
// re-run; rows are matched on their legacy IDs.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if cfg.LegacyDBDSN == "" {
		log.Fatal("LEGACY_DB_DSN must be set")
	}

	legacy, err := gorm.Open(mysql.Open(cfg.LegacyDBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to legacy database: %v", err)
	}

	target, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	migrator := &migration.Migrator{
		Legacy: legacy,
		Target: target,
		Logger: utils.InitLogger(),
	}

	if err := migrator.Run(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration complete")
}
