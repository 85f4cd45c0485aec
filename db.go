package main

import (
	"finapi/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		logger.Fatalf("failed to connect postgres database: %v", err)
	}

	if !cfg.AutoMigrate {
		return
	}
	// Migrate models individually so a failure on one doesn't block others.
	// Users first so the transactions FK can be applied safely.
	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.Warnf("migration warning (users): %v", err)
	}
	if err := db.AutoMigrate(&models.Transaction{}); err != nil {
		logger.Warnf("migration warning (transactions): %v", err)
	}
	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		logger.Warnf("migration warning (refresh_tokens): %v", err)
	}
}
