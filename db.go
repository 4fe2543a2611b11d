package main

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bankbook/models"
	"bankbook/pkg/ledger"
)

var (
	db        *gorm.DB
	ledgerSvc *ledger.Service
)

func initDB() {
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}

	if cfg.AutoMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.Account{}); err != nil {
			log.Printf("migration warning (accounts): %v", err)
		}
		if err := db.AutoMigrate(&models.Transaction{}); err != nil {
			log.Printf("migration warning (transaction_history): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
		if err := ensureActiveNumberIndex(); err != nil {
			log.Printf("warning: ensuring active account-number index failed: %v", err)
		}
	}

	ledgerSvc = ledger.NewService(db)
}

// ensureActiveNumberIndex installs the partial unique index that enforces
// account-number uniqueness among non-deleted accounts only, which AutoMigrate
// cannot express. A soft-deleted account's number stays reusable.
func ensureActiveNumberIndex() error {
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_active_number
		ON accounts(account_number) WHERE is_deleted = false`).Error
}
