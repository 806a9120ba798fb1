// Package migration creates the analytics schema on startup so a fresh
// database is usable without any manual steps.
package migration

import (
	"errors"

	"gorm.io/gorm"

	"github.com/smallbiznis/spendlens/internal/analytics/domain"
)

func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&domain.Vendor{},
		&domain.Customer{},
		&domain.Invoice{},
		&domain.LineItem{},
		&domain.Payment{},
	)
}
