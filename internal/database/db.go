package database

import (
	"crm-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema in dependency order inside a single transaction.
// AutoMigrate is idempotent, so repeated startups are safe.
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&model.Admin{},
			&model.SuperAdmin{},
			&model.Customer{},
		)
	})
}
