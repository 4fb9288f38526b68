package database

import (
	"fmt"

	"pharma-supply/models/log"
	"pharma-supply/models/session"
	"pharma-supply/models/transaction"
	"pharma-supply/models/user"

	"gorm.io/gorm"
)

// Migrate creates or updates every table and the secondary indexes.
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&user.User{},
		&session.TempSession{},
		&transaction.Transaction{},
		&log.Log{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}
	return createIndexes(db)
}

// createIndexes adds the composite indexes AutoMigrate does not derive from tags.
func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_transactions_customer_purchased_at",
			sql:  "CREATE INDEX IF NOT EXISTS idx_transactions_customer_purchased_at ON transactions(customer, purchased_at)",
		},
		{
			name: "idx_logs_method_status_code",
			sql:  "CREATE INDEX IF NOT EXISTS idx_logs_method_status_code ON logs(method, status_code)",
		},
	}
	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
