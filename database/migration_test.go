package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pharma-supply/models/session"
	"pharma-supply/models/transaction"
	"pharma-supply/models/user"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestMigrate(t *testing.T) {
	db := openMemoryDB(t)

	require.NoError(t, Migrate(db))
	// Idempotent.
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&user.User{}))
	assert.True(t, db.Migrator().HasTable(&session.TempSession{}))
	assert.True(t, db.Migrator().HasTable(&transaction.Transaction{}))
	assert.True(t, db.Migrator().HasIndex(&user.User{}, "idx_users_phone"))
	assert.True(t, db.Migrator().HasIndex(&transaction.Transaction{}, "idx_transactions_customer_purchased_at"))
}

func TestUserPhoneIsUnique(t *testing.T) {
	db := openMemoryDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&user.User{ID: "a", Phone: "0912345678", PasswordHash: "x"}).Error)
	err := db.Create(&user.User{ID: "b", Phone: "0912345678", PasswordHash: "y"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
