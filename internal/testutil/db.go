// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xelth-com/finflowgo/internal/database"
	"github.com/xelth-com/finflowgo/internal/models"
)

var dbSeq atomic.Int64

// NewDB opens a fresh, migrated in-memory SQLite database private to t
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	// shared cache keeps the schema visible to every pooled connection of this DB only
	dsn := fmt.Sprintf("file:finflow_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig("silent"))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// SeedUser inserts a user directly, bypassing the store
func SeedUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()

	email := id + "@example.com"
	user := &models.User{ID: id, Email: &email, KycStatus: models.KycStatusPending}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
	return user
}
