package testutil

import (
	"testing"

	"gorm.io/gorm"
)

// CreateFixture inserts a model directly, bypassing store validation.
// Useful for seeding rows with explicit timestamps or ids.
func CreateFixture(t *testing.T, db *gorm.DB, model interface{}) {
	t.Helper()

	if err := db.Create(model).Error; err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
}

// CreateFixtures inserts multiple models in order.
func CreateFixtures(t *testing.T, db *gorm.DB, models ...interface{}) {
	t.Helper()

	for _, model := range models {
		CreateFixture(t, db, model)
	}
}
