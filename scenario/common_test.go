package scenario

import (
	"testing"

	"github.com/google/uuid"
	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and scenario store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Scenario{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// createTestScenario creates a scenario with default values.
func createTestScenario(name, description string, targetID uuid.UUID, steps Steps) *Scenario {
	return &Scenario{
		Name:        name,
		Description: description,
		TargetID:    targetID,
		Steps:       steps,
	}
}

// loginSteps returns a minimal valid step list for tests.
func loginSteps() Steps {
	return Steps{
		{Action: ActionNavigate, Path: "/login"},
		{Action: ActionFill, Placeholder: "Username", Value: "{{username}}"},
		{Action: ActionClick, Role: "button", Name: "Login"},
		{Action: ActionExpectURL, Path: "/", TimeoutMS: 10000},
	}
}
