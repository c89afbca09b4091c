package queue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and job store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Job{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// createTestJob creates a job with default values.
func createTestJob(targetID uuid.UUID, scenarioName string) *Job {
	return &Job{
		TargetID:     targetID,
		ScenarioName: scenarioName,
	}
}
