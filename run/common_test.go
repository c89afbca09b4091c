package run

import (
	"testing"

	"github.com/google/uuid"
	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database, run store, and asset store
// for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store, AssetStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Run{}, &Asset{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)
	assetStore := NewMySQLAssetStore(db, log)

	return db, store, assetStore
}

// createTestRun creates a run with default values.
func createTestRun(targetID uuid.UUID, scenarioName string) *Run {
	return &Run{
		TargetID:     targetID,
		ScenarioName: scenarioName,
	}
}

// createTestAsset creates a screenshot asset for a run.
func createTestAsset(runID uuid.UUID, fileName string, stepIndex int) *Asset {
	return &Asset{
		RunID:     runID,
		AssetType: AssetTypeScreenshot,
		AssetPath: "runs/" + runID.String() + "/" + fileName,
		FileName:  fileName,
		FileSize:  2048,
		MimeType:  "image/png",
		StepIndex: stepIndex,
	}
}
