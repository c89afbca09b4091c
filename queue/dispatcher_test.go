package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/scenario"
	"github.com/uiverify/uiverify/target"
	"github.com/uiverify/uiverify/testutil"
)

// fakeExecutor returns a scripted run and error and remembers what it
// was asked to execute.
type fakeExecutor struct {
	rec      *run.Run
	err      error
	lastTgt  *target.Target
	lastScen *scenario.Scenario
}

func (f *fakeExecutor) Execute(ctx context.Context, tgt *target.Target, sc *scenario.Scenario) (*run.Run, error) {
	f.lastTgt = tgt
	f.lastScen = sc
	return f.rec, f.err
}

func setupTestDispatcher(t *testing.T, exec Executor) (*Dispatcher, target.Store, scenario.Store, Store) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &target.Target{}, &scenario.Scenario{}, &Job{})

	log := logger.NewTestLogger()
	targets := target.NewMySQLStore(db, log)
	scenarios := scenario.NewMySQLStore(db, log)
	jobs := NewMySQLStore(db, log)

	return NewDispatcher(targets, scenarios, jobs, exec, log), targets, scenarios, jobs
}

func createDispatcherTarget(t *testing.T, targets target.Store) *target.Target {
	t.Helper()

	ctx := context.Background()
	tgt := &target.Target{
		Name:     "rbac-frontend",
		BaseURL:  "http://localhost:3002",
		Username: "admin",
		IsActive: true,
	}
	require.NoError(t, targets.Create(ctx, tgt))
	return tgt
}

func TestDispatcher_Process_BuiltinScenario(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{rec: &run.Run{ID: uuid.New(), Status: run.StatusPassed}}
	d, targets, _, jobs := setupTestDispatcher(t, exec)
	tgt := createDispatcherTarget(t, targets)

	job := createTestJob(tgt.ID, "rbac-frontend")
	require.NoError(t, jobs.Create(ctx, job))

	require.NoError(t, d.Process(ctx, job))

	assert.Equal(t, tgt.ID, exec.lastTgt.ID)
	require.NotNil(t, exec.lastScen)
	assert.Equal(t, "rbac-frontend", exec.lastScen.Name)
	assert.Len(t, exec.lastScen.Steps, 12)

	// The job is linked to the run that was produced.
	got, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RunID)
	assert.Equal(t, exec.rec.ID, *got.RunID)
}

func TestDispatcher_Process_StoredScenario(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{rec: &run.Run{ID: uuid.New(), Status: run.StatusPassed}}
	d, targets, scenarios, jobs := setupTestDispatcher(t, exec)
	tgt := createDispatcherTarget(t, targets)

	sc := &scenario.Scenario{
		TargetID: tgt.ID,
		Name:     "health-page",
		Steps: scenario.Steps{
			{Action: scenario.ActionNavigate, Path: "/health"},
			{Action: scenario.ActionExpectText, Text: "ok"},
		},
	}
	require.NoError(t, scenarios.Create(ctx, sc))

	t.Run("by scenario ID", func(t *testing.T) {
		id := sc.ID
		job := createTestJob(tgt.ID, "health-page")
		job.ScenarioID = &id
		require.NoError(t, jobs.Create(ctx, job))

		require.NoError(t, d.Process(ctx, job))
		assert.Equal(t, sc.ID, exec.lastScen.ID)
	})

	t.Run("by scenario name", func(t *testing.T) {
		job := createTestJob(tgt.ID, "health-page")
		require.NoError(t, jobs.Create(ctx, job))

		require.NoError(t, d.Process(ctx, job))
		assert.Equal(t, sc.ID, exec.lastScen.ID)
	})

	t.Run("unknown scenario name", func(t *testing.T) {
		job := createTestJob(tgt.ID, "no-such-scenario")
		require.NoError(t, jobs.Create(ctx, job))

		err := d.Process(ctx, job)
		assert.ErrorIs(t, err, scenario.ErrScenarioNotFound)
	})
}

func TestDispatcher_Process_FailedRun(t *testing.T) {
	ctx := context.Background()
	failedStep := 4
	exec := &fakeExecutor{rec: &run.Run{
		ID:         uuid.New(),
		Status:     run.StatusFailed,
		FailedStep: &failedStep,
		Notes:      "step 4 (expect_url): assertion wait timed out",
	}}
	d, targets, _, jobs := setupTestDispatcher(t, exec)
	tgt := createDispatcherTarget(t, targets)

	job := createTestJob(tgt.ID, "rbac-frontend")
	require.NoError(t, jobs.Create(ctx, job))

	err := d.Process(ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")

	// The run link survives a failed run.
	got, getErr := jobs.GetByID(ctx, job.ID)
	require.NoError(t, getErr)
	require.NotNil(t, got.RunID)
	assert.Equal(t, exec.rec.ID, *got.RunID)
}

func TestDispatcher_Process_MissingTarget(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{rec: &run.Run{ID: uuid.New(), Status: run.StatusPassed}}
	d, _, _, jobs := setupTestDispatcher(t, exec)

	job := createTestJob(uuid.New(), "rbac-frontend")
	require.NoError(t, jobs.Create(ctx, job))

	err := d.Process(ctx, job)
	assert.ErrorIs(t, err, target.ErrTargetNotFound)
}

func TestDispatcher_Process_ExecutorError(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{err: errors.New("browser session unavailable")}
	d, targets, _, jobs := setupTestDispatcher(t, exec)
	tgt := createDispatcherTarget(t, targets)

	job := createTestJob(tgt.ID, "rbac-frontend")
	require.NoError(t, jobs.Create(ctx, job))

	err := d.Process(ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser session unavailable")
}
