package queue

import (
	"context"
	"fmt"

	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/scenario"
	"github.com/uiverify/uiverify/target"
)

// Executor runs a scenario against a target. *runner.Runner satisfies
// it.
type Executor interface {
	Execute(ctx context.Context, tgt *target.Target, sc *scenario.Scenario) (*run.Run, error)
}

// Dispatcher resolves a claimed job into a target and scenario and
// hands them to the runner. It implements Processor.
type Dispatcher struct {
	targets   target.Store
	scenarios scenario.Store
	jobs      Store
	runner    Executor
	logger    logger.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(targets target.Store, scenarios scenario.Store, jobs Store, r Executor, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Dispatcher{
		targets:   targets,
		scenarios: scenarios,
		jobs:      jobs,
		runner:    r,
		logger:    log,
	}
}

// Process executes the job's scenario against its target. The job is
// linked to the verification run as soon as the run exists; a run that
// does not pass fails the job.
func (d *Dispatcher) Process(ctx context.Context, job *Job) error {
	tgt, err := d.targets.GetByID(ctx, job.TargetID)
	if err != nil {
		return fmt.Errorf("failed to load target: %w", err)
	}

	sc, err := d.resolveScenario(ctx, job)
	if err != nil {
		return err
	}

	rec, execErr := d.runner.Execute(ctx, tgt, sc)
	if rec != nil {
		if err := d.jobs.Update(ctx, job.ID, SetRunID(rec.ID)); err != nil {
			d.logger.Error(ctx, "failed to link job to run", map[string]interface{}{
				"job_id": job.ID.String(),
				"run_id": rec.ID.String(),
				"error":  err.Error(),
			})
		}
	}
	if execErr != nil {
		return execErr
	}

	if rec.Status != run.StatusPassed {
		return fmt.Errorf("run %s %s: %s", rec.ID, rec.Status, rec.Notes)
	}
	return nil
}

// resolveScenario loads the job's scenario: by ID when set, then the
// built-in catalog, then the target's stored scenarios by name.
func (d *Dispatcher) resolveScenario(ctx context.Context, job *Job) (*scenario.Scenario, error) {
	if job.ScenarioID != nil {
		sc, err := d.scenarios.GetByID(ctx, *job.ScenarioID)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		return sc, nil
	}

	if sc, ok := scenario.Builtin(job.ScenarioName); ok {
		return sc, nil
	}

	sc, err := d.scenarios.GetByName(ctx, job.TargetID, job.ScenarioName)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %q: %w", job.ScenarioName, err)
	}
	return sc, nil
}
