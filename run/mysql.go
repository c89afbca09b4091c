package run

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/uiverify/uiverify/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new GORM-backed run store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new run in the database.
func (s *MySQLStore) Create(ctx context.Context, run *Run) error {
	if run.Status == "" {
		run.Status = StatusPending
	}

	if err := run.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		s.logger.Error(ctx, "failed to create run", map[string]interface{}{
			"error":         err.Error(),
			"target_id":     run.TargetID.String(),
			"scenario_name": run.ScenarioName,
		})
		return err
	}

	s.logger.Info(ctx, "run created", map[string]interface{}{
		"run_id":        run.ID.String(),
		"scenario_name": run.ScenarioName,
	})

	return nil
}

// GetByID retrieves a run by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&run).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error(ctx, "failed to get run by ID", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
		})
		return nil, err
	}

	return &run, nil
}

// Update updates a run with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	run, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(run); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		s.logger.Error(ctx, "failed to update run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
		})
		return err
	}

	return nil
}

// ListByTarget retrieves a paginated list of runs for a target, newest first.
func (s *MySQLStore) ListByTarget(ctx context.Context, targetID uuid.UUID, limit, offset int) ([]*Run, error) {
	var runs []*Run
	err := s.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list runs by target", map[string]interface{}{
			"error":     err.Error(),
			"target_id": targetID.String(),
			"limit":     limit,
			"offset":    offset,
		})
		return nil, err
	}

	return runs, nil
}

// List retrieves a paginated list of runs, newest first.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*Run, error) {
	var runs []*Run
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list runs", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return runs, nil
}

// Start marks a run as started.
func (s *MySQLStore) Start(ctx context.Context, id uuid.UUID) error {
	run, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := run.Start(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		s.logger.Error(ctx, "failed to start run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
		})
		return err
	}

	s.logger.Info(ctx, "run started", map[string]interface{}{
		"run_id": id.String(),
	})

	return nil
}

// Complete marks a run as completed with a final status.
func (s *MySQLStore) Complete(ctx context.Context, id uuid.UUID, status Status, notes string) error {
	run, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := run.Complete(status, notes); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		s.logger.Error(ctx, "failed to complete run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
		})
		return err
	}

	s.logger.Info(ctx, "run completed", map[string]interface{}{
		"run_id": id.String(),
		"status": status,
	})

	return nil
}
