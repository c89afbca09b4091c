package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uiverify/uiverify/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new GORM-backed job store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new job in the database.
func (s *MySQLStore) Create(ctx context.Context, job *Job) error {
	if job.Status == "" {
		job.Status = StatusCreated
	}

	if err := job.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		s.logger.Error(ctx, "failed to create job", map[string]interface{}{
			"error":         err.Error(),
			"target_id":     job.TargetID.String(),
			"scenario_name": job.ScenarioName,
		})
		return err
	}

	s.logger.Info(ctx, "job created", map[string]interface{}{
		"job_id":        job.ID.String(),
		"scenario_name": job.ScenarioName,
	})

	return nil
}

// GetByID retrieves a job by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job Job
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&job).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error(ctx, "failed to get job by ID", map[string]interface{}{
			"error":  err.Error(),
			"job_id": id.String(),
		})
		return nil, err
	}

	return &job, nil
}

// Update updates a job with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(job); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
		s.logger.Error(ctx, "failed to update job", map[string]interface{}{
			"error":  err.Error(),
			"job_id": id.String(),
		})
		return err
	}

	return nil
}

// List retrieves a paginated list of jobs, newest first.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*Job, error) {
	var jobs []*Job
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list jobs", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return jobs, nil
}

// ListByStatus retrieves a paginated list of jobs with the given
// status, oldest first.
func (s *MySQLStore) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Job, error) {
	var jobs []*Job
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list jobs by status", map[string]interface{}{
			"error":  err.Error(),
			"status": string(status),
		})
		return nil, err
	}

	return jobs, nil
}

// ClaimNextCreated atomically claims the oldest created job. The claim
// is a guarded update: only the transition created -> running counts,
// so two workers racing for the same job see exactly one winner. A nil
// job without error means the queue is drained.
func (s *MySQLStore) ClaimNextCreated(ctx context.Context) (*Job, error) {
	for {
		var job Job
		err := s.db.WithContext(ctx).
			Where("status = ?", StatusCreated).
			Order("created_at ASC").
			First(&job).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			s.logger.Error(ctx, "failed to find claimable job", map[string]interface{}{
				"error": err.Error(),
			})
			return nil, err
		}

		now := time.Now()
		res := s.db.WithContext(ctx).
			Model(&Job{}).
			Where("id = ? AND status = ?", job.ID, StatusCreated).
			Updates(map[string]interface{}{
				"status":     StatusRunning,
				"start_time": now,
			})
		if res.Error != nil {
			s.logger.Error(ctx, "failed to claim job", map[string]interface{}{
				"error":  res.Error.Error(),
				"job_id": job.ID.String(),
			})
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// Another worker won the race; try the next created job.
			continue
		}

		job.Status = StatusRunning
		job.StartTime = &now

		s.logger.Info(ctx, "job claimed", map[string]interface{}{
			"job_id": job.ID.String(),
		})
		return &job, nil
	}
}

// Complete marks a job as finished with a final status.
func (s *MySQLStore) Complete(ctx context.Context, id uuid.UUID, status Status, jobErr string) error {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := job.Complete(status, jobErr); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
		s.logger.Error(ctx, "failed to complete job", map[string]interface{}{
			"error":  err.Error(),
			"job_id": id.String(),
		})
		return err
	}

	s.logger.Info(ctx, "job completed", map[string]interface{}{
		"job_id": id.String(),
		"status": string(status),
	})

	return nil
}
