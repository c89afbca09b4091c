package queue

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for job persistence operations.
type Store interface {
	// Create creates a new job in the store.
	Create(ctx context.Context, job *Job) error

	// GetByID retrieves a job by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// Update updates a job with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// List retrieves a paginated list of jobs, newest first.
	List(ctx context.Context, limit, offset int) ([]*Job, error)

	// ListByStatus retrieves a paginated list of jobs with the given
	// status, oldest first.
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Job, error)

	// ClaimNextCreated atomically claims the oldest created job and
	// marks it running. Returns nil without error when no created job
	// exists.
	ClaimNextCreated(ctx context.Context) (*Job, error)

	// Complete marks a job as finished with a final status.
	Complete(ctx context.Context, id uuid.UUID, status Status, jobErr string) error
}

// UpdateSetter is a function that updates a job field.
type UpdateSetter func(*Job) error
