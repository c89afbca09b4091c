package run

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for verification run persistence operations.
type Store interface {
	// Create creates a new run in the store.
	Create(ctx context.Context, run *Run) error

	// GetByID retrieves a run by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)

	// Update updates a run with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// ListByTarget retrieves a paginated list of runs for a target,
	// newest first.
	ListByTarget(ctx context.Context, targetID uuid.UUID, limit, offset int) ([]*Run, error)

	// List retrieves a paginated list of runs, newest first.
	List(ctx context.Context, limit, offset int) ([]*Run, error)

	// Start marks a run as started.
	Start(ctx context.Context, id uuid.UUID) error

	// Complete marks a run as completed with a final status.
	Complete(ctx context.Context, id uuid.UUID, status Status, notes string) error
}

// UpdateSetter is a function that updates a run field.
type UpdateSetter func(*Run) error

// AssetStore defines the interface for run asset persistence operations.
type AssetStore interface {
	// Create creates a new asset in the store.
	Create(ctx context.Context, asset *Asset) error

	// GetByID retrieves an asset by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// ListByRun retrieves all assets for a specific run.
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*Asset, error)

	// Delete deletes an asset by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
