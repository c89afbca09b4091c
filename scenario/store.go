package scenario

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for scenario persistence operations.
type Store interface {
	// Create creates a new scenario in the store.
	Create(ctx context.Context, s *Scenario) error

	// GetByID retrieves a scenario by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Scenario, error)

	// GetByName retrieves the latest scenario with the given name for a
	// target.
	GetByName(ctx context.Context, targetID uuid.UUID, name string) (*Scenario, error)

	// Update updates a scenario's metadata in place with the given
	// setters. Steps are immutable per version; replace them with
	// ReplaceSteps.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// ReplaceSteps creates a new version of the scenario with the
	// given steps. The previous version is kept but no longer latest.
	ReplaceSteps(ctx context.Context, id uuid.UUID, steps Steps) (*Scenario, error)

	// Delete removes a scenario.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByTarget retrieves a paginated list of latest scenarios for a
	// target.
	ListByTarget(ctx context.Context, targetID uuid.UUID, limit, offset int) ([]*Scenario, error)
}

// UpdateSetter is a function that updates a scenario field.
type UpdateSetter func(*Scenario) error
