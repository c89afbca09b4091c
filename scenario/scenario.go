package scenario

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrScenarioNotFound is returned when a scenario is not found.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrInvalidScenarioName is returned when a scenario name is empty.
	ErrInvalidScenarioName = errors.New("scenario name is required")

	// ErrInvalidTargetID is returned when target_id is not set.
	ErrInvalidTargetID = errors.New("target_id is required")

	// ErrNoSteps is returned when a scenario carries no steps.
	ErrNoSteps = errors.New("scenario has no steps")
)

// Scenario is a named, versioned sequence of browser steps verified
// against a single target application.
type Scenario struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	TargetID    uuid.UUID `json:"target_id" gorm:"type:char(36);not null;index:idx_scenarios_target_id"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Steps       Steps     `json:"steps" gorm:"type:json"`
	Version     uint      `json:"version" gorm:"not null;default:1"`
	IsLatest    bool      `json:"is_latest" gorm:"default:true;index:idx_scenarios_is_latest"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new scenario
func (s *Scenario) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Validate checks if the scenario has valid required fields.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return ErrInvalidScenarioName
	}
	if s.TargetID == uuid.Nil {
		return ErrInvalidTargetID
	}
	if len(s.Steps) == 0 {
		return ErrNoSteps
	}
	for i := range s.Steps {
		if err := s.Steps[i].Validate(); err != nil {
			return stepError(i, err)
		}
	}
	return nil
}
