package run

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrRunNotFound is returned when a verification run is not found.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidTargetID is returned when target_id is not set.
	ErrInvalidTargetID = errors.New("target_id is required")

	// ErrInvalidScenarioName is returned when scenario_name is not set.
	ErrInvalidScenarioName = errors.New("scenario_name is required")

	// ErrInvalidStatus is returned when status is invalid.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrRunNotRunning is returned when trying to complete a run that's
	// not running.
	ErrRunNotRunning = errors.New("run is not running")

	// ErrRunAlreadyStarted is returned when trying to start an already
	// started run.
	ErrRunAlreadyStarted = errors.New("run already started")
)

// Status represents the status of a verification run.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusPassed, StatusFailed, StatusErrored:
		return true
	default:
		return false
	}
}

// IsFinal checks if the status is a final status (can't be changed).
func (s Status) IsFinal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusErrored
}

// Run records one execution of a scenario against a target. FailedStep
// is the zero-based index of the step that aborted the run, or nil when
// every step passed.
type Run struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	TargetID     uuid.UUID  `json:"target_id" gorm:"type:char(36);not null;index:idx_runs_target_id"`
	ScenarioID   *uuid.UUID `json:"scenario_id,omitempty" gorm:"type:char(36);index:idx_runs_scenario_id"`
	ScenarioName string     `json:"scenario_name" gorm:"type:varchar(255);not null"`
	Status       Status     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_runs_status"`
	FailedStep   *int       `json:"failed_step,omitempty"`
	Notes        string     `json:"notes" gorm:"type:text"`
	StartedAt    *time.Time `json:"started_at,omitempty" gorm:"index:idx_runs_started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new run
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate checks if the run has valid required fields.
func (r *Run) Validate() error {
	if r.TargetID == uuid.Nil {
		return ErrInvalidTargetID
	}
	if r.ScenarioName == "" {
		return ErrInvalidScenarioName
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Start sets the started_at timestamp and changes status to running.
// Returns an error if the run has already been started.
func (r *Run) Start() error {
	if r.StartedAt != nil {
		return ErrRunAlreadyStarted
	}
	now := time.Now()
	r.StartedAt = &now
	r.Status = StatusRunning
	return nil
}

// Complete sets the completed_at timestamp and final status. Returns an
// error if the run is not currently running.
func (r *Run) Complete(status Status, notes string) error {
	if r.Status != StatusRunning {
		return ErrRunNotRunning
	}
	if !status.IsFinal() {
		return ErrInvalidStatus
	}
	now := time.Now()
	r.CompletedAt = &now
	r.Status = status
	if notes != "" {
		r.Notes = notes
	}
	return nil
}
