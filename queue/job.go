package queue

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidTargetID is returned when target_id is not set.
	ErrInvalidTargetID = errors.New("target_id is required")

	// ErrInvalidScenarioName is returned when scenario_name is not set.
	ErrInvalidScenarioName = errors.New("scenario_name is required")

	// ErrInvalidStatus is returned when the job status is invalid.
	ErrInvalidStatus = errors.New("invalid job status")

	// ErrJobAlreadyStarted is returned when starting a job twice.
	ErrJobAlreadyStarted = errors.New("job already started")

	// ErrJobNotRunning is returned when completing a job that is not
	// running.
	ErrJobNotRunning = errors.New("job is not running")
)

// Status represents the status of a queued verification job.
type Status string

const (
	StatusCreated Status = "created"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusRunning, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// IsFinal checks if the status is a final status.
func (s Status) IsFinal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Job queues one scenario execution against a target. Workers claim
// created jobs in creation order; the RunID links to the verification
// run once a worker picks the job up.
type Job struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	TargetID     uuid.UUID  `json:"target_id" gorm:"type:char(36);not null;index:idx_jobs_target_id"`
	ScenarioID   *uuid.UUID `json:"scenario_id,omitempty" gorm:"type:char(36)"`
	ScenarioName string     `json:"scenario_name" gorm:"type:varchar(255);not null"`
	Status       Status     `json:"status" gorm:"type:varchar(20);not null;default:'created';index:idx_jobs_status"`
	RunID        *uuid.UUID `json:"run_id,omitempty" gorm:"type:char(36)"`
	Error        string     `json:"error,omitempty" gorm:"type:text"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Duration     *int64     `json:"duration,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new job
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Validate checks if the job has valid required fields.
func (j *Job) Validate() error {
	if j.TargetID == uuid.Nil {
		return ErrInvalidTargetID
	}
	if j.ScenarioName == "" {
		return ErrInvalidScenarioName
	}
	if !j.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Start marks the job as running.
func (j *Job) Start() error {
	if j.Status != StatusCreated {
		return ErrJobAlreadyStarted
	}
	now := time.Now()
	j.Status = StatusRunning
	j.StartTime = &now
	return nil
}

// Complete marks the job as finished with a final status. Duration is
// recorded in milliseconds.
func (j *Job) Complete(status Status, jobErr string) error {
	if j.Status != StatusRunning {
		return ErrJobNotRunning
	}
	if !status.IsFinal() {
		return ErrInvalidStatus
	}
	now := time.Now()
	j.Status = status
	j.EndTime = &now
	j.Error = jobErr
	if j.StartTime != nil {
		duration := now.Sub(*j.StartTime).Milliseconds()
		j.Duration = &duration
	}
	return nil
}
