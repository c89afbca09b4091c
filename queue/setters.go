package queue

import "github.com/google/uuid"

// SetStatus returns an UpdateSetter that sets the job's status.
func SetStatus(status Status) UpdateSetter {
	return func(j *Job) error {
		if !status.IsValid() {
			return ErrInvalidStatus
		}
		j.Status = status
		return nil
	}
}

// SetRunID returns an UpdateSetter that links the job to its
// verification run.
func SetRunID(runID uuid.UUID) UpdateSetter {
	return func(j *Job) error {
		id := runID
		j.RunID = &id
		return nil
	}
}

// SetError returns an UpdateSetter that records the job's error text.
func SetError(jobErr string) UpdateSetter {
	return func(j *Job) error {
		j.Error = jobErr
		return nil
	}
}
