package run

// SetStatus returns an UpdateSetter that sets the run's status.
func SetStatus(status Status) UpdateSetter {
	return func(r *Run) error {
		if !status.IsValid() {
			return ErrInvalidStatus
		}
		r.Status = status
		return nil
	}
}

// SetNotes returns an UpdateSetter that sets the run's notes.
func SetNotes(notes string) UpdateSetter {
	return func(r *Run) error {
		r.Notes = notes
		return nil
	}
}

// SetFailedStep returns an UpdateSetter that records the zero-based
// index of the step that aborted the run.
func SetFailedStep(index int) UpdateSetter {
	return func(r *Run) error {
		r.FailedStep = &index
		return nil
	}
}

// ClearFailedStep returns an UpdateSetter that clears the failed step.
func ClearFailedStep() UpdateSetter {
	return func(r *Run) error {
		r.FailedStep = nil
		return nil
	}
}
