package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNameTooLong is returned when the name exceeds the maximum length.
	ErrNameTooLong = errors.New("name exceeds maximum length")

	// ErrDescriptionTooLong is returned when the description exceeds the maximum length.
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")

	// ErrStepsJSONTooLong is returned when the serialized steps exceed the maximum length.
	ErrStepsJSONTooLong = errors.New("steps JSON exceeds maximum length")

	// ErrTooManySteps is returned when the number of steps exceeds the maximum.
	ErrTooManySteps = errors.New("too many steps")
)

// ValidationLimits defines the structural limits for stored scenarios.
type ValidationLimits struct {
	MaxNameLength        int
	MaxDescriptionLength int
	MaxStepsJSONLength   int
	MaxStepsCount        int
}

// DefaultValidationLimits returns the default validation limits.
func DefaultValidationLimits() ValidationLimits {
	return ValidationLimits{
		MaxNameLength:        255,
		MaxDescriptionLength: 5000,
		MaxStepsJSONLength:   50000,
		MaxStepsCount:        200,
	}
}

// ValidateStrict performs full validation of a scenario before it is
// persisted or executed: basic field validation plus structural limits.
func ValidateStrict(s *Scenario, limits ValidationLimits) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if len(s.Name) > limits.MaxNameLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrNameTooLong, len(s.Name), limits.MaxNameLength)
	}

	if len(s.Description) > limits.MaxDescriptionLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrDescriptionTooLong, len(s.Description), limits.MaxDescriptionLength)
	}

	if len(s.Steps) > limits.MaxStepsCount {
		return fmt.Errorf("%w: %d steps (max %d)", ErrTooManySteps, len(s.Steps), limits.MaxStepsCount)
	}

	stepsJSON, err := json.Marshal(s.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}
	if len(stepsJSON) > limits.MaxStepsJSONLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrStepsJSONTooLong, len(stepsJSON), limits.MaxStepsJSONLength)
	}

	return nil
}
