package scenario

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidAction is returned when a step carries an unknown action.
	ErrInvalidAction = errors.New("invalid step action")

	// ErrMissingStepField is returned when a step lacks a field its
	// action requires.
	ErrMissingStepField = errors.New("missing step field")
)

// Action identifies what a step does to the page.
type Action string

const (
	// ActionNavigate opens a route relative to the target's base URL.
	ActionNavigate Action = "navigate"

	// ActionFill locates an input by placeholder and sets its value.
	ActionFill Action = "fill"

	// ActionClick locates an element by role and accessible name and
	// activates it.
	ActionClick Action = "click"

	// ActionExpectURL asserts the page's address equals the target's
	// base URL joined with the step path.
	ActionExpectURL Action = "expect_url"

	// ActionExpectText asserts the given text is visible on the page.
	ActionExpectText Action = "expect_text"

	// ActionExpectHeading asserts a heading with the given accessible
	// name is visible.
	ActionExpectHeading Action = "expect_heading"

	// ActionScreenshot captures a full-page screenshot under the given
	// file name.
	ActionScreenshot Action = "screenshot"
)

// IsValid checks if the action is known.
func (a Action) IsValid() bool {
	switch a {
	case ActionNavigate, ActionFill, ActionClick, ActionExpectURL,
		ActionExpectText, ActionExpectHeading, ActionScreenshot:
		return true
	default:
		return false
	}
}

// Step is a single browser operation. Which fields are required depends
// on the action; Validate enforces the per-action contract.
type Step struct {
	Action Action `json:"action"`

	// Path is a route relative to the target base URL (navigate,
	// expect_url).
	Path string `json:"path,omitempty"`

	// Placeholder identifies an input by its placeholder text (fill).
	Placeholder string `json:"placeholder,omitempty"`

	// Value is the text to set (fill). The literals {{username}} and
	// {{password}} expand to the target's credentials at run time.
	Value string `json:"value,omitempty"`

	// Role is the ARIA role of the element to activate (click).
	Role string `json:"role,omitempty"`

	// Name is the accessible name of the element (click,
	// expect_heading).
	Name string `json:"name,omitempty"`

	// Text is the visible text to assert on (expect_text).
	Text string `json:"text,omitempty"`

	// File is the artifact file name (screenshot).
	File string `json:"file,omitempty"`

	// TimeoutMS overrides the default wait bound for this step.
	TimeoutMS int `json:"timeout_ms,omitempty"`
}

// Timeout returns the step's explicit wait bound, or zero when the
// default applies.
func (s *Step) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Validate checks the per-action required fields.
func (s *Step) Validate() error {
	if !s.Action.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, s.Action)
	}
	switch s.Action {
	case ActionNavigate, ActionExpectURL:
		if s.Path == "" {
			return fmt.Errorf("%w: %s requires path", ErrMissingStepField, s.Action)
		}
	case ActionFill:
		if s.Placeholder == "" {
			return fmt.Errorf("%w: fill requires placeholder", ErrMissingStepField)
		}
	case ActionClick:
		if s.Role == "" || s.Name == "" {
			return fmt.Errorf("%w: click requires role and name", ErrMissingStepField)
		}
	case ActionExpectText:
		if s.Text == "" {
			return fmt.Errorf("%w: expect_text requires text", ErrMissingStepField)
		}
	case ActionExpectHeading:
		if s.Name == "" {
			return fmt.Errorf("%w: expect_heading requires name", ErrMissingStepField)
		}
	case ActionScreenshot:
		if s.File == "" {
			return fmt.Errorf("%w: screenshot requires file", ErrMissingStepField)
		}
	}
	return nil
}

// Steps is the ordered step list of a scenario, stored as a JSON column.
type Steps []Step

// Value implements the driver.Valuer interface for database storage.
func (s Steps) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for database retrieval.
func (s *Steps) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Steps: not a byte slice")
	}

	return json.Unmarshal(bytes, s)
}

func stepError(index int, err error) error {
	return fmt.Errorf("step %d: %w", index, err)
}
