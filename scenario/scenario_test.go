package scenario

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario_Validate(t *testing.T) {
	targetID := uuid.New()
	tests := []struct {
		name     string
		scenario Scenario
		wantErr  error
	}{
		{
			name: "valid scenario",
			scenario: Scenario{
				Name:     "login-check",
				TargetID: targetID,
				Steps:    loginSteps(),
			},
			wantErr: nil,
		},
		{
			name: "missing name",
			scenario: Scenario{
				TargetID: targetID,
				Steps:    loginSteps(),
			},
			wantErr: ErrInvalidScenarioName,
		},
		{
			name: "missing target",
			scenario: Scenario{
				Name:  "login-check",
				Steps: loginSteps(),
			},
			wantErr: ErrInvalidTargetID,
		},
		{
			name: "no steps",
			scenario: Scenario{
				Name:     "login-check",
				TargetID: targetID,
			},
			wantErr: ErrNoSteps,
		},
		{
			name: "invalid step action",
			scenario: Scenario{
				Name:     "login-check",
				TargetID: targetID,
				Steps:    Steps{{Action: "hover"}},
			},
			wantErr: ErrInvalidAction,
		},
		{
			name: "step missing required field",
			scenario: Scenario{
				Name:     "login-check",
				TargetID: targetID,
				Steps:    Steps{{Action: ActionClick, Role: "button"}},
			},
			wantErr: ErrMissingStepField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scenario.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestStep_Validate(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		wantErr error
	}{
		{name: "navigate", step: Step{Action: ActionNavigate, Path: "/login"}},
		{name: "navigate without path", step: Step{Action: ActionNavigate}, wantErr: ErrMissingStepField},
		{name: "fill", step: Step{Action: ActionFill, Placeholder: "Username", Value: "admin"}},
		{name: "fill without placeholder", step: Step{Action: ActionFill, Value: "admin"}, wantErr: ErrMissingStepField},
		{name: "click", step: Step{Action: ActionClick, Role: "link", Name: "จัดการผู้ใช้"}},
		{name: "click without name", step: Step{Action: ActionClick, Role: "link"}, wantErr: ErrMissingStepField},
		{name: "expect_url", step: Step{Action: ActionExpectURL, Path: "/", TimeoutMS: 10000}},
		{name: "expect_text", step: Step{Action: ActionExpectText, Text: "แดชบอร์ด"}},
		{name: "expect_text without text", step: Step{Action: ActionExpectText}, wantErr: ErrMissingStepField},
		{name: "expect_heading", step: Step{Action: ActionExpectHeading, Name: "User Management"}},
		{name: "screenshot", step: Step{Action: ActionScreenshot, File: "page.png"}},
		{name: "screenshot without file", step: Step{Action: ActionScreenshot}, wantErr: ErrMissingStepField},
		{name: "unknown action", step: Step{Action: "scroll"}, wantErr: ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSteps_JSONRoundTrip(t *testing.T) {
	steps := loginSteps()

	value, err := steps.Value()
	require.NoError(t, err)

	var decoded Steps
	require.NoError(t, decoded.Scan(value.([]byte)))
	assert.Equal(t, steps, decoded)

	// Nil steps survive the round trip as nil.
	var empty Steps
	value, err = empty.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRBACFrontend(t *testing.T) {
	sc := RBACFrontend()
	sc.TargetID = uuid.New()

	require.NoError(t, sc.Validate())
	require.Len(t, sc.Steps, 12)

	// Login portion.
	assert.Equal(t, ActionNavigate, sc.Steps[0].Action)
	assert.Equal(t, "/login", sc.Steps[0].Path)
	assert.Equal(t, "Username", sc.Steps[1].Placeholder)
	assert.Equal(t, "{{username}}", sc.Steps[1].Value)
	assert.Equal(t, "Password", sc.Steps[2].Placeholder)
	assert.Equal(t, "Login", sc.Steps[3].Name)

	// The post-login URL assertion is the only step with an explicit bound.
	assert.Equal(t, ActionExpectURL, sc.Steps[4].Action)
	assert.Equal(t, 10000, sc.Steps[4].TimeoutMS)
	for i, step := range sc.Steps {
		if i != 4 {
			assert.Zero(t, step.TimeoutMS, "step %d should use the default bound", i)
		}
	}

	// Management pages and their screenshots.
	assert.Equal(t, "User Management", sc.Steps[7].Name)
	assert.Equal(t, "user-management-page.png", sc.Steps[8].File)
	assert.Equal(t, "Role Management", sc.Steps[10].Name)
	assert.Equal(t, "role-management-page.png", sc.Steps[11].File)

	// Steps survive JSON serialization, the storage format.
	data, err := json.Marshal(sc.Steps)
	require.NoError(t, err)
	var decoded Steps
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sc.Steps, decoded)
}
