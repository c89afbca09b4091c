package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/uiverify/uiverify/browser"
	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/scenario"
	"github.com/uiverify/uiverify/storage"
	"github.com/uiverify/uiverify/target"

	"github.com/google/uuid"
)

var (
	// ErrNoSession is returned when the browser session could not be
	// launched.
	ErrNoSession = errors.New("browser session unavailable")
)

// Session is the slice of a browser session the runner needs. A
// *browser.Session satisfies it; tests substitute fakes.
type Session interface {
	Page() browser.Page
	Close() error
}

// LaunchFunc starts a fresh browser session. The runner calls it
// exactly once per Execute and closes the returned session before
// returning, pass or fail.
type LaunchFunc func() (Session, error)

// PlaywrightLauncher returns a LaunchFunc backed by a real Chromium
// session.
func PlaywrightLauncher(opts browser.Options) LaunchFunc {
	return func() (Session, error) {
		return browser.Launch(opts)
	}
}

// Runner executes scenarios against targets, records the run and its
// artifacts, and tears the browser down when done.
type Runner struct {
	launch        LaunchFunc
	runs          run.Store
	assets        run.AssetStore
	blobs         storage.BlobStorage
	credentialKey []byte
	logger        logger.Logger
}

// New creates a runner. credentialKey decrypts target passwords for
// credential placeholder expansion.
func New(launch LaunchFunc, runs run.Store, assets run.AssetStore, blobs storage.BlobStorage, credentialKey []byte, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Runner{
		launch:        launch,
		runs:          runs,
		assets:        assets,
		blobs:         blobs,
		credentialKey: credentialKey,
		logger:        log,
	}
}

// Execute runs the scenario's steps against the target in order,
// stopping at the first failure. The returned run carries the final
// status: passed when every step succeeded, failed when an assertion
// timed out or a locator could not be resolved, errored on anything
// else. A non-nil error reports infrastructure failures (persistence,
// browser launch); step failures are reported through the run alone.
func (r *Runner) Execute(ctx context.Context, tgt *target.Target, sc *scenario.Scenario) (*run.Run, error) {
	// Built-in scenarios carry no target binding until they run.
	if sc.TargetID == uuid.Nil {
		sc.TargetID = tgt.ID
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	rec := &run.Run{
		TargetID:     tgt.ID,
		ScenarioName: sc.Name,
		Status:       run.StatusPending,
	}
	if sc.ID != uuid.Nil {
		id := sc.ID
		rec.ScenarioID = &id
	}
	if err := r.runs.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	log := r.logger.WithFields(map[string]interface{}{
		"run_id":   rec.ID.String(),
		"target":   tgt.Name,
		"scenario": sc.Name,
	})

	if err := r.runs.Start(ctx, rec.ID); err != nil {
		return rec, fmt.Errorf("failed to start run: %w", err)
	}

	creds, err := r.resolveCredentials(tgt, sc)
	if err != nil {
		return rec, r.finish(ctx, rec, run.StatusErrored, nil, err, log)
	}

	session, err := r.launch()
	if err != nil {
		launchErr := fmt.Errorf("%w: %v", ErrNoSession, err)
		return rec, r.finish(ctx, rec, run.StatusErrored, nil, launchErr, log)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			log.Warn(ctx, "failed to close browser session", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	log.Info(ctx, "run started", map[string]interface{}{
		"steps": len(sc.Steps),
	})

	page := session.Page()
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return rec, r.finish(ctx, rec, run.StatusErrored, &i, err, log)
		}

		log.Debug(ctx, "executing step", map[string]interface{}{
			"step":   i,
			"action": string(step.Action),
		})

		if err := r.executeStep(ctx, page, tgt, rec, i, step, creds); err != nil {
			status := run.StatusErrored
			if errors.Is(err, browser.ErrAssertionTimeout) || errors.Is(err, browser.ErrLocatorResolution) {
				status = run.StatusFailed
			}
			return rec, r.finish(ctx, rec, status, &i, stepError(i, step.Action, err), log)
		}
	}

	return rec, r.finish(ctx, rec, run.StatusPassed, nil, nil, log)
}

// executeStep dispatches one step against the page.
func (r *Runner) executeStep(ctx context.Context, page browser.Page, tgt *target.Target, rec *run.Run, index int, step scenario.Step, creds credentials) error {
	switch step.Action {
	case scenario.ActionNavigate:
		return page.Goto(tgt.URL(step.Path))

	case scenario.ActionFill:
		return page.ByPlaceholder(step.Placeholder).Fill(creds.expand(step.Value))

	case scenario.ActionClick:
		return page.ByRole(browser.Role(step.Role), step.Name).Click()

	case scenario.ActionExpectURL:
		return page.WaitForURL(tgt.URL(step.Path), step.Timeout())

	case scenario.ActionExpectText:
		return page.ByText(step.Text).WaitVisible(step.Timeout())

	case scenario.ActionExpectHeading:
		return page.ByRole(browser.RoleHeading, step.Name).WaitVisible(step.Timeout())

	case scenario.ActionScreenshot:
		return r.captureScreenshot(ctx, page, rec, index, step.File)

	default:
		return fmt.Errorf("%w: %q", scenario.ErrInvalidAction, step.Action)
	}
}

// captureScreenshot takes a full-page screenshot, uploads it to blob
// storage under the run's artifact prefix, and records the asset.
func (r *Runner) captureScreenshot(ctx context.Context, page browser.Page, rec *run.Run, index int, file string) error {
	data, err := page.Screenshot(true)
	if err != nil {
		return err
	}

	assetPath := path.Join("runs", rec.ID.String(), file)
	if err := r.blobs.Upload(ctx, assetPath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to upload screenshot: %w", err)
	}

	asset := &run.Asset{
		RunID:      rec.ID,
		AssetType:  run.AssetTypeScreenshot,
		AssetPath:  assetPath,
		FileName:   file,
		FileSize:   int64(len(data)),
		MimeType:   "image/png",
		StepIndex:  index,
		UploadedAt: time.Now(),
	}
	if err := r.assets.Create(ctx, asset); err != nil {
		return fmt.Errorf("failed to record screenshot asset: %w", err)
	}
	return nil
}

// finish completes the run with the final status, recording the failed
// step index and the failure as notes when present. Recording must
// survive the caller's context being canceled, so it runs detached.
func (r *Runner) finish(ctx context.Context, rec *run.Run, status run.Status, failedStep *int, cause error, log logger.Logger) error {
	ctx = context.WithoutCancel(ctx)
	if failedStep != nil {
		if err := r.runs.Update(ctx, rec.ID, run.SetFailedStep(*failedStep)); err != nil {
			log.Error(ctx, "failed to record failed step", map[string]interface{}{
				"error": err.Error(),
			})
		}
		rec.FailedStep = failedStep
	}

	notes := ""
	if cause != nil {
		notes = cause.Error()
	}
	if err := r.runs.Complete(ctx, rec.ID, status, notes); err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	rec.Status = status
	rec.Notes = notes

	fields := map[string]interface{}{"status": string(status)}
	if failedStep != nil {
		fields["failed_step"] = *failedStep
	}
	switch status {
	case run.StatusPassed:
		log.Info(ctx, "run passed", fields)
	case run.StatusFailed:
		log.Warn(ctx, "run failed", fields)
	default:
		log.Error(ctx, "run errored", fields)
	}

	if status == run.StatusErrored && cause != nil {
		return cause
	}
	return nil
}

const (
	usernamePlaceholder = "{{username}}"
	passwordPlaceholder = "{{password}}"
)

// credentials holds the target's resolved login values.
type credentials struct {
	username string
	password string
}

// expand substitutes credential placeholders in a step value.
func (c credentials) expand(value string) string {
	value = strings.ReplaceAll(value, usernamePlaceholder, c.username)
	value = strings.ReplaceAll(value, passwordPlaceholder, c.password)
	return value
}

// resolveCredentials decrypts the target's password only when the
// scenario actually references it, so a missing credential key does not
// block credential-free scenarios.
func (r *Runner) resolveCredentials(tgt *target.Target, sc *scenario.Scenario) (credentials, error) {
	creds := credentials{username: tgt.Username}

	needsPassword := false
	for _, step := range sc.Steps {
		if step.Action == scenario.ActionFill && strings.Contains(step.Value, passwordPlaceholder) {
			needsPassword = true
			break
		}
	}
	if !needsPassword {
		return creds, nil
	}

	password, err := tgt.Password(r.credentialKey)
	if err != nil {
		return credentials{}, fmt.Errorf("failed to decrypt target password: %w", err)
	}
	creds.password = password
	return creds, nil
}

func stepError(index int, action scenario.Action, err error) error {
	return fmt.Errorf("step %d (%s): %w", index, action, err)
}
