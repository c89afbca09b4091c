package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiverify/uiverify/browser"
	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/scenario"
	"github.com/uiverify/uiverify/target"
)

func TestRunner_Execute_Pass(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	h := setupTestRunner(t, page, nil)
	tgt := createTestTarget(t)

	rec, err := h.runner.Execute(ctx, tgt, scenario.RBACFrontend())
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, run.StatusPassed, rec.Status)
	assert.Nil(t, rec.FailedStep)

	stored, err := h.runs.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, run.StatusPassed, stored.Status)
	assert.Equal(t, "rbac-frontend", stored.ScenarioName)
	assert.NotNil(t, stored.StartedAt)
	assert.NotNil(t, stored.CompletedAt)

	t.Run("interactions happen in scenario order", func(t *testing.T) {
		want := []string{
			"goto http://localhost:3002/login",
			"fill placeholder:Username=admin",
			"fill placeholder:Password=admin123",
			"click button:Login",
			"wait_url http://localhost:3002/",
			"wait_visible text:แดชบอร์ด",
			"click link:จัดการผู้ใช้",
			"wait_visible heading:User Management",
			"screenshot full_page=true",
			"click link:จัดการสิทธิ์",
			"wait_visible heading:Role Management",
			"screenshot full_page=true",
		}
		require.Len(t, page.ops, len(want))
		for i, w := range want {
			assert.Equal(t, w, page.ops[i].String(), "op %d", i)
		}
	})

	t.Run("login redirect gets its own wait bound", func(t *testing.T) {
		assert.Equal(t, 10*time.Second, page.ops[4].timeout)
		assert.Equal(t, time.Duration(0), page.ops[5].timeout)
		assert.Equal(t, time.Duration(0), page.ops[7].timeout)
	})

	t.Run("screenshots are uploaded and indexed", func(t *testing.T) {
		assets, err := h.assets.ListByRun(ctx, rec.ID)
		require.NoError(t, err)
		require.Len(t, assets, 2)

		assert.Equal(t, "user-management-page.png", assets[0].FileName)
		assert.Equal(t, 8, assets[0].StepIndex)
		assert.Equal(t, "role-management-page.png", assets[1].FileName)
		assert.Equal(t, 11, assets[1].StepIndex)

		for _, asset := range assets {
			assert.Equal(t, run.AssetTypeScreenshot, asset.AssetType)
			assert.Equal(t, "image/png", asset.MimeType)
			assert.Equal(t, int64(len("png-bytes")), asset.FileSize)

			onDisk := filepath.Join(h.blobDir, asset.AssetPath)
			data, err := os.ReadFile(onDisk)
			require.NoError(t, err)
			assert.Equal(t, []byte("png-bytes"), data)
		}
	})

	t.Run("session is launched and closed exactly once", func(t *testing.T) {
		assert.Equal(t, 1, h.launches)
		assert.Equal(t, 1, h.session.closes)
	})
}

func TestRunner_Execute_WrongPassword(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	// The login never redirects, so the URL assertion times out.
	page.errs["wait_url http://localhost:3002/"] = fmt.Errorf(
		"%w: Timeout 10000ms exceeded", browser.ErrAssertionTimeout)

	h := setupTestRunner(t, page, nil)
	tgt := createTestTarget(t)

	rec, err := h.runner.Execute(ctx, tgt, scenario.RBACFrontend())
	require.NoError(t, err, "assertion failures are reported through the run, not the error")
	require.NotNil(t, rec)

	assert.Equal(t, run.StatusFailed, rec.Status)
	require.NotNil(t, rec.FailedStep)
	assert.Equal(t, 4, *rec.FailedStep)
	assert.Contains(t, rec.Notes, "step 4")

	// Nothing after the failed step runs.
	assert.Len(t, page.ops, 5)

	// No screenshots were reached, so no assets exist.
	assets, listErr := h.assets.ListByRun(ctx, rec.ID)
	require.NoError(t, listErr)
	assert.Empty(t, assets)

	// The session is still torn down.
	assert.Equal(t, 1, h.session.closes)

	stored, getErr := h.runs.GetByID(ctx, rec.ID)
	require.NoError(t, getErr)
	assert.Equal(t, run.StatusFailed, stored.Status)
	require.NotNil(t, stored.FailedStep)
	assert.Equal(t, 4, *stored.FailedStep)
}

func TestRunner_Execute_MissingElement(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	page.errs["click button:Login"] = fmt.Errorf(
		"%w: strict mode violation", browser.ErrLocatorResolution)

	h := setupTestRunner(t, page, nil)
	tgt := createTestTarget(t)

	rec, err := h.runner.Execute(ctx, tgt, scenario.RBACFrontend())
	require.NoError(t, err)

	assert.Equal(t, run.StatusFailed, rec.Status)
	require.NotNil(t, rec.FailedStep)
	assert.Equal(t, 3, *rec.FailedStep)
	assert.Equal(t, 1, h.session.closes)
}

func TestRunner_Execute_LaunchFailure(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	h := setupTestRunner(t, page, errors.New("chromium not found"))
	tgt := createTestTarget(t)

	rec, err := h.runner.Execute(ctx, tgt, scenario.RBACFrontend())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSession)
	require.NotNil(t, rec)

	assert.Equal(t, run.StatusErrored, rec.Status)
	assert.Empty(t, page.ops)
	assert.Equal(t, 0, h.session.closes)

	stored, getErr := h.runs.GetByID(ctx, rec.ID)
	require.NoError(t, getErr)
	assert.Equal(t, run.StatusErrored, stored.Status)
	assert.Contains(t, stored.Notes, "chromium not found")
}

func TestRunner_Execute_ScreenshotError(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	page.errs["screenshot full_page=true"] = errors.New("page crashed")

	h := setupTestRunner(t, page, nil)
	tgt := createTestTarget(t)

	rec, err := h.runner.Execute(ctx, tgt, scenario.RBACFrontend())
	require.Error(t, err)

	assert.Equal(t, run.StatusErrored, rec.Status)
	require.NotNil(t, rec.FailedStep)
	assert.Equal(t, 8, *rec.FailedStep)
	assert.Equal(t, 1, h.session.closes)
}

func TestRunner_Execute_CanceledMidRun(t *testing.T) {
	page := newFakePage()
	h := setupTestRunner(t, page, nil)
	tgt := createTestTarget(t)

	// Cancel while the first step is executing. The runner notices at
	// the next step boundary and aborts there.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	page.onRecord = func(o op) {
		if o.kind == "goto" {
			cancel()
		}
	}

	rec, err := h.runner.Execute(ctx, tgt, scenario.RBACFrontend())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, rec)

	assert.Equal(t, run.StatusErrored, rec.Status)
	require.NotNil(t, rec.FailedStep)
	assert.Equal(t, 1, *rec.FailedStep)

	// Nothing past the step in flight runs, and the session is still
	// torn down.
	assert.Len(t, page.ops, 1)
	assert.Equal(t, 1, h.session.closes)

	// The final state is recorded even though the context is canceled.
	stored, getErr := h.runs.GetByID(context.Background(), rec.ID)
	require.NoError(t, getErr)
	assert.Equal(t, run.StatusErrored, stored.Status)
	require.NotNil(t, stored.FailedStep)
	assert.Equal(t, 1, *stored.FailedStep)
	assert.Contains(t, stored.Notes, "context canceled")
	assert.NotNil(t, stored.CompletedAt)
}

func TestRunner_Execute_BadCredentialKey(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	h := setupTestRunner(t, page, nil)

	tgt := createTestTarget(t)
	require.NoError(t, tgt.SetPassword(target.DeriveKey("some-other-passphrase"), "admin123"))

	rec, err := h.runner.Execute(ctx, tgt, scenario.RBACFrontend())
	require.Error(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, run.StatusErrored, rec.Status)
	assert.Equal(t, 0, h.launches, "no browser is launched when credentials cannot be resolved")
}

func TestRunner_Execute_NoPasswordNeeded(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	h := setupTestRunner(t, page, nil)

	tgt := createTestTarget(t)
	tgt.EncryptedPassword = nil

	sc := &scenario.Scenario{
		Name: "health-page",
		Steps: scenario.Steps{
			{Action: scenario.ActionNavigate, Path: "/health"},
			{Action: scenario.ActionExpectText, Text: "ok"},
		},
	}

	rec, err := h.runner.Execute(ctx, tgt, sc)
	require.NoError(t, err)
	assert.Equal(t, run.StatusPassed, rec.Status)
}

func TestRunner_Execute_InvalidScenario(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	h := setupTestRunner(t, page, nil)
	tgt := createTestTarget(t)

	sc := &scenario.Scenario{Name: "empty"}

	rec, err := h.runner.Execute(ctx, tgt, sc)
	require.Error(t, err)
	assert.ErrorIs(t, err, scenario.ErrNoSteps)
	assert.Nil(t, rec)

	// Nothing was persisted or launched.
	runs, listErr := h.runs.List(ctx, 10, 0)
	require.NoError(t, listErr)
	assert.Empty(t, runs)
	assert.Equal(t, 0, h.launches)
}

func TestRunner_Execute_CloseErrorIsLogged(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	h := setupTestRunner(t, page, nil)
	h.session.closeErr = errors.New("driver already gone")
	tgt := createTestTarget(t)

	rec, err := h.runner.Execute(ctx, tgt, scenario.RBACFrontend())
	require.NoError(t, err)
	assert.Equal(t, run.StatusPassed, rec.Status)
	assert.True(t, h.log.HasEntry("warn", "failed to close browser session"))
}
