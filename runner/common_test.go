package runner

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/uiverify/uiverify/browser"
	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/storage"
	"github.com/uiverify/uiverify/target"
	"github.com/uiverify/uiverify/testutil"
)

// op records one page interaction performed by the runner, in order.
type op struct {
	kind    string
	detail  string
	timeout time.Duration
}

func (o op) String() string {
	return fmt.Sprintf("%s %s", o.kind, o.detail)
}

// fakePage implements browser.Page, recording every interaction and
// returning scripted errors keyed by "kind detail". onRecord, when
// set, observes each interaction as it happens.
type fakePage struct {
	ops           []op
	errs          map[string]error
	currentURL    string
	screenshot    []byte
	screenshotErr error
	onRecord      func(o op)
}

func newFakePage() *fakePage {
	return &fakePage{
		errs:       make(map[string]error),
		screenshot: []byte("png-bytes"),
	}
}

func (p *fakePage) record(kind, detail string, timeout time.Duration) error {
	o := op{kind: kind, detail: detail, timeout: timeout}
	p.ops = append(p.ops, o)
	if p.onRecord != nil {
		p.onRecord(o)
	}
	return p.errs[kind+" "+detail]
}

func (p *fakePage) Goto(url string) error {
	p.currentURL = url
	return p.record("goto", url, 0)
}

func (p *fakePage) URL() string {
	return p.currentURL
}

func (p *fakePage) WaitForURL(url string, timeout time.Duration) error {
	return p.record("wait_url", url, timeout)
}

func (p *fakePage) ByPlaceholder(text string) browser.Element {
	return &fakeElement{page: p, desc: "placeholder:" + text}
}

func (p *fakePage) ByRole(role browser.Role, name string) browser.Element {
	return &fakeElement{page: p, desc: string(role) + ":" + name}
}

func (p *fakePage) ByText(text string) browser.Element {
	return &fakeElement{page: p, desc: "text:" + text}
}

func (p *fakePage) Screenshot(fullPage bool) ([]byte, error) {
	if err := p.record("screenshot", fmt.Sprintf("full_page=%t", fullPage), 0); err != nil {
		return nil, err
	}
	if p.screenshotErr != nil {
		return nil, p.screenshotErr
	}
	return p.screenshot, nil
}

type fakeElement struct {
	page *fakePage
	desc string
}

func (e *fakeElement) Fill(value string) error {
	return e.page.record("fill", e.desc+"="+value, 0)
}

func (e *fakeElement) Click() error {
	return e.page.record("click", e.desc, 0)
}

func (e *fakeElement) WaitVisible(timeout time.Duration) error {
	return e.page.record("wait_visible", e.desc, timeout)
}

// fakeSession counts closes so tests can assert the teardown invariant.
type fakeSession struct {
	page     *fakePage
	closes   int
	closeErr error
}

func (s *fakeSession) Page() browser.Page { return s.page }

func (s *fakeSession) Close() error {
	s.closes++
	return s.closeErr
}

// testHarness bundles the runner with everything the tests assert on.
type testHarness struct {
	runner   *Runner
	runs     run.Store
	assets   run.AssetStore
	session  *fakeSession
	launches int
	blobDir  string
	log      *logger.TestLogger
}

var testCredentialKey = target.DeriveKey("test-passphrase")

func setupTestRunner(t *testing.T, page *fakePage, launchErr error) *testHarness {
	t.Helper()

	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &run.Run{}, &run.Asset{})

	log := logger.NewTestLogger()
	runs := run.NewMySQLStore(db, log)
	assets := run.NewMySQLAssetStore(db, log)

	blobDir := t.TempDir()
	blobs, err := storage.NewLocalStorage(blobDir)
	if err != nil {
		t.Fatalf("failed to create blob storage: %v", err)
	}

	h := &testHarness{
		runs:    runs,
		assets:  assets,
		session: &fakeSession{page: page},
		blobDir: blobDir,
		log:     log,
	}
	launch := func() (Session, error) {
		h.launches++
		if launchErr != nil {
			return nil, launchErr
		}
		return h.session, nil
	}
	h.runner = New(launch, runs, assets, blobs, testCredentialKey, log)
	return h
}

func createTestTarget(t *testing.T) *target.Target {
	t.Helper()

	tgt := &target.Target{
		ID:       uuid.New(),
		Name:     "rbac-frontend",
		BaseURL:  "http://localhost:3002",
		Username: "admin",
		IsActive: true,
	}
	if err := tgt.SetPassword(testCredentialKey, "admin123"); err != nil {
		t.Fatalf("failed to set target password: %v", err)
	}
	return tgt
}
