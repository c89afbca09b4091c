package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Options configure a browser session.
type Options struct {
	// Headless runs the browser without a visible window.
	Headless bool

	// SlowMo inserts a delay between automation commands, for debugging.
	SlowMo time.Duration

	// DefaultTimeout is applied to all page operations without an
	// explicit bound. Zero means DefaultTimeout.
	DefaultTimeout time.Duration

	// Install downloads the browser binaries before launching. Skip it
	// when the environment pre-installs them.
	Install bool

	// ViewportWidth and ViewportHeight size the browsing context.
	// Zero values fall back to 1280x720.
	ViewportWidth  int
	ViewportHeight int
}

// Session owns a browser instance, one isolated browsing context, and
// one page within it. The instance's lifetime strictly bounds the
// context's and the page's; Close tears all three down along with the
// driver process.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *playwrightPage
	closed  bool
}

// Launch starts a Chromium instance and opens a fresh context and page.
// On any partial failure the already-acquired resources are released
// before the error is returned.
func Launch(opts Options) (*Session, error) {
	if opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("could not install browser binaries: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		// The driver may be missing even when the caller skipped the
		// install step. Install once and retry before giving up.
		_ = playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
		pw, err = playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("could not start browser driver: %w", err)
		}
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	width, height := opts.ViewportWidth, opts.ViewportHeight
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}

	ctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: width, Height: height},
	})
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("could not create browsing context: %w", err)
	}

	page, err := ctx.NewPage()
	if err != nil {
		_ = ctx.Close()
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("could not open page: %w", err)
	}

	timeout := opts.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))

	return &Session{
		pw:      pw,
		browser: b,
		context: ctx,
		page:    &playwrightPage{page: page},
	}, nil
}

// Page returns the session's single page.
func (s *Session) Page() Page {
	return s.page
}

// Close tears down the page, context, browser instance, and driver.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if s.page != nil {
		if err := s.page.page.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
