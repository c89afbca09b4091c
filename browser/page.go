package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// DefaultTimeout is the wait bound applied to every step that does not
// carry its own explicit timeout.
const DefaultTimeout = 30 * time.Second

// Role identifies an element by its ARIA role.
type Role string

const (
	RoleButton  Role = "button"
	RoleLink    Role = "link"
	RoleHeading Role = "heading"
)

// Element is a handle to a single located UI element.
type Element interface {
	// Fill replaces the element's value with the given text.
	Fill(value string) error

	// Click activates the element.
	Click() error

	// WaitVisible blocks until the element is visible or the timeout
	// elapses. A zero timeout uses DefaultTimeout.
	WaitVisible(timeout time.Duration) error
}

// Page is a single navigable document view. Locator methods never touch
// the document themselves; resolution happens when the returned Element
// is acted upon.
type Page interface {
	// Goto navigates the page to the given URL and waits for load.
	Goto(url string) error

	// URL returns the page's current address.
	URL() string

	// WaitForURL blocks until the page's address equals url or the
	// timeout elapses. A zero timeout uses DefaultTimeout.
	WaitForURL(url string, timeout time.Duration) error

	// ByPlaceholder locates an input by its placeholder text.
	ByPlaceholder(text string) Element

	// ByRole locates an element by ARIA role and accessible name.
	ByRole(role Role, name string) Element

	// ByText locates an element containing the given text.
	ByText(text string) Element

	// Screenshot captures the page as a PNG image.
	Screenshot(fullPage bool) ([]byte, error)
}

// playwrightPage implements Page on top of a playwright page.
type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string) error {
	_, err := p.page.Goto(url)
	return classifyAssertion(err)
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) WaitForURL(url string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	err := p.page.WaitForURL(url, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return classifyAssertion(err)
}

func (p *playwrightPage) ByPlaceholder(text string) Element {
	return &playwrightElement{locator: p.page.GetByPlaceholder(text)}
}

func (p *playwrightPage) ByRole(role Role, name string) Element {
	return &playwrightElement{locator: p.page.GetByRole(
		playwright.AriaRole(role),
		playwright.PageGetByRoleOptions{Name: name},
	)}
}

func (p *playwrightPage) ByText(text string) Element {
	return &playwrightElement{locator: p.page.GetByText(text)}
}

func (p *playwrightPage) Screenshot(fullPage bool) ([]byte, error) {
	data, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
	})
	if err != nil {
		return nil, classifyAssertion(err)
	}
	return data, nil
}

// playwrightElement implements Element on top of a playwright locator.
type playwrightElement struct {
	locator playwright.Locator
}

func (e *playwrightElement) Fill(value string) error {
	return classifyLocator(e.locator.Fill(value))
}

func (e *playwrightElement) Click() error {
	return classifyLocator(e.locator.Click())
}

func (e *playwrightElement) WaitVisible(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	err := e.locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return classifyAssertion(err)
}
