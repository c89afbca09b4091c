package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

var (
	// ErrAssertionTimeout is returned when an expected condition (URL,
	// visible text, heading) was not observed within its wait bound.
	ErrAssertionTimeout = errors.New("assertion timeout")

	// ErrLocatorResolution is returned when an element could not be
	// uniquely resolved by its role, accessible name, or placeholder.
	ErrLocatorResolution = errors.New("locator resolution failed")
)

// classifyAssertion wraps driver errors raised while waiting on an
// expected page condition. Strict-mode violations are locator failures;
// everything that ran out of its wait bound is an assertion timeout.
func classifyAssertion(err error) error {
	if err == nil {
		return nil
	}
	if isStrictViolation(err) {
		return fmt.Errorf("%w: %v", ErrLocatorResolution, err)
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrAssertionTimeout, err)
	}
	return err
}

// classifyLocator wraps driver errors raised while acting on an element
// (fill, click). A timeout here means the locator never resolved to a
// usable element, so it is reported as a locator failure.
func classifyLocator(err error) error {
	if err == nil {
		return nil
	}
	if isStrictViolation(err) || isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrLocatorResolution, err)
	}
	return err
}

// isTimeout prefers the driver's typed timeout error; the message check
// is a fallback for errors that arrive with the type stripped.
func isTimeout(err error) bool {
	if errors.Is(err, playwright.ErrTimeout) {
		return true
	}
	var pwErr *playwright.Error
	if errors.As(err, &pwErr) && pwErr.Name == "TimeoutError" {
		return true
	}
	return strings.Contains(err.Error(), "Timeout") ||
		strings.Contains(err.Error(), "timeout")
}

func isStrictViolation(err error) bool {
	var pwErr *playwright.Error
	if errors.As(err, &pwErr) {
		return strings.Contains(pwErr.Message, "strict mode violation")
	}
	return strings.Contains(err.Error(), "strict mode violation")
}
