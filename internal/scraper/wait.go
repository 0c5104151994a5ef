package scraper

import (
	"errors"
	"time"

	"mspro-labs/menu-buddy/internal/browser"
)

// waitFor reports whether selector appeared within timeout. A timeout is a
// normal "not found" outcome; any other renderer failure is returned.
func waitFor(w browser.Waiter, selector string, timeout time.Duration) (bool, error) {
	err := w.WaitFor(selector, timeout)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, browser.ErrTimeout):
		return false, nil
	default:
		return false, err
	}
}
