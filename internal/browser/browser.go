// Package browser is the narrow view of the page renderer the crawler needs.
// Element handles do not survive navigation; callers re-query after Navigate.
package browser

import (
	"errors"
	"time"
)

// ErrTimeout is returned (wrapped) when a bounded wait expires.
var ErrTimeout = errors.New("browser: wait timed out")

// Waiter blocks until a selector matches, scoped to a page or an element.
type Waiter interface {
	WaitFor(selector string, timeout time.Duration) error
}

// Querier looks up elements without waiting.
type Querier interface {
	// Has reports whether selector matches, returning the first match.
	Has(selector string) (Element, bool, error)
	Elements(selector string) ([]Element, error)
}

type Page interface {
	Waiter
	Querier
	// Navigate loads url and waits for network activity to settle.
	Navigate(url string) error
	// WaitGone blocks until nothing on the page matches selector.
	WaitGone(selector string, timeout time.Duration) error
}

type Element interface {
	Waiter
	Querier
	Click() error
	ScrollIntoView() error
	// Text is the rendered (inner) text.
	Text() (string, error)
	// HTML is the outer HTML.
	HTML() (string, error)
	// Attribute returns nil when the attribute is not set.
	Attribute(name string) (*string, error)
}
