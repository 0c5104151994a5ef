package scraper

import (
	"fmt"
	"time"

	"mspro-labs/menu-buddy/internal/browser"
)

// fakeElement is a node in an in-memory DOM. Children are keyed by the exact
// selector string the crawler queries with.
type fakeElement struct {
	text     string
	html     string
	attrs    map[string]string
	children map[string][]*fakeElement
	onClick  func()
	clicks   int

	failClick error
	panicHTML bool
}

func newEl() *fakeElement {
	return &fakeElement{attrs: map[string]string{}, children: map[string][]*fakeElement{}}
}

func (e *fakeElement) set(sel string, els ...*fakeElement) *fakeElement {
	e.children[sel] = els
	return e
}

func (e *fakeElement) add(sel string, els ...*fakeElement) *fakeElement {
	e.children[sel] = append(e.children[sel], els...)
	return e
}

func (e *fakeElement) remove(sel string) {
	delete(e.children, sel)
}

func (e *fakeElement) WaitFor(selector string, timeout time.Duration) error {
	if len(e.children[selector]) > 0 {
		return nil
	}
	return fmt.Errorf("%w: %s after %s", browser.ErrTimeout, selector, timeout)
}

func (e *fakeElement) Has(selector string) (browser.Element, bool, error) {
	els := e.children[selector]
	if len(els) == 0 {
		return nil, false, nil
	}
	return els[0], true, nil
}

func (e *fakeElement) Elements(selector string) ([]browser.Element, error) {
	out := make([]browser.Element, 0, len(e.children[selector]))
	for _, el := range e.children[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (e *fakeElement) Click() error {
	if e.failClick != nil {
		return e.failClick
	}
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) ScrollIntoView() error { return nil }

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) HTML() (string, error) {
	if e.panicHTML {
		panic("renderer crashed")
	}
	return e.html, nil
}

func (e *fakeElement) Attribute(name string) (*string, error) {
	v, ok := e.attrs[name]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// fakePage holds a root element; Navigate swaps in a freshly built landing view.
type fakePage struct {
	root        *fakeElement
	landing     func() *fakeElement
	navigations []string
	waitGone    []string
	waitErr     map[string]error // WaitFor fails outright for these selectors
}

func (p *fakePage) Navigate(url string) error {
	p.navigations = append(p.navigations, url)
	if p.landing != nil {
		p.root = p.landing()
	}
	return nil
}

func (p *fakePage) WaitFor(selector string, timeout time.Duration) error {
	if err := p.waitErr[selector]; err != nil {
		return err
	}
	return p.root.WaitFor(selector, timeout)
}

func (p *fakePage) WaitGone(selector string, timeout time.Duration) error {
	p.waitGone = append(p.waitGone, selector)
	if len(p.root.children[selector]) > 0 {
		return fmt.Errorf("%w: %s still attached", browser.ErrTimeout, selector)
	}
	return nil
}

func (p *fakePage) Has(selector string) (browser.Element, bool, error) {
	return p.root.Has(selector)
}

func (p *fakePage) Elements(selector string) ([]browser.Element, error) {
	return p.root.Elements(selector)
}
