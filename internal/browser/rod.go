package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Launch starts a local Chromium and connects to it.
func Launch(headless bool) (*rod.Browser, error) {
	l := launcher.New().Headless(headless).NoSandbox(true)
	u, err := l.Launch()
	if err != nil {
		return nil, err
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return b, nil
}

// RodPage adapts a rod page to Page. Every call is bounded: navigation by
// navTimeout, clicks and reads by actionTimeout.
type RodPage struct {
	page          *rod.Page
	navTimeout    time.Duration
	actionTimeout time.Duration
}

// NewPage opens a stealth page on b.
func NewPage(b *rod.Browser, navTimeout, actionTimeout time.Duration) (*RodPage, error) {
	page, err := stealth.Page(b)
	if err != nil {
		return nil, err
	}
	return &RodPage{page: page, navTimeout: navTimeout, actionTimeout: actionTimeout}, nil
}

// Close closes the underlying tab.
func (p *RodPage) Close() error {
	return p.page.Close()
}

func (p *RodPage) Navigate(url string) error {
	pg := p.page.Timeout(p.navTimeout)
	defer pg.CancelTimeout()

	if err := pg.Navigate(url); err != nil {
		return mapTimeout(fmt.Errorf("navigate %s: %w", url, err))
	}
	if err := pg.WaitStable(500 * time.Millisecond); err != nil {
		return mapTimeout(fmt.Errorf("wait for %s to settle: %w", url, err))
	}
	return nil
}

func (p *RodPage) WaitFor(selector string, timeout time.Duration) error {
	pg := p.page.Timeout(timeout)
	defer pg.CancelTimeout()

	_, err := pg.Element(selector)
	return mapTimeout(err)
}

func (p *RodPage) WaitGone(selector string, timeout time.Duration) error {
	pg := p.page.Timeout(timeout)
	defer pg.CancelTimeout()

	err := pg.Wait(rod.Eval(`(s) => document.querySelector(s) === null`, selector))
	return mapTimeout(err)
}

func (p *RodPage) Has(selector string) (Element, bool, error) {
	ok, el, err := p.page.Has(selector)
	if err != nil || !ok {
		return nil, false, err
	}
	return p.wrap(el), true, nil
}

func (p *RodPage) Elements(selector string) ([]Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	return p.wrapAll(els), nil
}

func (p *RodPage) wrap(el *rod.Element) *RodElement {
	return &RodElement{el: el, actionTimeout: p.actionTimeout}
}

func (p *RodPage) wrapAll(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, p.wrap(el))
	}
	return out
}

// RodElement adapts a rod element to Element.
type RodElement struct {
	el            *rod.Element
	actionTimeout time.Duration
}

func (e *RodElement) WaitFor(selector string, timeout time.Duration) error {
	el := e.el.Timeout(timeout)
	defer el.CancelTimeout()

	_, err := el.Element(selector)
	return mapTimeout(err)
}

func (e *RodElement) Has(selector string) (Element, bool, error) {
	ok, el, err := e.el.Has(selector)
	if err != nil || !ok {
		return nil, false, err
	}
	return &RodElement{el: el, actionTimeout: e.actionTimeout}, true, nil
}

func (e *RodElement) Elements(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &RodElement{el: el, actionTimeout: e.actionTimeout})
	}
	return out, nil
}

func (e *RodElement) Click() error {
	el := e.el.Timeout(e.actionTimeout)
	defer el.CancelTimeout()
	return mapTimeout(el.Click(proto.InputMouseButtonLeft, 1))
}

func (e *RodElement) ScrollIntoView() error {
	el := e.el.Timeout(e.actionTimeout)
	defer el.CancelTimeout()
	return mapTimeout(el.ScrollIntoView())
}

func (e *RodElement) Text() (string, error) {
	el := e.el.Timeout(e.actionTimeout)
	defer el.CancelTimeout()
	s, err := el.Text()
	return s, mapTimeout(err)
}

func (e *RodElement) HTML() (string, error) {
	el := e.el.Timeout(e.actionTimeout)
	defer el.CancelTimeout()
	s, err := el.HTML()
	return s, mapTimeout(err)
}

func (e *RodElement) Attribute(name string) (*string, error) {
	el := e.el.Timeout(e.actionTimeout)
	defer el.CancelTimeout()
	s, err := el.Attribute(name)
	return s, mapTimeout(err)
}

// mapTimeout folds rod's context deadline into ErrTimeout so callers only
// check one sentinel.
func mapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
