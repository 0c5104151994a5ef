package scraper

import (
	"fmt"

	"mspro-labs/menu-buddy/internal/config"
)

type fakeItem struct {
	name      string
	allergens string
	nutrition string
	noPanel   bool // dialog opens, nutrition panel never renders
	panics    bool
	stuck     bool   // close control does nothing
	hidden    string // markup-only text inside the name
}

type fakeSection struct {
	id           string
	label        string // toggle label; "" means no toggle
	expanded     bool   // toggle already active
	neverExpands bool
	items        []fakeItem
}

type fakeLocation struct {
	name     string
	noMenu   bool
	sections []fakeSection
}

// fakeSite renders a Nutrislice-shaped catalog into a fakePage.
type fakeSite struct {
	sel       config.Selectors
	page      *fakePage
	locations []fakeLocation

	consentShown bool
	consentBtn   *fakeElement
	visited      []string
	closeClicks  int
	itemClicks   map[string]int
}

func newFakeSite(cfg *config.SiteConfig, consent bool, locations ...fakeLocation) *fakeSite {
	s := &fakeSite{
		sel:          cfg.Selectors,
		locations:    locations,
		consentShown: consent,
		itemClicks:   map[string]int{},
	}
	s.consentBtn = newEl()
	s.consentBtn.onClick = func() {
		s.consentShown = false
		s.page.root.remove(s.sel.ConsentButton)
	}
	s.page = &fakePage{landing: s.landing}
	return s
}

func (s *fakeSite) landing() *fakeElement {
	root := newEl()
	if s.consentShown {
		root.set(s.sel.ConsentButton, s.consentBtn)
	}
	grid := newEl()
	for _, loc := range s.locations {
		loc := loc
		btn := newEl()
		btn.set(s.sel.LocationName, &fakeElement{text: "  " + loc.name + "\n"})
		btn.onClick = func() {
			s.visited = append(s.visited, loc.name)
			s.page.root = s.menu(loc)
		}
		grid.add(s.sel.LocationButton, btn)
	}
	root.set(s.sel.LocationGrid, grid)
	return root
}

func (s *fakeSite) menu(loc fakeLocation) *fakeElement {
	root := newEl()
	if loc.noMenu {
		return root
	}
	for _, sec := range loc.sections {
		root.add(s.sel.Section, s.section(sec))
	}
	return root
}

func (s *fakeSite) section(sec fakeSection) *fakeElement {
	el := newEl()
	if sec.id != "" {
		marker := newEl()
		marker.attrs["id"] = sec.id
		el.set(s.sel.SectionMarker, marker)
	}

	content := newEl()
	for _, it := range sec.items {
		content.add(s.sel.MenuItem, s.item(it))
	}
	expand := func() {
		if !sec.neverExpands {
			el.set(s.sel.ExpandedContent, content)
		}
	}

	if sec.label == "" {
		expand()
		return el
	}
	toggle := newEl()
	toggle.attrs["class"] = "expansion-toggle"
	if sec.expanded {
		toggle.attrs["class"] += " " + s.sel.ToggleActiveClass
		expand()
	}
	toggle.set(s.sel.ToggleLabel, &fakeElement{text: " " + sec.label + " "})
	toggle.onClick = expand
	el.set(s.sel.ExpansionToggle, toggle)
	return el
}

func (s *fakeSite) item(it fakeItem) *fakeElement {
	el := newEl()
	el.panicHTML = it.panics
	el.html = `<li class="menu-item">`
	if it.name != "" {
		el.html += fmt.Sprintf(`<span class="food-name"> %s`, it.name)
		if it.hidden != "" {
			el.html += fmt.Sprintf(`<span style="display:none">%s</span>`, it.hidden)
		}
		el.html += ` </span>`
		el.set(s.sel.FoodName, &fakeElement{text: " " + it.name + " "})
	}
	if it.allergens != "" {
		el.html += fmt.Sprintf(`<div class="price-and-cal"><span class="allergens">%s</span></div>`, it.allergens)
	}
	el.html += `</li>`

	el.onClick = func() {
		s.itemClicks[it.name]++
		root := s.page.root
		closeBtn := newEl()
		closeBtn.onClick = func() {
			s.closeClicks++
			if it.stuck {
				return
			}
			root.remove(s.sel.NutritionPanel)
			root.remove(s.sel.CloseButton)
		}
		root.set(s.sel.CloseButton, closeBtn)
		if !it.noPanel {
			root.set(s.sel.NutritionPanel, &fakeElement{text: "\n" + it.nutrition + "\n"})
		}
	}
	return el
}
