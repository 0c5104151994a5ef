package scraper

import (
	"fmt"
	"strings"

	"mspro-labs/menu-buddy/internal/browser"
)

const unknownSection = "Unknown Section"

// extractSection expands one menu station if needed and records its items.
// A section whose content never expands is skipped, not failed.
func (c *Crawler) extractSection(section browser.Element, location string) error {
	sel := c.cfg.Selectors

	name, err := c.sectionID(section)
	if err != nil {
		return err
	}

	// Collapsed stations only carry their real label on the toggle.
	toggle, ok, err := section.Has(sel.ExpansionToggle)
	if err != nil {
		return fmt.Errorf("finding expansion toggle: %w", err)
	}
	if ok {
		active, err := hasClass(toggle, sel.ToggleActiveClass)
		if err != nil {
			return fmt.Errorf("reading toggle state: %w", err)
		}
		if !active {
			if label, err := toggleLabel(toggle, sel.ToggleLabel); err != nil {
				return fmt.Errorf("reading toggle label: %w", err)
			} else if label != "" {
				name = label
			}
			if err := toggle.Click(); err != nil {
				return fmt.Errorf("expanding section %s: %w", name, err)
			}
		}
	}

	found, err := waitFor(section, sel.ExpandedContent, c.cfg.Timeouts.ExpandedContent)
	if err != nil {
		return fmt.Errorf("waiting for section %s: %w", name, err)
	}
	if !found {
		logger.Printf("No items found in section %s at %s; continuing...", name, location)
		c.stats.SectionsSkipped++
		return nil
	}
	content, ok, err := section.Has(sel.ExpandedContent)
	if err != nil {
		return fmt.Errorf("reading section %s: %w", name, err)
	}
	if !ok {
		logger.Printf("Section %s at %s collapsed again; continuing...", name, location)
		c.stats.SectionsSkipped++
		return nil
	}

	items, err := content.Elements(sel.MenuItem)
	if err != nil {
		return fmt.Errorf("listing items of section %s: %w", name, err)
	}
	for _, item := range items {
		c.processItem(item, location, name)
	}
	return nil
}

// sectionID prefers the id of the nested marker element.
func (c *Crawler) sectionID(section browser.Element) (string, error) {
	marker, ok, err := section.Has(c.cfg.Selectors.SectionMarker)
	if err != nil {
		return "", fmt.Errorf("finding section marker: %w", err)
	}
	if !ok {
		return unknownSection, nil
	}
	id, err := marker.Attribute("id")
	if err != nil {
		return "", fmt.Errorf("reading section id: %w", err)
	}
	if id == nil || *id == "" {
		return unknownSection, nil
	}
	return *id, nil
}

func hasClass(el browser.Element, class string) (bool, error) {
	attr, err := el.Attribute("class")
	if err != nil || attr == nil {
		return false, err
	}
	for _, c := range strings.Fields(*attr) {
		if c == class {
			return true, nil
		}
	}
	return false, nil
}

func toggleLabel(toggle browser.Element, selector string) (string, error) {
	el, ok, err := toggle.Has(selector)
	if err != nil || !ok {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
