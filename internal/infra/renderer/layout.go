// Package renderer assembles ordered content fragments into the final
// digest document: a Markdown source and an HTML rendering of it.
package renderer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"newsdigest/pkg/config"
)

// SectionLayout maps a fragment section to its presentation in the
// digest.
type SectionLayout struct {
	// Name is the fragment section this layout entry applies to.
	Name string `yaml:"name"`

	// Heading is the Markdown heading shown above the section body.
	// Empty means the body is emitted without a heading.
	Heading string `yaml:"heading"`
}

// Layout describes the digest document: title, email subject and the
// fixed section order. Fragment arrival order never affects the
// document; only the layout order does.
type Layout struct {
	// Title is the document heading. The cycle date is appended.
	Title string `yaml:"title"`

	// Subject is the email subject line. The cycle date is appended.
	Subject string `yaml:"subject"`

	// Sections is the fixed section order of the digest.
	Sections []SectionLayout `yaml:"sections"`
}

// DefaultLayout returns the built-in greeting/news/body layout.
func DefaultLayout() Layout {
	return Layout{
		Title:   "Daily Digest",
		Subject: "Your digest for",
		Sections: []SectionLayout{
			{Name: "greeting", Heading: ""},
			{Name: "news", Heading: "Top Stories"},
			{Name: "body", Heading: "Editor's Note"},
		},
	}
}

// Validate checks the layout for usability.
func (l Layout) Validate() error {
	if l.Title == "" {
		return fmt.Errorf("layout title cannot be empty")
	}
	if len(l.Sections) == 0 {
		return fmt.Errorf("layout must declare at least one section")
	}
	seen := make(map[string]bool, len(l.Sections))
	for _, s := range l.Sections {
		if s.Name == "" {
			return fmt.Errorf("layout section name cannot be empty")
		}
		if seen[s.Name] {
			return fmt.Errorf("layout section %q declared twice", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// SectionOrder returns the section names in layout order.
func (l Layout) SectionOrder() []string {
	order := make([]string, 0, len(l.Sections))
	for _, s := range l.Sections {
		order = append(order, s.Name)
	}
	return order
}

// LoadLayout reads the layout from the YAML file named by
// DIGEST_LAYOUT_PATH, falling back to DefaultLayout when the variable
// is unset.
func LoadLayout() (Layout, error) {
	path := config.GetEnvString("DIGEST_LAYOUT_PATH", "")
	if path == "" {
		return DefaultLayout(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("LoadLayout: read %s: %w", path, err)
	}

	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("LoadLayout: parse %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("LoadLayout: %s: %w", path, err)
	}

	return layout, nil
}
