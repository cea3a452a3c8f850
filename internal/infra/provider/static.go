package provider

import (
	"context"

	"newsdigest/internal/domain/entity"
	"newsdigest/pkg/config"
)

// Static fills a section with fixed text. The greeting section uses it
// so every digest opens the same way. A Static provider cannot fail.
type Static struct {
	section string
	body    string
}

// NewStatic creates a provider that always returns the given body for
// the given section.
func NewStatic(section, body string) *Static {
	return &Static{section: section, body: body}
}

// NewGreeting creates the standard greeting provider. The text is
// overridable via GREETING_TEXT.
func NewGreeting() *Static {
	body := config.GetEnvString("GREETING_TEXT",
		"Good morning! Here is your digest for today.")
	return NewStatic(SectionGreeting, body)
}

// Section implements Provider.
func (s *Static) Section() string {
	return s.section
}

// Fetch implements Provider. It never returns an error.
func (s *Static) Fetch(_ context.Context) (entity.Fragment, error) {
	return entity.Fragment{Section: s.section, Body: s.body}, nil
}
