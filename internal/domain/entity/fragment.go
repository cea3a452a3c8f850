package entity

import "fmt"

// Fragment is one named section of digest content produced by a single
// content provider. Body is lightweight markup (Markdown).
type Fragment struct {
	Section  string
	Body     string
	Fallback bool // true when the provider failed and placeholder text was substituted
}

// FallbackBody is the placeholder text substituted when a provider
// cannot produce content for a cycle.
const FallbackBody = "_No content available this cycle._"

// NewFallbackFragment returns the placeholder fragment for a section
// whose provider failed. The digest must always be completable, so a
// provider outage yields this instead of an error.
func NewFallbackFragment(section string) Fragment {
	return Fragment{
		Section:  section,
		Body:     FallbackBody,
		Fallback: true,
	}
}

// Validate checks the Fragment fields.
func (f *Fragment) Validate() error {
	if f.Section == "" {
		return &ValidationError{Field: "section", Message: "must not be empty"}
	}
	if f.Body == "" {
		return &ValidationError{Field: "body", Message: "must not be empty"}
	}
	return nil
}

func (f Fragment) String() string {
	return fmt.Sprintf("fragment[%s] (%d bytes)", f.Section, len(f.Body))
}
