// Package entity defines the core domain types of the digest pipeline:
// content fragments, the composed digest, and recipient identities.
// Entities carry no infrastructure concerns; persistence and delivery
// adapters depend on this package, never the other way around.
package entity

import "time"

// DateKeyLayout is the time layout for calendar-date archive keys.
const DateKeyLayout = "2006-01-02"

// Digest is the full composed newsletter for one delivery cycle.
// Source holds the lightweight markup composed by the aggregator and
// HTML holds the rendered document. A Digest is immutable once built:
// exactly one Digest exists per cycle, keyed by its calendar date.
type Digest struct {
	CycleDate time.Time
	Source    string
	HTML      string
}

// DateKey returns the calendar-date key used for archiving, one
// snapshot per day.
func (d *Digest) DateKey() string {
	return d.CycleDate.Format(DateKeyLayout)
}

// Validate checks the Digest fields.
func (d *Digest) Validate() error {
	if d.CycleDate.IsZero() {
		return &ValidationError{Field: "cycle_date", Message: "must not be zero"}
	}
	if d.Source == "" {
		return &ValidationError{Field: "source", Message: "must not be empty"}
	}
	return nil
}
