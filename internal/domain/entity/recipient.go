package entity

import (
	"net/mail"
	"strings"
)

// Recipient is an identity eligible to receive a digest. Membership is
// set semantics: a recipient is either present or absent, there is no
// paused state. The recipient store owns all mutations.
type Recipient struct {
	Email string
}

// NormalizeEmail lowercases and trims an email identity so that
// membership checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks that the recipient identity is an email-like string.
func (r *Recipient) Validate() error {
	if r.Email == "" {
		return &ValidationError{Field: "email", Message: "must not be empty"}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	return nil
}
