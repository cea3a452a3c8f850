package mailer

import (
	"errors"
	"fmt"
)

// TransientError is a delivery failure worth retrying: connection
// drops, timeouts, 4xx SMTP replies.
type TransientError struct {
	Message string
	Err     error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError is a delivery failure that retrying cannot fix: bad
// credentials, rejected sender, 5xx SMTP replies for this message.
type PermanentError struct {
	Message string
	Err     error
}

func (e *PermanentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a delivery error is worth another
// attempt. Unclassified errors are treated as transient so a flaky
// relay does not silently drop recipients.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return false
	}

	return true
}
