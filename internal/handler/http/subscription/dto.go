// Package subscription exposes the recipient list over HTTP.
package subscription

// subscribeRequest is the body of subscribe and unsubscribe calls.
type subscribeRequest struct {
	Email string `json:"email"`
}

// subscribeResponse reports the outcome of a membership change.
// Changed is false when the call was a no-op.
type subscribeResponse struct {
	Email   string `json:"email"`
	Changed bool   `json:"changed"`
}

// listResponse is the body of the subscriber listing.
type listResponse struct {
	Recipients []string `json:"recipients"`
	Count      int      `json:"count"`
}
