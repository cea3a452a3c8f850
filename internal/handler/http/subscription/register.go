package subscription

import (
	"net/http"

	subUC "newsdigest/internal/usecase/subscription"
)

// Register wires the subscription routes onto the mux. Membership
// changes are open endpoints; listing subscribers stays read-only.
func Register(mux *http.ServeMux, svc *subUC.Service) {
	mux.Handle("POST /subscribe", SubscribeHandler{svc})
	mux.Handle("POST /unsubscribe", UnsubscribeHandler{svc})
	mux.Handle("GET /subscribers", ListHandler{svc})
}
