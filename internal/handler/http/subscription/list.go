package subscription

import (
	"net/http"

	"newsdigest/internal/handler/http/respond"
	subUC "newsdigest/internal/usecase/subscription"
)

// ListHandler returns the current subscriber list in subscription
// order.
type ListHandler struct{ Svc *subUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if recipients == nil {
		recipients = []string{}
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Recipients: recipients,
		Count:      len(recipients),
	})
}
