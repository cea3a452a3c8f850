package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/respond"
	subUC "newsdigest/internal/usecase/subscription"
)

// UnsubscribeHandler removes an email from the recipient list.
// Removing an address that was never subscribed succeeds with
// Changed=false.
type UnsubscribeHandler struct{ Svc *subUC.Service }

func (h UnsubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Email == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("email required"))
		return
	}

	removed, err := h.Svc.Unsubscribe(r.Context(), req.Email)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, subscribeResponse{
		Email:   entity.NormalizeEmail(req.Email),
		Changed: removed,
	})
}
