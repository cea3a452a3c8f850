package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/respond"
	subUC "newsdigest/internal/usecase/subscription"
)

// SubscribeHandler adds an email to the recipient list.
type SubscribeHandler struct{ Svc *subUC.Service }

func (h SubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Email == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("email required"))
		return
	}

	added, err := h.Svc.Subscribe(r.Context(), req.Email)
	if err != nil {
		var vErr *entity.ValidationError
		if errors.As(err, &vErr) {
			respond.SafeError(w, http.StatusBadRequest, vErr)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	code := http.StatusOK
	if added {
		code = http.StatusCreated
	}
	respond.JSON(w, code, subscribeResponse{
		Email:   entity.NormalizeEmail(req.Email),
		Changed: added,
	})
}
