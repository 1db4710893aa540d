package autofill

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/transport"
	"github.com/frahmantamala/ewaste-management/pkg/logger"
)

type ServiceAPI interface {
	Suggest(ctx context.Context, actor *internal.User, dto SuggestDTO) (*Result, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Suggest handles POST /autocomplete
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	var dto SuggestDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	result, err := h.Service.Suggest(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Warn("Suggest: service error", "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
