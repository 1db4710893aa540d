package batch

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/transport"
	"github.com/frahmantamala/ewaste-management/pkg/logger"
)

type ServiceAPI interface {
	CreateBatch(ctx context.Context, actor *internal.User, dto CreateBatchDTO) (*Batch, error)
	GetBatch(ctx context.Context, actor *internal.User, id int64) (*Batch, error)
	ListBatches(ctx context.Context, actor *internal.User, query ListQueryDTO) (*BatchPage, error)
	AddItems(ctx context.Context, actor *internal.User, id int64, dto AddItemsDTO) (*Batch, error)
	UpdateStatus(ctx context.Context, actor *internal.User, id int64, dto UpdateStatusDTO) (*Batch, error)
	SchedulePickup(ctx context.Context, actor *internal.User, id int64, dto ScheduleDTO) (*Batch, error)
	DeleteBatch(ctx context.Context, actor *internal.User, id int64) error
	GetStats(ctx context.Context, actor *internal.User) (*Stats, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	var dto CreateBatchDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	b, err := h.Service.CreateBatch(r.Context(), user, dto)
	if err != nil {
		h.Logger.Warn("CreateBatch: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Batch created successfully",
		"batch":   b,
	})
}

func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := h.RequireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	b, err := h.Service.GetBatch(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	user, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := ListQueryDTO{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	var convErr error
	if raw := q.Get("page"); raw != "" {
		query.Page, convErr = strconv.Atoi(raw)
	}
	if raw := q.Get("limit"); raw != "" && convErr == nil {
		query.Limit, convErr = strconv.Atoi(raw)
	}
	if convErr != nil {
		h.HandleServiceError(w, internal.NewValidationFieldError("page", "page and limit must be integers", internal.ErrCodeInvalidPage))
		return
	}

	page, err := h.Service.ListBatches(r.Context(), user, query)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	user, ok := h.RequireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	var dto AddItemsDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	b, err := h.Service.AddItems(r.Context(), user, id, dto)
	if err != nil {
		h.Logger.Warn("AddItems: service error", "error", err, "batch_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Items added successfully",
		"batch":   b,
	})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := h.RequireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateStatusDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	b, err := h.Service.UpdateStatus(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Batch status updated successfully",
		"batch":   b,
	})
}

func (h *Handler) SchedulePickup(w http.ResponseWriter, r *http.Request) {
	user, ok := h.RequireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	var dto ScheduleDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	b, err := h.Service.SchedulePickup(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Pickup scheduled successfully",
		"batch":   b,
	})
}

func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := h.RequireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteBatch(r.Context(), user, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Batch deleted successfully"})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.GetStats(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}
