package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/corey888773/notification-scheduler/internal/api/middleware"
	"github.com/corey888773/notification-scheduler/internal/dispatch"
	"github.com/corey888773/notification-scheduler/internal/domain"
)

// NotificationHandler is the thin admission-API adapter over the
// dispatch service; no domain logic lives here.
type NotificationHandler struct {
	svc    *dispatch.Service
	logger *zap.Logger
}

func NewNotificationHandler(svc *dispatch.Service, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/notifications
//
// @Summary  Create a notification
// @Tags     notifications
// @Accept   json
// @Produce  json
// @Param    body  body      domain.CreateRequest  true  "Notification payload"
// @Success  201   {object}  map[string]string
// @Failure  400   {object}  map[string]string
// @Failure  500   {object}  map[string]string
// @Router   /api/v1/notifications [post]
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create notification failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// List handles GET /api/v1/notifications
//
// @Summary  List all notifications
// @Tags     notifications
// @Produce  json
// @Success  200  {array}  domain.Notification
// @Router   /api/v1/notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list notifications failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	respondJSON(w, http.StatusOK, notifications)
}

// Cancel handles DELETE /api/v1/notifications/{id}
//
// @Summary  Cancel a pending notification
// @Tags     notifications
// @Param    id   path  string  true  "Notification id"
// @Success  200
// @Failure  500  {object}  map[string]string
// @Router   /api/v1/notifications/{id} [delete]
func (h *NotificationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Cancel(r.Context(), id); err != nil {
		h.logger.Warn("cancel notification failed",
			zap.String("id", id),
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}
