package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fantasy/internal/notification"
	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/platform/httputil"
	"fantasy/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context, userID id.UserID, unreadOnly bool) ([]notification.Notification, error)
	MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the inbox routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.handleList)
	r.Post("/notifications/{id}/read", h.handleMarkRead)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidArgument, "unread must be a boolean"))
			return
		}
		unreadOnly = v
	}

	items, err := h.service.List(ctx, requestcontext.UserID(ctx), unreadOnly)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list notifications", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"notifications": items,
		"count":         len(items),
	})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.MarkRead(ctx, requestcontext.UserID(ctx), notificationID); err != nil {
		h.logger.WarnContext(ctx, "failed to mark notification read", "error", err, "notification_id", notificationID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"id": notificationID, "read": true})
}
