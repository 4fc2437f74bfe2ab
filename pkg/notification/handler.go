package notification

import (
	"errors"
	"net/http"
	"time"

	"github.com/moneta-app/moneta/internal/rest"
	"github.com/moneta-app/moneta/pkg/user"
)

type NotificationDTO struct {
	Id        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type MarkAllReadResultDTO struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListNotifications godoc
// @Summary List notifications of the current user
// @Tags Notification
// @Produce json
// @Success 200 {array} NotificationDTO
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/notifications [get]
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.List(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			rest.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		rest.WriteInternalError(w, err)
		return
	}

	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, NotificationDTO{
			Id:        n.Id,
			Title:     n.Title,
			Body:      n.Body,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// MarkAllRead godoc
// @Summary Mark all notifications of the current user as read
// @Tags Notification
// @Produce json
// @Success 200 {object} MarkAllReadResultDTO
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/notifications/mark-all-read [patch]
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.MarkAllRead(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			rest.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		rest.WriteInternalError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, MarkAllReadResultDTO{
		Message: "all notifications marked as read",
		Updated: updated,
	})
}
