package audit

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/moneta-app/moneta/internal/rest"
	"github.com/moneta-app/moneta/pkg/user"
)

type EntryDTO struct {
	Id        int            `json:"id"`
	UserId    int            `json:"userId"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityId  int            `json:"entityId"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListEntries godoc
// @Summary List recent audit log entries
// @Tags Audit
// @Produce json
// @Param limit query int false "Maximum number of entries"
// @Success 200 {array} EntryDTO
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/audit [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	entries, err := h.service.List(r.Context(), limit)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNoUser):
			rest.WriteError(w, http.StatusUnauthorized, "authentication required")
		case errors.Is(err, user.ErrAdminRequired):
			rest.WriteError(w, http.StatusForbidden, "admin role required")
		default:
			rest.WriteInternalError(w, err)
		}
		return
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, EntryDTO(entry))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}
