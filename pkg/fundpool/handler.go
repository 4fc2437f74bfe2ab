package fundpool

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/moneta-app/moneta/internal/rest"
	"github.com/moneta-app/moneta/pkg/user"
	log "github.com/sirupsen/logrus"
)

type UpdaterDTO struct {
	Id    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type FundPoolDTO struct {
	Balance   int64       `json:"balance"`
	UpdatedAt *time.Time  `json:"updatedAt"`
	UpdatedBy *UpdaterDTO `json:"updatedBy"`
}

type ApplyDeltaDTO struct {
	Delta *int64 `json:"delta"`
	Note  string `json:"note,omitempty"`
}

type ApplyDeltaResultDTO struct {
	Success bool  `json:"success"`
	Balance int64 `json:"balance"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetFundPool godoc
// @Summary Get the current fund pool balance
// @Tags FundPool
// @Produce json
// @Success 200 {object} FundPoolDTO
// @Router /api/fund-pool [get]
func (h *Handler) GetFundPool(w http.ResponseWriter, r *http.Request) {
	pool, err := h.service.GetBalance(r.Context())
	if err != nil {
		rest.WriteInternalError(w, err)
		return
	}

	dto := FundPoolDTO{Balance: pool.Balance, UpdatedAt: pool.UpdatedAt}
	if pool.UpdatedBy != nil {
		dto.UpdatedBy = &UpdaterDTO{
			Id:    pool.UpdatedBy.Id,
			Name:  pool.UpdatedBy.Name,
			Email: pool.UpdatedBy.Email,
		}
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

// ApplyDelta godoc
// @Summary Adjust the fund pool balance
// @Tags FundPool
// @Accept json
// @Produce json
// @Param body body ApplyDeltaDTO true "Delta to apply"
// @Success 200 {object} ApplyDeltaResultDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 401 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/fund-pool [post]
func (h *Handler) ApplyDelta(w http.ResponseWriter, r *http.Request) {
	log.Debug("Applying fund pool delta")

	var dto ApplyDeltaDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "delta must be an integer")
		return
	}
	if dto.Delta == nil {
		rest.WriteError(w, http.StatusBadRequest, "delta is required")
		return
	}

	balance, err := h.service.ApplyDelta(r.Context(), *dto.Delta, dto.Note)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNoUser):
			rest.WriteError(w, http.StatusUnauthorized, "authentication required")
		case errors.Is(err, user.ErrAdminRequired):
			rest.WriteError(w, http.StatusForbidden, "admin role required")
		case errors.Is(err, ErrInsufficientFunds):
			rest.WriteError(w, http.StatusBadRequest, "insufficient funds in pool")
		default:
			rest.WriteInternalError(w, err)
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, ApplyDeltaResultDTO{Success: true, Balance: balance})
}
