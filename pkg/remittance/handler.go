package remittance

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/moneta-app/moneta/internal/rest"
	"github.com/moneta-app/moneta/pkg/fundpool"
	"github.com/moneta-app/moneta/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type RemittanceDTO struct {
	Id        int             `json:"id"`
	Uid       string          `json:"uid"`
	UserId    int             `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    Status          `json:"status"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CreateRemittanceDTO struct {
	Amount *decimal.Decimal `json:"amount"`
	Note   string           `json:"note,omitempty"`
}

type DecisionDTO struct {
	Note string `json:"note,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateRemittance godoc
// @Summary Request a remittance payout
// @Tags Remittance
// @Accept json
// @Produce json
// @Param remittance body CreateRemittanceDTO true "Remittance request"
// @Success 201 {object} RemittanceDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/remittances [post]
func (h *Handler) CreateRemittance(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new remittance")

	var dto CreateRemittanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "invalid request body format")
		return
	}
	if dto.Amount == nil {
		rest.WriteError(w, http.StatusBadRequest, "amount is required")
		return
	}

	created, err := h.service.Create(r.Context(), *dto.Amount, dto.Note)
	if err != nil {
		writeRemittanceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toRemittanceDTO(created))
}

// ListRemittances godoc
// @Summary List remittances of the current user (admins may filter all by status)
// @Tags Remittance
// @Produce json
// @Param status query string false "Status filter (admin only)"
// @Success 200 {array} RemittanceDTO
// @Failure 401 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/remittances [get]
func (h *Handler) ListRemittances(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	remittances, err := h.service.List(r.Context(), status)
	if err != nil {
		writeRemittanceError(w, err)
		return
	}
	dtos := make([]RemittanceDTO, 0, len(remittances))
	for _, remittance := range remittances {
		dtos = append(dtos, toRemittanceDTO(remittance))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// ApproveRemittance godoc
// @Summary Approve a pending remittance and pay it out of the pool
// @Tags Remittance
// @Accept json
// @Produce json
// @Param id path int true "Remittance id"
// @Param decision body DecisionDTO false "Decision note"
// @Success 200 {object} RemittanceDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/remittances/{id}/approve [post]
func (h *Handler) ApproveRemittance(w http.ResponseWriter, r *http.Request) {
	id, ok := remittanceId(w, r)
	if !ok {
		return
	}
	note := decisionNote(r)
	approved, err := h.service.Approve(r.Context(), id, note)
	if err != nil {
		writeRemittanceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toRemittanceDTO(approved))
}

// RejectRemittance godoc
// @Summary Reject a pending remittance
// @Tags Remittance
// @Accept json
// @Produce json
// @Param id path int true "Remittance id"
// @Param decision body DecisionDTO false "Decision note"
// @Success 200 {object} RemittanceDTO
// @Failure 403 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/remittances/{id}/reject [post]
func (h *Handler) RejectRemittance(w http.ResponseWriter, r *http.Request) {
	id, ok := remittanceId(w, r)
	if !ok {
		return
	}
	note := decisionNote(r)
	rejected, err := h.service.Reject(r.Context(), id, note)
	if err != nil {
		writeRemittanceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toRemittanceDTO(rejected))
}

func remittanceId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "remittance id must be an integer")
		return 0, false
	}
	return id, true
}

func decisionNote(r *http.Request) string {
	var dto DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		return ""
	}
	return dto.Note
}

func writeRemittanceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, user.ErrAdminRequired):
		rest.WriteError(w, http.StatusForbidden, "admin role required")
	case errors.Is(err, ErrNotPending):
		rest.WriteError(w, http.StatusConflict, "remittance is not pending")
	case errors.Is(err, ErrRemittanceNotFound):
		rest.WriteError(w, http.StatusNotFound, "remittance not found")
	case errors.Is(err, ErrInvalidAmount):
		rest.WriteError(w, http.StatusBadRequest, "amount must be a positive whole number")
	case errors.Is(err, fundpool.ErrInsufficientFunds):
		rest.WriteError(w, http.StatusBadRequest, "insufficient funds in pool")
	default:
		rest.WriteInternalError(w, err)
	}
}

func toRemittanceDTO(r Remittance) RemittanceDTO {
	return RemittanceDTO{
		Id:        r.Id,
		Uid:       r.Uid,
		UserId:    r.UserId,
		Amount:    r.Amount,
		Status:    r.Status,
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
