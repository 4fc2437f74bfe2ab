package budget

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

type BudgetDTO struct {
	Id              int             `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	Status          Status          `json:"status"`
	CreatedBy       int             `json:"createdBy"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
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

// CreateBudget godoc
// @Summary Create a new draft budget
// @Tags Budget
// @Accept json
// @Produce json
// @Param budget body BudgetDTO true "Budget"
// @Success 201 {object} BudgetDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/budgets [post]
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new budget")

	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "invalid request body format")
		return
	}
	if dto.Name == "" {
		rest.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.service.Create(r.Context(), Budget{
		Name:        dto.Name,
		Description: dto.Description,
		Amount:      dto.Amount,
	})
	if err != nil {
		writeBudgetError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// GetBudget godoc
// @Summary Get a budget by id
// @Tags Budget
// @Produce json
// @Param id path int true "Budget id"
// @Success 200 {object} BudgetDTO
// @Failure 403 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/budgets/{id} [get]
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetId(w, r)
	if !ok {
		return
	}
	budget, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeBudgetError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(budget))
}

// ListBudgets godoc
// @Summary List budgets of the current user (all budgets for admins)
// @Tags Budget
// @Produce json
// @Success 200 {array} BudgetDTO
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/budgets [get]
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.service.List(r.Context())
	if err != nil {
		writeBudgetError(w, err)
		return
	}
	dtos := make([]BudgetDTO, 0, len(budgets))
	for _, b := range budgets {
		dtos = append(dtos, toDTO(b))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// UpdateBudget godoc
// @Summary Update a draft or pending budget
// @Tags Budget
// @Accept json
// @Produce json
// @Param id path int true "Budget id"
// @Param budget body BudgetDTO true "Budget"
// @Success 200 {object} BudgetDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/budgets/{id} [put]
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetId(w, r)
	if !ok {
		return
	}

	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "invalid request body format")
		return
	}
	if dto.Id != 0 && dto.Id != id {
		rest.WriteError(w, http.StatusBadRequest, "budget id in body does not match URL")
		return
	}

	updated, err := h.service.Update(r.Context(), Budget{
		Id:          id,
		Name:        dto.Name,
		Description: dto.Description,
		Amount:      dto.Amount,
	})
	if err != nil {
		writeBudgetError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// SubmitBudget godoc
// @Summary Submit a draft budget for approval
// @Tags Budget
// @Produce json
// @Param id path int true "Budget id"
// @Success 200 {object} BudgetDTO
// @Failure 403 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/budgets/{id}/submit [post]
func (h *Handler) SubmitBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetId(w, r)
	if !ok {
		return
	}
	submitted, err := h.service.Submit(r.Context(), id)
	if err != nil {
		writeBudgetError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(submitted))
}

// ApproveBudget godoc
// @Summary Approve a pending budget and allocate funds from the pool
// @Tags Budget
// @Accept json
// @Produce json
// @Param id path int true "Budget id"
// @Param decision body DecisionDTO false "Decision note"
// @Success 200 {object} BudgetDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/budgets/{id}/approve [post]
func (h *Handler) ApproveBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetId(w, r)
	if !ok {
		return
	}
	note := decisionNote(r)
	approved, err := h.service.Approve(r.Context(), id, note)
	if err != nil {
		writeBudgetError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(approved))
}

// RejectBudget godoc
// @Summary Reject a pending budget
// @Tags Budget
// @Accept json
// @Produce json
// @Param id path int true "Budget id"
// @Param decision body DecisionDTO false "Decision note"
// @Success 200 {object} BudgetDTO
// @Failure 403 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/budgets/{id}/reject [post]
func (h *Handler) RejectBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetId(w, r)
	if !ok {
		return
	}
	note := decisionNote(r)
	rejected, err := h.service.Reject(r.Context(), id, note)
	if err != nil {
		writeBudgetError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(rejected))
}

func budgetId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "budget id must be an integer")
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

func writeBudgetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, user.ErrAdminRequired):
		rest.WriteError(w, http.StatusForbidden, "admin role required")
	case errors.Is(err, ErrAccessDenied):
		rest.WriteError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, ErrNotEditable):
		rest.WriteError(w, http.StatusForbidden, "budget is not editable")
	case errors.Is(err, ErrNotPending):
		rest.WriteError(w, http.StatusConflict, "budget is not pending")
	case errors.Is(err, ErrBudgetNotFound):
		rest.WriteError(w, http.StatusNotFound, "budget not found")
	case errors.Is(err, ErrInvalidAmount):
		rest.WriteError(w, http.StatusBadRequest, "amount must be a positive whole number")
	case errors.Is(err, fundpool.ErrInsufficientFunds):
		rest.WriteError(w, http.StatusBadRequest, "insufficient funds in pool")
	default:
		rest.WriteInternalError(w, err)
	}
}

func toDTO(b Budget) BudgetDTO {
	return BudgetDTO{
		Id:              b.Id,
		Name:            b.Name,
		Description:     b.Description,
		Amount:          b.Amount,
		AllocatedAmount: b.AllocatedAmount,
		Status:          b.Status,
		CreatedBy:       b.CreatedBy,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
