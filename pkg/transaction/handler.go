package transaction

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/moneta-app/moneta/internal/rest"
	"github.com/moneta-app/moneta/pkg/user"
	"github.com/shopspring/decimal"
)

type UserRefDTO struct {
	Id    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BudgetRefDTO struct {
	Id     int             `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status"`
}

type TransactionDTO struct {
	Id          int             `json:"id"`
	Uid         string          `json:"uid"`
	UserId      int             `json:"userId"`
	BudgetId    *int            `json:"budgetId,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	User        *UserRefDTO     `json:"user,omitempty"`
	Budget      *BudgetRefDTO   `json:"budget,omitempty"`
}

type TransactionResultDTO struct {
	Success bool           `json:"success"`
	Data    TransactionDTO `json:"data"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetTransaction godoc
// @Summary Get a transaction by id
// @Tags Transaction
// @Produce json
// @Param id path int true "Transaction id"
// @Success 200 {object} TransactionResultDTO
// @Failure 401 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/transactions/{id} [get]
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "transaction id must be an integer")
		return
	}

	t, err := h.service.GetById(r.Context(), id)
	if err != nil {
		writeTransactionError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, TransactionResultDTO{Success: true, Data: toDTO(t)})
}

// ListTransactions godoc
// @Summary List transactions of the current user
// @Tags Transaction
// @Produce json
// @Param userId query int false "User id (admin only)"
// @Success 200 {array} TransactionDTO
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/transactions [get]
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userId := 0
	if raw := r.URL.Query().Get("userId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "userId must be an integer")
			return
		}
		userId = parsed
	}

	transactions, err := h.service.List(r.Context(), userId)
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	dtos := make([]TransactionDTO, 0, len(transactions))
	for _, t := range transactions {
		dtos = append(dtos, toDTO(t))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func writeTransactionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, ErrAccessDenied):
		rest.WriteError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, ErrTransactionNotFound):
		rest.WriteError(w, http.StatusNotFound, "transaction not found")
	default:
		rest.WriteInternalError(w, err)
	}
}

func toDTO(t Transaction) TransactionDTO {
	dto := TransactionDTO{
		Id:          t.Id,
		Uid:         t.Uid,
		UserId:      t.UserId,
		BudgetId:    t.BudgetId,
		Amount:      t.Amount,
		Kind:        t.Kind,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
	if t.User != nil {
		dto.User = &UserRefDTO{Id: t.User.Id, Name: t.User.Name, Email: t.User.Email}
	}
	if t.Budget != nil {
		dto.Budget = &BudgetRefDTO{
			Id:     t.Budget.Id,
			Name:   t.Budget.Name,
			Amount: t.Budget.Amount,
			Status: t.Budget.Status,
		}
	}
	return dto
}
