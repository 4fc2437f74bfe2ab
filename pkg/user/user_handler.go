package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/moneta-app/moneta/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id    int    `json:"id"`
	Uid   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{userService: userService}
}

// CurrentUser godoc
// @Summary Get the current authenticated user
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/user/current [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	current, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			rest.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		rest.WriteInternalError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(current))
}

// CreateUser godoc
// @Summary Register a new user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating user")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "invalid request body format")
		return
	}
	if dto.Name == "" {
		rest.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if dto.Email == "" {
		rest.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	created, err := h.userService.CreateUser(r.Context(), User{
		Name:  dto.Name,
		Email: dto.Email,
		Role:  dto.Role,
	})
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// ListUsers godoc
// @Summary List all registered users
// @Tags User
// @Produce json
// @Success 200 {array} UserDTO
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/user [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toDTO(u))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func writeAuthzError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, ErrAdminRequired):
		rest.WriteError(w, http.StatusForbidden, "admin role required")
	default:
		rest.WriteInternalError(w, err)
	}
}

func toDTO(u User) UserDTO {
	return UserDTO{
		Id:    u.Id,
		Uid:   u.Uid,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
