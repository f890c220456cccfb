package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/service"
)

// UserHandler serves administrative user management.
type UserHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger.With().Str("handler", "user").Logger(),
	}
}

// RegisterRoutes registers the user routes. They must be behind the admin check.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Post("/users", h.handleCreate)
	r.Get("/users/{id}", h.handleGet)
	r.Put("/users/{id}", h.handleUpdate)
	r.Delete("/users/{id}", h.handleDelete)
}

type createUserRequest struct {
	FullName string      `json:"full_name"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	IsActive *bool       `json:"is_active"`
}

type updateUserRequest struct {
	profileRequest
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out, err := h.userService.List(r.Context(), service.ListUsersInput{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
		Role:   domain.Role(r.URL.Query().Get("role")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeList(w, pageMessage(out.Page.Page, out.Page.Limit, "users"), out.Total, out.Items)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, detailsMessage(domain.EntityUser, id), user)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userService.Create(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, createdMessage(domain.EntityUser, user.ID), user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userService.Update(r.Context(), id, service.UpdateUserInput{
		ProfileUpdate: req.toInput(),
		Role:          req.Role,
		IsActive:      req.IsActive,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, updatedMessage(domain.EntityUser, id), user)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.userService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, deletedMessage(domain.EntityUser, id), user)
}
