package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/service"
)

// AccountHandler serves the authenticated user's own account.
type AccountHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(userService *service.UserService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		userService: userService,
		logger:      logger.With().Str("handler", "account").Logger(),
	}
}

// RegisterRoutes registers the account routes. They must be behind the auth middleware.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/account/me", h.handleGet)
	r.Put("/account/me", h.handleUpdate)
	r.Delete("/account/me", h.handleDelete)
}

type profileRequest struct {
	FullName *string `json:"full_name"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (req profileRequest) toInput() service.ProfileUpdate {
	return service.ProfileUpdate{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
}

func (h *AccountHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, err := principal(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, detailsMessage(domain.EntityUser, user.ID), user)
}

func (h *AccountHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, err := principal(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, updatedMessage(domain.EntityUser, updated.ID), updated)
}

func (h *AccountHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, err := principal(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.userService.Delete(r.Context(), user.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.logger.Info().Int64("user_id", user.ID).Msg("account removed")
	writeData(w, http.StatusOK, deletedMessage(domain.EntityUser, user.ID), user)
}
