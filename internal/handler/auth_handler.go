package handler

import (
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/service"
)

// AuthHandler serves login and signup.
type AuthHandler struct {
	authService *service.AuthService
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes registers the public auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/token", h.handleToken)
}

type signupRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.authService.Signup(r.Context(), service.SignupInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, createdMessage(domain.EntityUser, user.ID), user)
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleToken accepts the OAuth2 password form or an equivalent JSON body
// and returns the bare token response.
func (h *AuthHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeServiceError(w, r, domain.NewValidationError("body", "malformed form"))
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}

	if req.Username == "" {
		writeServiceError(w, r, domain.NewValidationError("username", "is required"))
		return
	}
	if req.Password == "" {
		writeServiceError(w, r, domain.NewValidationError("password", "is required"))
		return
	}

	resp, err := h.authService.IssueToken(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}
