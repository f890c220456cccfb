package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/prn-tf/storefront/internal/auth"
	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/storage"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeNotFound           = "not_found"
	CodeValidation         = "validation_error"
	CodeAlreadyExists      = "already_exists"
	CodeUnavailable        = "service_unavailable"
	CodeInternal           = "internal_error"
)

// writeServiceError maps a service error to its HTTP status. Internal causes
// are logged and never sent to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		w.Header().Set(auth.WWWAuthenticateHeader, auth.TokenTypeBearer)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Incorrect username or password", Code: CodeInvalidCredentials})

	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: CodeNotFound})

	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: CodeValidation})

	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, ErrorResponse{Message: err.Error(), Code: CodeAlreadyExists})

	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken):
		authErr := auth.NewAuthError(err)
		if authErr.HTTPStatus == http.StatusUnauthorized {
			w.Header().Set(auth.WWWAuthenticateHeader, auth.TokenTypeBearer)
		}
		writeJSON(w, authErr.HTTPStatus, ErrorResponse{Message: authErr.Message, Code: string(authErr.Code)})

	case errors.Is(err, storage.ErrDisabled):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Message: "Image uploads are not configured", Code: CodeUnavailable})

	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "Internal server error", Code: CodeInternal})
	}
}
