package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prn-tf/storefront/internal/auth"
	"github.com/prn-tf/storefront/internal/domain"
)

// defaultMaxBodyBytes bounds request bodies when the router is not given a limit.
const defaultMaxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst. Unknown fields are ignored so that
// server-managed fields in a payload are dropped rather than rejected.
// The body limit is applied by limitBody.
func decodeJSON(_ http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return domain.NewValidationError("body", "must not be empty")
		case errors.As(err, &tooLarge):
			return domain.NewValidationError("body", "is too large")
		default:
			return domain.NewValidationError("body", "malformed JSON")
		}
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter. A missing value is 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return v, nil
}

// pageParams reads the page and limit query parameters.
func pageParams(r *http.Request) (page, limit int, err error) {
	if page, err = queryInt(r, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// principal returns the authenticated user stored by the auth middleware.
func principal(r *http.Request) (*domain.User, error) {
	return auth.RequirePrincipal(r.Context())
}
