package auth

import (
	"net/http"
	"strings"
)

// ParseBearer extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingBearer
	}

	if len(header) < len(BearerPrefix) || !strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
		return "", ErrMalformedAuthorizationHeader
	}

	token := strings.TrimSpace(header[len(BearerPrefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMalformedAuthorizationHeader
	}

	return token, nil
}

// BearerFromRequest extracts the bearer token from a request.
func BearerFromRequest(r *http.Request) (string, error) {
	return ParseBearer(r.Header.Get(AuthorizationHeader))
}
