package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aetherengine/aether-cli/pkg/httpclient"
)

// ErrNotAuthenticated is returned when no token is configured or the
// control plane rejects the token.
var ErrNotAuthenticated = errors.New("not authenticated: run 'aether login' first")

// APIError is a non-2xx control-plane response. Body is kept verbatim.
type APIError struct {
	Op     string
	Status int
	Body   string

	cause *httpclient.ResponseError
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Op, e.cause.Error())
	}
	return fmt.Sprintf("%s: request failed with status %d: %s", e.Op, e.Status, e.Body)
}

// Is matches ErrNotAuthenticated for 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotAuthenticated && e.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the control plane
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func wrapError(op string, err error) error {
	var respErr *httpclient.ResponseError
	if errors.As(err, &respErr) {
		return &APIError{Op: op, Status: respErr.StatusCode, Body: respErr.Body, cause: respErr}
	}
	return fmt.Errorf("%s: %w", op, err)
}
