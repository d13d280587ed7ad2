package npbapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	// ErrNotFound is returned for a 404 from the API.
	ErrNotFound = errors.New("npb api: not found")
	// ErrDecode wraps responses whose body does not match the expected shape.
	ErrDecode = errors.New("npb api: unexpected response body")
)

// APIError is a non-success response other than 404.
type APIError struct {
	Status int
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("npb api %s: status %d %s", e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("npb api %s: status %d: %s", e.Path, e.Status, e.Body)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
