package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 15 * time.Second

var (
	// ErrNotFound is returned when the API has no such resource.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and unexpected statuses.
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient returns an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
