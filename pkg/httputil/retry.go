package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RetryableError marks an error as transient.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err so that [Retry] tries again. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, is a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy controls the backoff schedule.
type Policy struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultPolicy makes 3 attempts starting at one second.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 10 * time.Second}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The delay doubles after every failure, up to MaxDelay
// when that is set. A cancelled ctx aborts the wait with ctx.Err().
func Retry(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
				if p.MaxDelay > 0 && delay > p.MaxDelay {
					delay = p.MaxDelay
				}
			}
		}
	}
	return lastErr
}

// RetryWithBackoff runs fn under [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultPolicy, fn)
}

// StatusError describes an unexpected HTTP status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// CheckStatus returns nil for 2xx codes. Server errors and 429 come back
// wrapped with [Retryable]; other codes as a plain *StatusError.
func CheckStatus(code int, url string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500, code == http.StatusTooManyRequests:
		return Retryable(&StatusError{Code: code, URL: url})
	default:
		return &StatusError{Code: code, URL: url}
	}
}
