package retry

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for retry purposes.
type Kind int

const (
	// KindTransient covers infrastructure failures worth retrying:
	// network timeouts, 5xx responses, rate limiting.
	KindTransient Kind = iota
	// KindPermanent covers rejected input and malformed responses.
	// Retrying cannot help.
	KindPermanent
	// KindExhausted marks a transient failure that used up its retry
	// budget. Callers treat it like a permanent failure for the current
	// run; the next scheduled run may try again.
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Error wraps an underlying failure with its classification.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindTransient, Err: err}
}

// Permanent marks err as not retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindPermanent, Err: err}
}

// KindOf reports the classification of err. Unclassified errors are
// treated as transient: unknown failures are typically network-level and
// safe to retry against idempotent operations.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindTransient
}

// IsPermanent reports whether err should abort retrying immediately.
func IsPermanent(err error) bool {
	return KindOf(err) == KindPermanent
}

// FromHTTPStatus classifies an HTTP response status: rate limiting and
// server errors are transient, any other 4xx is permanent.
func FromHTTPStatus(status int, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case status == http.StatusTooManyRequests:
		return Transient(err)
	case status >= 500:
		return Transient(err)
	case status >= 400:
		return Permanent(err)
	}
	return Transient(err)
}
