package registrar

import (
	"errors"
	"fmt"
)

// Kind classifies an API error for retry and abort decisions.
type Kind int

const (
	// KindTransient covers network failures, 5xx responses and rate
	// limiting. Transient errors are retried before being surfaced.
	KindTransient Kind = iota
	// KindAuth covers rejected credentials and domains without API
	// access. Fatal for the domain, never retried.
	KindAuth
	// KindValidation means the registrar rejected the payload. Fatal for
	// the single record, never retried.
	KindValidation
	// KindNotFound means the target record or domain does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a typed registrar API error.
type Error struct {
	Op      string // operation, e.g. "dns/create"
	Kind    Kind
	Message string
	Err     error // underlying error, may be nil
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func kindIs(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// IsTransient reports whether err is a retryable registrar error.
func IsTransient(err error) bool { return kindIs(err, KindTransient) }

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return kindIs(err, KindAuth) }

// IsValidation reports whether err is a payload rejection.
func IsValidation(err error) bool { return kindIs(err, KindValidation) }

// IsNotFound reports whether err means the target was absent.
func IsNotFound(err error) bool { return kindIs(err, KindNotFound) }
