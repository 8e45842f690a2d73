package domain

import (
	"errors"
	"fmt"
)

// ===== Base error =====

// DomainError is the error type shared by services and the HTTP edge.
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (code: %s)", e.Message, e.Cause.Error(), e.Code)
	}
	return fmt.Sprintf("%s (code: %s)", e.Message, e.Code)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError by code, so sentinel values below work
// with errors.Is regardless of message or cause.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ===== Upstream errors =====

const (
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamBadStatus   = "UPSTREAM_BAD_STATUS"
	ErrCodeUpstreamBadPayload  = "UPSTREAM_BAD_PAYLOAD"
	ErrCodeInternal            = "INTERNAL"
)

var (
	ErrUpstreamUnavailable = NewDomainError(ErrCodeUpstreamUnavailable, "service-b is unavailable", nil)
	ErrUpstreamBadStatus   = NewDomainError(ErrCodeUpstreamBadStatus, "service-b returned an unexpected status", nil)
	ErrUpstreamBadPayload  = NewDomainError(ErrCodeUpstreamBadPayload, "service-b returned an invalid payload", nil)
	ErrInternal            = NewDomainError(ErrCodeInternal, "internal error", nil)
)

func NewUpstreamUnavailableError(url string, cause error) *DomainError {
	return NewDomainError(
		ErrCodeUpstreamUnavailable,
		fmt.Sprintf("call to %s failed", url),
		cause,
	)
}

func NewUpstreamBadStatusError(url string, status int, body string) *DomainError {
	msg := fmt.Sprintf("%s answered with status %d", url, status)
	if body != "" {
		msg += ": " + body
	}
	return NewDomainError(ErrCodeUpstreamBadStatus, msg, nil)
}

func NewUpstreamBadPayloadError(url string, cause error) *DomainError {
	return NewDomainError(
		ErrCodeUpstreamBadPayload,
		fmt.Sprintf("could not decode response from %s", url),
		cause,
	)
}

// IsUpstreamError reports whether err originates from the outbound call.
func IsUpstreamError(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	switch de.Code {
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamBadStatus, ErrCodeUpstreamBadPayload:
		return true
	}
	return false
}

// CodeOf returns the domain code carried by err, or ErrCodeInternal.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}
