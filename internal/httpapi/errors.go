// Package httpapi is the HTTP Surface (§4.7): route matching, input
// parsing and validation, pagination wrapping, and error mapping. It holds
// no business logic — every value it serializes comes from the Warehouse,
// the Derivation Layer, or the Aggregator.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prabasiva/greport/internal/warehouse"
)

// Kind is the internal error taxonomy of §7, surfaced as the error
// envelope's "code" field.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindUnauthorized     Kind = "unauthorized"
	KindRateLimited      Kind = "rate_limited"
	KindHostError        Kind = "host_error"
	KindWarehouseError   Kind = "warehouse_error"
	KindDeadlineExceeded Kind = "deadline_exceeded"
	KindInternal         Kind = "internal"
)

// Error is the typed error every handler returns instead of a bare error,
// carrying the HTTP status and §7 kind the envelope writer needs. Modeled
// on the teacher's NotFoundError/ValidationError family
// (infrastructure/httputil/handler.go), collapsed into one type with a
// Kind field since §7's taxonomy is closed and small enough not to need
// one Go type per kind.
type Error struct {
	Kind       Kind
	Message    string
	Status     int
	RetryAfter time.Duration // only meaningful for KindRateLimited
}

func (e *Error) Error() string { return e.Message }

func validationErr(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Status: http.StatusBadRequest}
}

func notFoundErr(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Status: http.StatusNotFound}
}

// unauthorizedConfigErr is §7's "unauthorized, config issue" branch: no
// credential is configured for the requested owner at all.
func unauthorizedConfigErr(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Status: http.StatusUnauthorized}
}

// unauthorizedRuntimeErr is §7's "unauthorized, runtime" branch: a
// configured credential was rejected by the host mid-request.
func unauthorizedRuntimeErr(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Status: http.StatusBadGateway}
}

func rateLimitedErr(msg string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: msg, Status: http.StatusServiceUnavailable, RetryAfter: retryAfter}
}

func hostErr(msg string) *Error {
	return &Error{Kind: KindHostError, Message: msg, Status: http.StatusBadGateway}
}

func warehouseErr(msg string) *Error {
	return &Error{Kind: KindWarehouseError, Message: msg, Status: http.StatusInternalServerError}
}

func deadlineErr() *Error {
	return &Error{Kind: KindDeadlineExceeded, Message: "request deadline exceeded", Status: http.StatusGatewayTimeout}
}

func internalErr(msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg, Status: http.StatusInternalServerError}
}

// classify maps an arbitrary error (returned by the Warehouse, Sync
// Coordinator, or a handler's own validation) onto the §7 taxonomy. Errors
// already carrying *Error pass through unchanged; everything else is
// classified by what it wraps, falling back to KindInternal so the surface
// "never leaks credentials or full stack traces" (§7) regardless of what a
// lower layer returned.
func classify(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return deadlineErr()
	}
	if warehouse.IsNotFound(err) {
		return notFoundErr(err.Error())
	}
	return internalErr("internal server error")
}
