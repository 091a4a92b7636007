package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/teamspace-io/teamspace/internal/store"
)

// Kind is the stable error taxonomy tag surfaced to clients in the response
// envelope's "code" field.
type Kind string

const (
	KindUnauthenticated    Kind = "Unauthenticated"
	KindProfileIncomplete  Kind = "ProfileIncomplete"
	KindForbiddenWorkspace Kind = "ForbiddenWorkspace"
	KindNotFound           Kind = "NotFound"
	KindValidation         Kind = "ValidationError"
	KindUpstream           Kind = "UpstreamFailure"
	KindInternal           Kind = "InternalError"
)

// HTTPStatus maps a taxonomy kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindProfileIncomplete, KindForbiddenWorkspace:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a taxonomy-tagged failure. Message is the stable client-visible
// string; the wrapped cause carries internal detail for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a taxonomy error with a client-visible message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a taxonomy error carrying an internal cause.
func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Common constructors, so messages stay identical across call sites.

func ErrUnauthenticated(cause error) *Error {
	return WrapError(KindUnauthenticated, "Authentication required", cause)
}

func ErrProfileIncomplete() *Error {
	return NewError(KindProfileIncomplete, "Profile required: complete onboarding to access this resource")
}

func ErrForbiddenWorkspace() *Error {
	return NewError(KindForbiddenWorkspace, "Access to this workspace is forbidden")
}

func ErrNotFound(what string) *Error {
	return NewError(KindNotFound, what+" not found")
}

func ErrValidation(message string) *Error {
	return NewError(KindValidation, message)
}

func ErrUpstream(cause error) *Error {
	return WrapError(KindUpstream, "Upstream service unavailable", cause)
}

// Classify maps an arbitrary failure to a taxonomy error. Taxonomy errors
// pass through; store sentinels and context errors get their documented
// kinds; anything unrecognized becomes InternalError with a generic message
// so internal detail never leaks to the client.
func Classify(err error) *Error {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}

	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		return WrapError(KindNotFound, "Profile not found", err)
	case errors.Is(err, store.ErrWorkspaceNotFound):
		return WrapError(KindNotFound, "Workspace not found", err)
	case errors.Is(err, store.ErrInviteNotFound):
		return WrapError(KindNotFound, "Invite not found", err)
	case errors.Is(err, store.ErrNotProfileOwner):
		return WrapError(KindForbiddenWorkspace, "Profile is not owned by the caller", err)
	case errors.Is(err, store.ErrInviteExpired):
		return WrapError(KindValidation, "Invite has expired", err)
	case errors.Is(err, store.ErrProfileAlreadyExists):
		return WrapError(KindValidation, "Profile already exists", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrUpstream(err)
	default:
		return WrapError(KindInternal, "Internal error", err)
	}
}
