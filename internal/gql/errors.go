package gql

import (
	"errors"

	apperrors "starwars/internal/errors"
)

// Error categories reported in extensions.code.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeConflict        = "CONFLICT"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// Error is a resolver error that graphql-go renders with extensions.
type Error struct {
	Message string
	Code    string
	// Reason is the code the REST API reports for the same failure.
	Reason string
	cause  error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Extensions implements gqlerrors.ExtendedError.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":   e.Code,
		"reason": e.Reason,
	}
}

// fromDomain classifies err into a GraphQL error category.
func fromDomain(err error) *Error {
	var gqlErr *Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}

	mapped := apperrors.MapErrorToHTTP(err)
	out := &Error{Message: mapped.Message, Reason: mapped.Code, cause: err}
	switch {
	case apperrors.IsAuthentication(err), errors.Is(err, apperrors.ErrInvalidCredentials):
		out.Code = CodeUnauthenticated
	case errors.Is(err, apperrors.ErrForbidden):
		out.Code = CodeForbidden
	case errors.Is(err, apperrors.ErrValidation):
		out.Code = CodeBadUserInput
	case errors.Is(err, apperrors.ErrDuplicateUsername), errors.Is(err, apperrors.ErrDuplicateEmail):
		out.Code = CodeConflict
	case errors.Is(err, apperrors.ErrUserNotFound), errors.Is(err, apperrors.ErrCharacterNotFound):
		out.Code = CodeNotFound
	default:
		out.Code = CodeInternal
	}
	return out
}
