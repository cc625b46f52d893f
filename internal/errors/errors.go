package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when required fields are missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrCharacterNotFound is returned when a character lookup misses.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when the email is already taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenMissing is returned when no bearer token was presented.
	ErrTokenMissing = errors.New("token not provided")
	// ErrInvalidToken is returned for malformed tokens or bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when the token expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked is returned for tokens revoked by logout.
	ErrTokenRevoked = errors.New("token revoked (logged out)")
	// ErrForbidden is returned when the caller lacks the master privilege.
	ErrForbidden = errors.New("access denied")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// IsAuthentication reports whether err means the caller is not authenticated.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrTokenMissing) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenRevoked)
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Unknown users and wrong passwords share one response so logins cannot probe usernames.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrCharacterNotFound):
		return NewHTTPError(http.StatusNotFound, ErrCharacterNotFound.Error(), "CHARACTER_NOT_FOUND")
	case errors.Is(err, ErrDuplicateUsername):
		return NewHTTPError(http.StatusConflict, ErrDuplicateUsername.Error(), "DUPLICATE_USERNAME")
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusConflict, ErrDuplicateEmail.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrTokenMissing):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenMissing.Error(), "TOKEN_MISSING")
	case errors.Is(err, ErrTokenRevoked):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenRevoked.Error(), "TOKEN_REVOKED")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenExpired.Error(), "TOKEN_EXPIRED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
