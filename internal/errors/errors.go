package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidRequest is returned when required input is missing or malformed.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned when no valid identity is attached to the request.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden is returned when the identity may not act on the resource.
	ErrForbidden = errors.New("access denied")
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write collides with existing state.
	ErrConflict = errors.New("conflict")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = Wrap(ErrConflict, "email already in use")
	// ErrInvalidToken is returned for unknown, expired or consumed one-time tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid, expired or revoked.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrInvalidCard is returned when card validation fails.
	ErrInvalidCard = errors.New("invalid card")
	// ErrAmountTooSmall is returned when a payment amount is below the provider minimum.
	ErrAmountTooSmall = errors.New("amount too small")
	// ErrPaymentFailed is returned when the payment provider rejects or fails a request.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrTooManyRequests is returned by the rate limiter.
	ErrTooManyRequests = errors.New("too many requests")
)

// InvalidMenuItemsError lists menu item IDs referenced by an order that do not exist.
type InvalidMenuItemsError struct {
	MissingIDs []uint
}

func (e *InvalidMenuItemsError) Error() string {
	ids := make([]string, len(e.MissingIDs))
	for i, id := range e.MissingIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("menu items with IDs %s do not exist", strings.Join(ids, ", "))
}

// InvalidStatusError is returned when an order status is outside the allowed set.
type InvalidStatusError struct {
	Status  string
	Allowed []string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status value %q", e.Status)
}

// FieldError describes one failed field validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level validation failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error      string       `json:"error"`
	Code       string       `json:"code"`
	Message    string       `json:"message,omitempty"`
	Details    []FieldError `json:"details,omitempty"`
	MissingIDs []uint       `json:"missingIds,omitempty"`
	Allowed    []string     `json:"allowed,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Response   ErrorResponse
}

func (e *HTTPError) Error() string {
	return e.Response.Error
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Response: ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return e.Response
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a
// generic 500 so internal details never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var (
		menuErr   *InvalidMenuItemsError
		statusErr *InvalidStatusError
		valErr    *ValidationError
	)

	switch {
	case errors.As(err, &valErr):
		httpErr := NewHTTPError(http.StatusBadRequest, "validation failed", "VALIDATION_FAILED")
		httpErr.Response.Details = valErr.Fields
		return httpErr
	case errors.As(err, &menuErr):
		httpErr := NewHTTPError(http.StatusBadRequest, "invalid menu items", "INVALID_MENU_ITEMS")
		httpErr.Response.Message = menuErr.Error()
		httpErr.Response.MissingIDs = menuErr.MissingIDs
		return httpErr
	case errors.As(err, &statusErr):
		httpErr := NewHTTPError(http.StatusBadRequest, "invalid status value", "INVALID_STATUS")
		httpErr.Response.Allowed = statusErr.Allowed
		return httpErr
	case errors.Is(err, ErrInvalidRequest):
		return withMessage(NewHTTPError(http.StatusBadRequest, "invalid request", "INVALID_REQUEST"), err, ErrInvalidRequest)
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrInvalidCard):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CARD")
	case errors.Is(err, ErrAmountTooSmall):
		return withMessage(NewHTTPError(http.StatusBadRequest, "amount too small", "AMOUNT_TOO_SMALL"), err, ErrAmountTooSmall)
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "invalid credentials", "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotFound):
		return withMessage(NewHTTPError(http.StatusNotFound, "not found", "NOT_FOUND"), err, ErrNotFound)
	case errors.Is(err, ErrConflict):
		return withMessage(NewHTTPError(http.StatusConflict, "conflict", "CONFLICT"), err, ErrConflict)
	case errors.Is(err, ErrTooManyRequests):
		return NewHTTPError(http.StatusTooManyRequests, err.Error(), "TOO_MANY_REQUESTS")
	case errors.Is(err, ErrPaymentFailed):
		return NewHTTPError(http.StatusBadGateway, err.Error(), "PAYMENT_FAILED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// withMessage attaches the wrapped context of err as the client message when
// err carries more than the bare sentinel.
func withMessage(httpErr *HTTPError, err, sentinel error) *HTTPError {
	if err != sentinel {
		httpErr.Response.Message = err.Error()
	}
	return httpErr
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// detailError carries a client-facing message for a sentinel.
type detailError struct {
	sentinel error
	msg      string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.sentinel }

// Wrap attaches a client-facing detail to a sentinel, keeping it matchable with Is.
func Wrap(sentinel error, format string, args ...any) error {
	return &detailError{sentinel: sentinel, msg: fmt.Sprintf(format, args...)}
}
