package errors

import (
	"net/http"

	"storehub/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Predefined error types
var (
	// Account-related errors
	ErrAccountNotFound = NewBaseError(
		http.StatusNotFound,
		"ACCOUNT_NOT_FOUND",
		"Account not found",
		"",
	)

	// Authentication-related errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"These credentials do not match our records",
		"",
	)

	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
		"Authentication is required",
		"",
	)

	ErrTooManyAttempts = NewBaseError(
		http.StatusTooManyRequests,
		"TOO_MANY_ATTEMPTS",
		"Too many attempts, please try again later",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Password processing failed",
		"",
	)

	// Two-factor errors
	ErrChallengeInvalid = NewBaseError(
		http.StatusUnauthorized,
		"CHALLENGE_INVALID",
		"The two-factor session is invalid or has expired",
		"",
	)

	ErrInvalidTwoFactorCode = NewBaseError(
		http.StatusUnprocessableEntity,
		"INVALID_TWO_FACTOR_CODE",
		"The provided two-factor code is invalid",
		"",
	)

	ErrTwoFactorSetupRequired = NewBaseError(
		http.StatusForbidden,
		"TWO_FACTOR_SETUP_REQUIRED",
		"Two-factor authentication setup must be completed",
		"",
	)

	ErrTwoFactorAlreadyConfirmed = NewBaseError(
		http.StatusConflict,
		"TWO_FACTOR_ALREADY_CONFIRMED",
		"Two-factor authentication is already confirmed",
		"",
	)

	ErrTwoFactorChannelUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"TWO_FACTOR_CHANNEL_UNAVAILABLE",
		"The verification code could not be delivered",
		"",
	)

	ErrUnknownGuard = NewBaseError(
		http.StatusNotFound,
		"UNKNOWN_GUARD",
		"Unknown authentication realm",
		"",
	)

	// Authorization errors. The message never reveals which check failed.
	ErrAccessDenied = NewBaseError(
		http.StatusForbidden,
		"ACCESS_DENIED",
		"You are not allowed to perform this action",
		"",
	)

	ErrInvalidPermission = NewBaseError(
		http.StatusBadRequest,
		"INVALID_PERMISSION",
		"One or more permissions are not recognised",
		"",
	)

	ErrPermissionNotGrantable = NewBaseError(
		http.StatusUnprocessableEntity,
		"PERMISSION_NOT_GRANTABLE",
		"One or more permissions cannot be granted to staff",
		"",
	)

	// Store-related errors
	ErrStoreNotFound = NewBaseError(
		http.StatusNotFound,
		"STORE_NOT_FOUND",
		"Store not found",
		"",
	)

	ErrLastOwner = NewBaseError(
		http.StatusUnprocessableEntity,
		"LAST_OWNER",
		"A store must keep at least one owner",
		"",
	)

	ErrOwnershipNotFound = NewBaseError(
		http.StatusNotFound,
		"OWNERSHIP_NOT_FOUND",
		"The account does not own this store",
		"",
	)

	ErrStaffNotFound = NewBaseError(
		http.StatusNotFound,
		"STAFF_NOT_FOUND",
		"Staff member not found in this store",
		"",
	)

	// Order-related errors
	ErrOrderNotFound = NewBaseError(
		http.StatusNotFound,
		"ORDER_NOT_FOUND",
		"Order not found",
		"",
	)

	ErrOrderCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"ORDER_CREATION_FAILED",
		"Failed to create order",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"Database transaction failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
