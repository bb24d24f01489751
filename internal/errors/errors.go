package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthLoginFailed      ErrorCode = "AUTH-001"
	ErrCodeAuthNotAuthenticated ErrorCode = "AUTH-002"
	ErrCodeAuthSessionExpired   ErrorCode = "AUTH-003"
	ErrCodeAuthInvalidInput     ErrorCode = "AUTH-004"

	// HTTP errors (HTTP-001 to HTTP-099)
	ErrCodeHTTPNetwork  ErrorCode = "HTTP-001"
	ErrCodeHTTPTimeout  ErrorCode = "HTTP-002"
	ErrCodeHTTPResponse ErrorCode = "HTTP-003"
	ErrCodeHTTPDecode   ErrorCode = "HTTP-004"

	// Navigation errors (NAV-001 to NAV-099)
	ErrCodeNavRouteNotFound ErrorCode = "NAV-001"
	ErrCodeNavRedirectLoop  ErrorCode = "NAV-002"
	ErrCodeNavViewFailed    ErrorCode = "NAV-003"

	// Storage errors (STORE-001 to STORE-099)
	ErrCodeStoreReadFailed  ErrorCode = "STORE-001"
	ErrCodeStoreWriteFailed ErrorCode = "STORE-002"
	ErrCodeStoreBackend     ErrorCode = "STORE-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid    ErrorCode = "CONFIG-001"
	ErrCodeConfigReadFailed ErrorCode = "CONFIG-002"
)

// StockroomError represents an enhanced error with code, suggestions, and documentation
type StockroomError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *StockroomError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *StockroomError) Unwrap() error {
	return e.Cause
}

// New creates a new StockroomError
func New(code ErrorCode, message string) *StockroomError {
	return &StockroomError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new StockroomError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *StockroomError {
	return &StockroomError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *StockroomError) WithSuggestion(suggestion string) *StockroomError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *StockroomError) WithSuggestions(suggestions ...string) *StockroomError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *StockroomError) WithDocs(url string) *StockroomError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewLoginFailedError creates a credential exchange failure
func NewLoginFailedError(username string, cause error) *StockroomError {
	return Wrap(ErrCodeAuthLoginFailed, fmt.Sprintf("login failed for user: %s", username), cause).
		WithSuggestion("Check your username and password").
		WithSuggestion("Run 'stockroom config show' to verify the API URL").
		WithDocs("https://github.com/felixgeelhaar/stockroom#authentication")
}

// NewNotAuthenticatedError creates an error for protected views reached without a token
func NewNotAuthenticatedError(path string) *StockroomError {
	return New(ErrCodeAuthNotAuthenticated, fmt.Sprintf("authentication required for: %s", path)).
		WithSuggestion("Run 'stockroom login' to authenticate")
}

// NewSessionExpiredError creates an error for a session cleared by an unauthorized response
func NewSessionExpiredError(cause error) *StockroomError {
	return Wrap(ErrCodeAuthSessionExpired, "session is no longer valid and has been cleared", cause).
		WithSuggestion("Run 'stockroom login' to authenticate again")
}

// NewNetworkError creates a transport failure error
func NewNetworkError(apiURL string, cause error) *StockroomError {
	return Wrap(ErrCodeHTTPNetwork, fmt.Sprintf("cannot reach inventory API: %s", apiURL), cause).
		WithSuggestion("Check that the backend is running").
		WithSuggestion("Set STOCKROOM_API_URL or pass --api-url")
}

// NewTimeoutError creates a request timeout error
func NewTimeoutError(apiURL string, cause error) *StockroomError {
	return Wrap(ErrCodeHTTPTimeout, fmt.Sprintf("request to inventory API timed out: %s", apiURL), cause).
		WithSuggestion("Retry the command").
		WithSuggestion("Check the backend health and network latency")
}

// NewRouteNotFoundError creates an unknown route error
func NewRouteNotFoundError(path string) *StockroomError {
	return New(ErrCodeNavRouteNotFound, fmt.Sprintf("no route matches path: %s", path)).
		WithSuggestion("Use one of: /, /inventory, /transactions, /login")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string, cause error) *StockroomError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details), cause).
		WithSuggestion("Run 'stockroom config show' to inspect the effective configuration").
		WithDocs("https://github.com/felixgeelhaar/stockroom#configuration")
}

// NewStoreWriteError creates a durable storage write failure
func NewStoreWriteError(key string, cause error) *StockroomError {
	return Wrap(ErrCodeStoreWriteFailed, fmt.Sprintf("failed to persist key: %s", key), cause).
		WithSuggestion("Verify you have write permissions on the storage location")
}
