// Package exitcode maps command errors to process exit codes.
package exitcode

import (
	stderrors "errors"
	"net/http"
	"os"
	"strings"

	"github.com/felixgeelhaar/stockroom/internal/api"
	"github.com/felixgeelhaar/stockroom/internal/errors"
	"github.com/felixgeelhaar/stockroom/internal/navigation"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates an unreadable or invalid configuration
	ConfigError = 3

	// NotFound indicates an unknown route or a missing backend resource
	NotFound = 4

	// AuthError indicates missing, rejected or expired credentials
	AuthError = 5

	// NetworkError indicates the backend could not be reached or timed out
	NetworkError = 6

	// Interrupted indicates the command was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// DetermineExitCode classifies err by its type first and falls back to
// message heuristics for errors from outside stockroom (cobra flag parsing).
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, api.ErrNetwork) {
		return NetworkError
	}
	if stderrors.Is(err, navigation.ErrRouteNotFound) {
		return NotFound
	}

	var se *errors.StockroomError
	if stderrors.As(err, &se) {
		switch {
		case strings.HasPrefix(string(se.Code), "AUTH-"):
			if se.Code == errors.ErrCodeAuthInvalidInput {
				return UsageError
			}
			return AuthError
		case strings.HasPrefix(string(se.Code), "HTTP-"):
			return NetworkError
		case strings.HasPrefix(string(se.Code), "CONFIG-"):
			return ConfigError
		case se.Code == errors.ErrCodeNavRouteNotFound:
			return NotFound
		}
		return GeneralError
	}

	switch api.StatusCode(err) {
	case 0:
	case http.StatusUnauthorized, http.StatusForbidden:
		return AuthError
	case http.StatusNotFound:
		return NotFound
	default:
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") ||
		strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown shorthand flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg(s)") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConfigError:
		return "Configuration error"
	case NotFound:
		return "Not found"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
