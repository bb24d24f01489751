package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNetwork matches every failure where no response was received.
	ErrNetwork = stderrors.New("network failure")
	// ErrTimeout matches requests that exceeded the client timeout or
	// their context deadline. A timeout also matches ErrNetwork.
	ErrTimeout = stderrors.New("request timed out")
)

// TransportError is returned when the request produced no response.
type TransportError struct {
	Method  string
	URL     string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	kind := "network failure"
	if e.Timeout {
		kind = "timeout"
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, kind, e.Err)
}

// Unwrap exposes the sentinel kinds and the underlying transport error.
func (e *TransportError) Unwrap() []error {
	if e.Timeout {
		return []error{ErrTimeout, ErrNetwork, e.Err}
	}
	return []error{ErrNetwork, e.Err}
}

// HTTPError is returned for any response outside the 2xx range.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Unauthorized reports whether the response status was 401.
func (e *HTTPError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Detail extracts a human-readable message from a REST framework error
// body: {"detail": "..."}, {"non_field_errors": [...]} or per-field lists.
func (e *HTTPError) Detail() string {
	if len(e.Body) == 0 {
		return ""
	}

	var body map[string]any
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}

	if d, ok := body["detail"].(string); ok {
		return d
	}
	if msgs := stringList(body["non_field_errors"]); len(msgs) > 0 {
		return strings.Join(msgs, "; ")
	}

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		if msgs := stringList(body[k]); len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(msgs, ", ")))
		}
	}
	return strings.Join(parts, "; ")
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from a response.
func StatusCode(err error) int {
	var herr *HTTPError
	if stderrors.As(err, &herr) {
		return herr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err carries a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
