package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/stockroom/internal/log"
)

// Header names set by the built-in hooks.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

// TokenSource supplies the current credential. An empty string means
// unauthenticated.
type TokenSource interface {
	Token() string
}

// Logouter clears the session.
type Logouter interface {
	Logout(ctx context.Context)
}

// InjectToken attaches "Authorization: Token <credential>" whenever src
// holds a credential. It never fails the request.
func InjectToken(src TokenSource) RequestHook {
	return func(req *http.Request) error {
		if token := src.Token(); token != "" {
			req.Header.Set(HeaderAuthorization, "Token "+token)
		}
		return nil
	}
}

// LogoutOnUnauthorized logs the session out when a response carries
// status 401 and passes the original error on unchanged. Failures without a
// response never trigger a logout.
func LogoutOnUnauthorized(target Logouter) ResponseHook {
	return func(ctx context.Context, resp *http.Response, err error) (*http.Response, error) {
		if IsUnauthorized(err) {
			target.Logout(ctx)
		}
		return resp, err
	}
}

// RequestID stamps a fresh X-Request-ID unless the caller set one.
func RequestID() RequestHook {
	return func(req *http.Request) error {
		if req.Header.Get(HeaderRequestID) == "" {
			req.Header.Set(HeaderRequestID, uuid.NewString())
		}
		return nil
	}
}

// UserAgent sets the User-Agent header on every request.
func UserAgent(ua string) RequestHook {
	return func(req *http.Request) error {
		req.Header.Set("User-Agent", ua)
		return nil
	}
}

type startKey struct{}

// LogRequests returns a hook pair that logs every exchange at debug level.
// The Authorization header is never logged.
func LogRequests(logger *log.Logger) (RequestHook, ResponseHook) {
	logger = logger.WithComponent("api")

	before := func(req *http.Request) error {
		*req = *req.WithContext(context.WithValue(req.Context(), startKey{}, time.Now()))
		logger.Debug("api request",
			"method", req.Method,
			"url", req.URL.String(),
			"request_id", req.Header.Get(HeaderRequestID),
			"authenticated", req.Header.Get(HeaderAuthorization) != "",
		)
		return nil
	}

	after := func(ctx context.Context, resp *http.Response, err error) (*http.Response, error) {
		args := []any{}
		if start, ok := ctx.Value(startKey{}).(time.Time); ok {
			args = append(args, "duration", time.Since(start))
		}
		if resp != nil {
			args = append(args, "status", resp.StatusCode)
		}
		if err != nil {
			logger.WithError(err).Debug("api request failed", args...)
		} else {
			logger.Debug("api response", args...)
		}
		return resp, err
	}

	return before, after
}
