package cmd

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stockroom/internal/api"
	"github.com/felixgeelhaar/stockroom/internal/errors"
	"github.com/felixgeelhaar/stockroom/internal/exitcode"
)

func TestExplain(t *testing.T) {
	refused := &api.TransportError{Method: "GET", URL: "http://localhost:8000/api/materials/", Err: stderrors.New("connection refused")}
	timeout := &api.TransportError{Method: "GET", URL: "http://localhost:8000/api/materials/", Timeout: true, Err: context.DeadlineExceeded}
	unauthorized := &api.HTTPError{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized"}

	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		exitCode int
	}{
		{"connection refused", refused, errors.ErrCodeHTTPNetwork, exitcode.NetworkError},
		{"timeout", timeout, errors.ErrCodeHTTPTimeout, exitcode.NetworkError},
		{"unauthorized", unauthorized, errors.ErrCodeAuthSessionExpired, exitcode.AuthError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Explain(tt.err)

			var se *errors.StockroomError
			require.ErrorAs(t, got, &se)
			assert.Equal(t, tt.code, se.Code)
			assert.NotEmpty(t, se.Suggestions)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.exitCode, exitcode.DetermineExitCode(got))
		})
	}
}

func TestExplain_KeepsCodedErrors(t *testing.T) {
	coded := errors.NewNotAuthenticatedError("/inventory")
	assert.Same(t, coded, Explain(coded))

	plain := stderrors.New("boom")
	assert.Equal(t, plain, Explain(plain))
	assert.NoError(t, Explain(nil))
}
