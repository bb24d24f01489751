package cmd

import (
	stderrors "errors"
	"net/http"

	"github.com/felixgeelhaar/stockroom/internal/api"
	"github.com/felixgeelhaar/stockroom/internal/errors"
)

// Explain attaches a code and suggestions to failures that reach the top
// level without one. Errors that already carry a code are returned as is.
func Explain(err error) error {
	if err == nil {
		return nil
	}
	var se *errors.StockroomError
	if stderrors.As(err, &se) {
		return err
	}

	var te *api.TransportError
	if stderrors.As(err, &te) {
		if te.Timeout {
			return errors.NewTimeoutError(te.URL, err)
		}
		return errors.NewNetworkError(te.URL, err)
	}

	if api.StatusCode(err) == http.StatusUnauthorized {
		return errors.NewSessionExpiredError(err)
	}
	return err
}
