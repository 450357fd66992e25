package api

import (
	"errors"
	"net/http"

	"proforma/internal/catalog"
	"proforma/internal/invoice"
	"proforma/internal/pipeline"
	"proforma/internal/settings"
)

// requestError carries the status and code a handler wants the client to see.
type requestError struct {
	err    error
	status int
	code   string
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err, status: http.StatusBadRequest, code: "bad_request"}
}

func notFound(err error) error {
	return &requestError{err: err, status: http.StatusNotFound, code: "not_found"}
}

// mapError turns an error into the HTTP status and machine code of the
// response. Unknown errors are internal.
func mapError(err error) (int, string) {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return re.status, re.code
	case errors.Is(err, invoice.ErrNoOrders):
		return http.StatusUnprocessableEntity, "no_orders"
	case errors.Is(err, pipeline.ErrUnsupportedInput):
		return http.StatusUnsupportedMediaType, "unsupported_input"
	case errors.Is(err, catalog.ErrUnsupportedGuide):
		return http.StatusBadRequest, "unsupported_guide"
	case errors.Is(err, settings.ErrProfileNotFound):
		return http.StatusNotFound, "profile_not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
