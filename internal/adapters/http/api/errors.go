package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/lineups/internal/adapters/repository"
	"github.com/okian/lineups/internal/domain/splits"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeds maximum")
)

// statusOf maps a query error to its HTTP status and error code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNoReport):
		return http.StatusNotFound, "no_report"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, repository.ErrUnknownMetric),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, splits.ErrComboSize),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
