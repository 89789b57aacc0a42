package api

import (
	"errors"
	"net/http"

	"github.com/okian/growthboard/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal server error")
)

// Error codes carried in the error envelope.
const (
	codeMissingParam       = "missing_parameter"
	codeInvalidParam       = "invalid_parameter"
	codeInvalidRange       = "invalid_range"
	codeProfessionNotFound = "profession_not_found"
	codeNoData             = "no_data_available"
	codeInternal           = "internal_error"
)

// classify maps an error to its HTTP status and envelope code. Unknown errors
// are internal and their message is not exposed.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, model.ErrMissingRequiredParam):
		return http.StatusBadRequest, codeMissingParam, err.Error()
	case errors.Is(err, model.ErrInvalidRange):
		return http.StatusBadRequest, codeInvalidRange, err.Error()
	case errors.Is(err, model.ErrInvalidParam), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeInvalidParam, err.Error()
	case errors.Is(err, model.ErrProfessionNotFound):
		return http.StatusNotFound, codeProfessionNotFound, err.Error()
	case errors.Is(err, model.ErrNoDataAvailable):
		return http.StatusServiceUnavailable, codeNoData, err.Error()
	default:
		return http.StatusInternalServerError, codeInternal, ErrInternal.Error()
	}
}
