package model

import "errors"

// Sentinel error kinds shared by the analytics pipeline. Callers classify with errors.Is.
var (
	ErrInvalidRange         = errors.New("invalid date range")
	ErrMissingRequiredParam = errors.New("missing required parameter")
	ErrInvalidParam         = errors.New("invalid parameter")
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
	ErrNoDataAvailable      = errors.New("no data available")
	ErrProfessionNotFound   = errors.New("profession not found")
)
