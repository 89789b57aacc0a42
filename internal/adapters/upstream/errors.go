package upstream

import "errors"

// Sentinel kinds for upstream failures. Every one of them also matches
// model.ErrUpstreamUnavailable through the wrapping done in the client.
var (
	ErrRequest  = errors.New("upstream request failed")
	ErrStatus   = errors.New("upstream returned non-2xx status")
	ErrDecode   = errors.New("upstream response malformed")
	ErrRejected = errors.New("upstream reported failure")
)
