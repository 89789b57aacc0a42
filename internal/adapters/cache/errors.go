package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrMiss        = errors.New("cache miss")
	ErrUnavailable = errors.New("cache unavailable")
)
