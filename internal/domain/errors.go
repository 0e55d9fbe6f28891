package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed recommendation request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRateLimited signals a rate limit hit on an upstream service.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstreamUnavailable signals an unreachable external service.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
