package domain

import "errors"

// ErrNoRoute is returned when the terrain search exhausts its open set
// without reaching the goal. It is an expected outcome for genuinely
// impassable terrain, not an internal failure.
var ErrNoRoute = errors.New("no passable terrain route found")

// ErrUpstream is returned when an external service (elevation provider or
// road-graph router) is unreachable or responds with a non-success status.
var ErrUpstream = errors.New("upstream service failure")

// ErrValidation is returned for missing or malformed request parameters.
var ErrValidation = errors.New("invalid request parameters")
