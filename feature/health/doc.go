// Package health exposes liveness and upstream checks.
//
//	GET /health           the service itself
//	GET /health/upstream  the match-tracking API, through its /health/full
package health
