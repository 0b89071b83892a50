// Package runs triggers workflow runs over HTTP.
//
// POST /runs executes one run synchronously and returns its report. Requests
// for the same age group, division and mode that arrive while a run is in
// progress wait for it and receive the same report instead of starting a
// second one. GET /cache/stats returns the team cache statistics of the last
// run of every scope.
package runs
