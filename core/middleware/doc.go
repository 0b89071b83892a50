// Package middleware groups the HTTP middleware of the Fiber application.
//
//   - auth: API key check protecting every non-public route.
//   - rayid: assigns a RayID to every request and echoes it in the response
//     so that log lines of one request can be correlated.
//
// RayID must be registered first so that everything after it is traceable.
package middleware
