// Package server holds the HTTP server configuration.
//
// The start command reads Config for the listen port, the API key enforced by
// the auth middleware and the request timeouts handed to Fiber.
package server
