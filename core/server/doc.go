// Package server holds the HTTP server configuration.
//
// The server itself is assembled in cmd/start.go from the feature loader;
// this package only carries the listening port and the API key used by the
// auth middleware.
package server
