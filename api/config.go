// Package api provides the HTTP server for the figmatch crop-and-match
// workflow.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":5000")
	ListenAddr string
}
