// Package app assembles a running trip: it picks the remote store from config,
// binds one synced cell per store path and builds the services on top of them.
// Both binaries (the HTTP server and the CLI) start from New.
package app
