// Package integration provides integration tests for the envsync HTTP API.
// They run the full server against a PostgreSQL container and drive diffs
// and publishes over HTTP.
package integration
