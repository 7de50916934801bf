// Package server provides the HTTP API for the Callisto decision runtime:
// evaluation, policy administration, subject and requester management,
// health, and metrics.
package server
