// Package observability builds the structured zap logger used across
// the gateway. Log level and format come from the observability section
// of the configuration.
package observability
