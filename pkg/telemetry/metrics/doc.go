// Package metrics provides prometheus metrics for the decision runtime.
//
// All metrics are registered on an injected *prometheus.Registry so that
// multiple runtime instances (e.g. under test) never share collector
// state. Metric names follow <namespace>_<subsystem>_<name> with both
// prefix components taken from configuration.
package metrics
