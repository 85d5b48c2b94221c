// Package telemetry provides hooks that export run and node activity as
// Prometheus metrics and OpenTelemetry spans.
package telemetry
