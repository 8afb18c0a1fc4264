// Package metrics exports command executor telemetry in the Prometheus format.
//
// Collector implements executor.Observer and is registered on a dedicated
// registry. Exporter serves that registry on /metrics when metrics are enabled.
package metrics
