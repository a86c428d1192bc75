// Package metrics provides operational metrics collection.
//
// Metrics are recorded through the OpenTelemetry metric API and exported in
// Prometheus format from a process-local registry, so each process (and each
// test) owns an isolated set of collectors.
//
// # Metric Categories
//
//   - Decisions: membership policy outcomes by operation and reason
//   - Latency: HTTP request duration histograms by route pattern
//   - Usage: HTTP request counts by route pattern and status code
package metrics
