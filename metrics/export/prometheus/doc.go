// Package prometheus provides Prometheus collectors for authsessions metrics.
//
// [NewPrometheusExporter] accepts an [authsessions.Engine] and exposes an [http.Handler]
// that renders all authsessions counters and histograms in Prometheus text exposition
// format. Counter names are prefixed authsessions_*_total; the single histogram is
// authsessions_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
