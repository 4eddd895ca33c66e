// Package prometheus provides Prometheus collectors for flow metrics.
//
// [NewPrometheusExporter] accepts a [flowernursery.Controller] and exposes an
// [http.Handler] that renders all counters and histograms in Prometheus text
// exposition format. Counter names are prefixed nursery_*_total; the single
// histogram is nursery_submit_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate controller state.
package prometheus
