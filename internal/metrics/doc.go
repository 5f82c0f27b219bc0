// Package metrics records check-run observability data.
//
// Components receive a Recorder and default to NoopRecorder, so callers never
// nil-check. A PrometheusRecorder is swapped in when a metrics file or a
// metrics listener is requested:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	runner := check.NewRunner(logger, check.WithRecorder(rec))
//
// After a run the registry can be written in the node_exporter textfile
// format with WriteTextfile, or served with HTTPHandler in watch mode.
package metrics
