// Package metrics records stage, task and dev server metrics for assetflow.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	runner := pipeline.NewRunner(logger, metrics.NoopRecorder{})
//
// The dev server swaps in a PrometheusRecorder and exposes its registry on
// /metrics through HTTPHandler.
package metrics
