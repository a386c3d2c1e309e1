// Package metrics provides build and dev-server metrics for assetbuilder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	runner := taskgraph.NewRunner(metrics.NoopRecorder{})
//
// When the dev server is configured with `server.metrics: true` the build
// command swaps in a PrometheusRecorder and mounts HTTPHandler on the
// configured path.
package metrics
