// Package metrics provides build metrics for the site pipeline.
//
// Components receive a Recorder through dependency injection. The default is
// NoopRecorder; the serve command swaps in a PrometheusRecorder and exposes it
// on /metrics:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	svc := build.NewBuildService().WithRecorder(recorder)
package metrics
