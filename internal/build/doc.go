// Package build provides the canonical build entry point for sitebuilder.
//
// Every execution path (the build command, the preview watcher and the
// scheduled rebuild) routes through BuildService. The service stamps a build
// id, runs the page pipeline, records metrics, appends the build to the
// history store and publishes the final report.
package build
