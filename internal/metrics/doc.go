// Package metrics records build metrics behind the Recorder interface.
//
// Components default to NoopRecorder. The CLI swaps in a PrometheusRecorder
// backed by a private registry when `--metrics-file` is given and dumps the
// registry with WriteTextfile once the command finishes, so the file can be
// picked up by the node-exporter textfile collector.
package metrics
