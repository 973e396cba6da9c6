// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and returns the parsed streams and container
// format. Prober reduces that to the handful of facts a timeline material
// records about an asset: pixel dimensions of the first visual stream and the
// duration in microseconds.
package ffprobe
