// Package process runs external binaries such as ffmpeg with captured
// output, process-group termination on context cancellation, and optional
// concurrency and resilience limits.
package process
