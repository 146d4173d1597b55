// Package google implements transcription.Provider on Google Cloud
// Speech-to-Text v1 over gRPC.
//
// Clips up to Config.SyncLimit (55s by default) use Recognize; longer clips
// use LongRunningRecognize and wait for the operation. Calls pass through a
// retry and circuit breaker policy; only Unavailable, DeadlineExceeded,
// ResourceExhausted, Aborted and Internal are retried.
//
// Failures are TRANSCRIPTION_FAILED errors whose "reason" detail is one of
// auth, quota, network, bad_request or circuit_open.
package google
