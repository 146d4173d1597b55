// Package errors provides the structured error type shared by the voice
// pipeline: a machine-readable code per failing stage, a retryable flag,
// free-form details and the wrapped cause.
package errors
