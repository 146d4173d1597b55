// Package resilience provides retry, circuit breaker, rate limiting and
// bulkhead primitives used around the Telegram and Speech-to-Text calls and
// the encoder subprocess.
package resilience
