// Package bootstrap wires configuration, logging and lifecycle-managed
// components into a runnable service.
//
// NewApp validates the config and fails before anything starts, so a
// missing token or credential file ends the process before the receive
// loop. Run starts components in registration order, blocks until
// SIGINT/SIGTERM, and stops them in reverse.
package bootstrap
