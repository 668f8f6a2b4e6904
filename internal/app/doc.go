// Package app contains the core application logic. It wires the configured
// logger, node registry, robot session and engine together and exposes the
// operations the command line offers, decoupled from any specific entrypoint.
package app
