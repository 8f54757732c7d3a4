// Package app contains the core application logic. It wires the logger, the
// template registry and the configuration loader together and runs builds,
// decoupled from any specific entrypoint like a CLI.
package app
