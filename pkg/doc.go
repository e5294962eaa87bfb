// Package pkg provides shared utilities for the pmausb control-transfer
// engine and its platform adapters.
//
// This package contains:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel and typed errors for packet-memory and protocol failures
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with a component tag:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentEngine, "address applied", "address", 5)
//
// # Errors
//
// Typed errors match their sentinel with [errors.Is]:
//
//	var unsupported *pkg.UnsupportedRequestError
//	if errors.As(err, &unsupported) {
//	    // unsupported.RequestType, unsupported.Request
//	}
//	if errors.Is(err, pkg.ErrOutOfBounds) {
//	    // configuration defect
//	}
package pkg
