package factory

import "errors"

var (
	// ErrConfiguration is fatal at startup: an invalid plant file or an
	// unreachable telemetry sink.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidCommand marks an unknown or malformed ingress command. The
	// command is logged and ignored.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrInvalidStrategy marks a strategy reference that matches no catalog
	// entry. The command is logged and ignored.
	ErrInvalidStrategy = errors.New("invalid strategy reference")
)
