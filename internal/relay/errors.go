package relay

import "errors"

var (
	// ErrCredentialStoreUnavailable is returned by Start when the first
	// sweep cannot list identities. It is the only fatal relay error.
	ErrCredentialStoreUnavailable = errors.New("relay: credential store unavailable")

	// ErrUnknownChannel is returned for a well-formed topic on a channel the
	// relay does not handle.
	ErrUnknownChannel = errors.New("relay: unknown channel")

	// ErrInvalidMotion is returned when a pir payload is not an integer.
	ErrInvalidMotion = errors.New("relay: invalid motion value")

	// ErrClosed is returned for messages that arrive after Close.
	ErrClosed = errors.New("relay: closed")

	// ErrMissingDependency is returned by New when a required option is nil.
	ErrMissingDependency = errors.New("relay: missing dependency")
)
