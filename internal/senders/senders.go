// Package senders holds the per-channel delivery implementations. Every
// sender is a small struct constructed in main and injected into the
// dispatch service; none of them keeps process-wide state.
package senders

import "errors"

// Failure taxonomy. Senders wrap the transport error with one of these so the
// dispatch service can match with errors.Is without knowing the provider.
var (
	ErrTimeout          = errors.New("send timed out")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrUnauthenticated  = errors.New("channel credentials rejected")
	ErrProvider         = errors.New("provider error")
)
