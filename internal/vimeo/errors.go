// Package vimeo implements the Vimeo advanced API client: the OAuth 1.0a
// authorization handshake, generic signed method calls with response
// caching, and the chunked upload protocol.
package vimeo

import (
	"errors"
	"fmt"
)

// Sentinel errors for argument-level failures.
// Use errors.Is to check.
var (
	// ErrNoToken means an operation that signs with the active token was
	// invoked before any token was installed.
	ErrNoToken = errors.New("vimeo: no active token")

	// ErrInvalidPermission means the permission was not read, write, or delete.
	ErrInvalidPermission = errors.New("vimeo: invalid permission")
)

// APIError is a failure reported by the remote API's response envelope.
// It is never produced for network faults — those surface as transport
// errors — and it is never retried.
type APIError struct {
	Method string
	Code   string
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vimeo: API error calling %s: %s %s", e.Method, e.Code, e.Msg)
}

// ProtocolError means the remote returned a body that could not be parsed
// as the expected envelope. Distinct from APIError: the remote did not
// report a failure, it spoke something else entirely.
type ProtocolError struct {
	Method string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("vimeo: malformed response for %s: %v", e.Method, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// VerificationError means the bytes the upload endpoint acknowledged do
// not add up to the file size. The upload is aborted; no completion call
// is made.
type VerificationError struct {
	TicketID string
	Expected int64
	Received int64
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("vimeo: upload ticket %s verification failed: uploaded %d bytes, server received %d",
		e.TicketID, e.Expected, e.Received)
}
