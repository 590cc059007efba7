package client

import (
	"encoding/json"
	"fmt"
)

// TransportError indicates the request could not be completed or its body
// could not be understood. It never carries a server-reported domain error.
type TransportError struct {
	Op     string
	Status int // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrInvalidPayload indicates a response body did not match its expected
// shape.
type ErrInvalidPayload struct {
	Schema string
	Body   json.RawMessage
	Err    error
}

func (e *ErrInvalidPayload) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Schema, e.Err)
}

func (e *ErrInvalidPayload) Unwrap() error { return e.Err }
