package session

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by every outbound command issued while no
// socket is open. Callers log and abandon the step; it is never fatal.
var ErrNotConnected = errors.New("session: not connected")

// UnknownMessageError marks an inbound envelope whose msg code has no
// mapping. The session stays up.
type UnknownMessageError struct {
	Code int
}

func (e *UnknownMessageError) Error() string {
	return fmt.Sprintf("session: unknown message code %d", e.Code)
}

// GatewayError is a server-reported failure attached to an inbound
// response.
type GatewayError struct {
	Code int
	Msg  string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("session: gateway error %d: %s", e.Code, e.Msg)
}

// TransportError wraps a socket-level failure. It ends the session; the
// scheduler owns reconnection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("session: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
