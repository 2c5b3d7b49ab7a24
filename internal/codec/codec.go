// Package codec implements the JSON envelope spoken by the websocket
// bridge: outbound commands `{"op": ..., "data": {...}}` and inbound
// notifications `{"msg": <code>, "err": {...}, "info": {...}}` plus the
// one-off `{"status": "ready"}` handshake.
package codec

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire message in either direction. Exactly one of Op
// (outbound) or Msg/Status (inbound) is meaningful.
type Envelope struct {
	Op     string          `json:"op,omitempty"`
	Msg    *int            `json:"msg,omitempty"`
	Status string          `json:"status,omitempty"`
	Err    *ErrInfo        `json:"err,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Info   json.RawMessage `json:"info,omitempty"`
}

// ErrInfo is the gateway-reported error block attached to inbound
// responses. Code 0 means success.
type ErrInfo struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Ready reports whether the envelope is the initial handshake signal
// sent by the bridge once the client socket is accepted.
func (e *Envelope) Ready() bool {
	return e.Msg == nil && e.Status == "ready"
}

// DecodeError wraps a JSON parse failure on an inbound frame. Callers
// treat it as a per-message failure: log and discard, never fatal.
type DecodeError struct {
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode %q: %v", truncate(e.Raw, 128), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// Decode parses a raw inbound frame into an Envelope.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Raw: raw, Err: err}
	}
	return &env, nil
}

// Encode serializes an outbound command. A nil payload encodes as an
// empty data object, which is what the bridge expects for parameterless
// ops.
func Encode(op string, data any) ([]byte, error) {
	if data == nil {
		data = struct{}{}
	}
	b, err := json.Marshal(struct {
		Op   string `json:"op"`
		Data any    `json:"data"`
	}{Op: op, Data: data})
	if err != nil {
		return nil, fmt.Errorf("codec: encode op %q: %w", op, err)
	}
	return b, nil
}

// Payload decodes the info block of an inbound envelope into the typed
// record for its message code. Missing fields are left zero-valued;
// only malformed JSON is an error.
func Payload[T any](e *Envelope) (T, error) {
	var v T
	if len(e.Info) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(e.Info, &v); err != nil {
		return v, &DecodeError{Raw: e.Info, Err: err}
	}
	return v, nil
}
