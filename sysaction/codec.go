package sysaction

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSysAction is returned when tx.Data does not carry a well-formed
// envelope for a known action kind.
var ErrInvalidSysAction = errors.New("invalid system action payload")

// Decode parses tx.Data into a SysAction envelope. Beyond JSON shape, the
// action kind must belong to the protocol vocabulary: unknown kinds are
// rejected here rather than falling through dispatch.
func Decode(data []byte) (*SysAction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidSysAction)
	}
	sa := new(SysAction)
	if err := json.Unmarshal(data, sa); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSysAction, err)
	}
	switch {
	case sa.Action == "":
		return nil, fmt.Errorf("%w: missing action field", ErrInvalidSysAction)
	case !sa.Action.Valid():
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidSysAction, sa.Action)
	}
	return sa, nil
}

// DecodePayload unmarshals the envelope payload into dst. A missing payload
// leaves dst untouched; handlers validate field presence themselves.
func DecodePayload(sa *SysAction, dst interface{}) error {
	if len(sa.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(sa.Payload, dst)
}

// Encode renders the envelope into tx.Data form. Kinds outside the protocol
// vocabulary fail here, before the transaction is ever submitted.
func Encode(sa *SysAction) ([]byte, error) {
	if !sa.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidSysAction, sa.Action)
	}
	return json.Marshal(sa)
}

// MakeSysAction marshals payload and wraps it in an encoded envelope for the
// given kind.
func MakeSysAction(kind ActionKind, payload interface{}) ([]byte, error) {
	sa := &SysAction{Action: kind}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		sa.Payload = raw
	}
	return Encode(sa)
}
