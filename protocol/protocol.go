//
// protocol.go
//
// Copyright (c) 2019-2021 Markku Rossi
//
// All rights reserved.
//

// Package protocol implements the two-party Garbler/Evaluator session:
// a linear handshake, circuit transfer, garbler input label transfer,
// an oblivious transfer round for the evaluator's inputs, and a result
// exchange, framed as typed length-prefixed messages over a p2p.Conn.
package protocol

import (
	"github.com/cockroachdb/errors"
)

// MaxMessageSize caps a single framed message's payload.
const MaxMessageSize = 65536

// MsgType identifies a framed protocol message.
type MsgType byte

// Message types exchanged between Garbler and Evaluator.
const (
	MsgHello MsgType = iota
	MsgCircuit
	MsgInputLabels
	MsgOTRequest
	MsgOTResponse
	MsgResult
	MsgError
	MsgGoodbye
)

func (t MsgType) String() string {
	switch t {
	case MsgHello:
		return "HELLO"
	case MsgCircuit:
		return "CIRCUIT"
	case MsgInputLabels:
		return "INPUT_LABELS"
	case MsgOTRequest:
		return "OT_REQUEST"
	case MsgOTResponse:
		return "OT_RESPONSE"
	case MsgResult:
		return "RESULT"
	case MsgError:
		return "ERROR"
	case MsgGoodbye:
		return "GOODBYE"
	default:
		return "UNKNOWN"
	}
}

// State names the protocol state machine's states.
type State int

// Protocol states, traversed in this order by both parties.
const (
	StateInit State = iota
	StateHandshake
	StateCircuitTx
	StateGarblerLabelsTx
	StateEvalOT
	StateResultTx
	StateGoodbye
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateHandshake:
		return "HANDSHAKE"
	case StateCircuitTx:
		return "CIRCUIT_TX"
	case StateGarblerLabelsTx:
		return "GARBLER_LABELS_TX"
	case StateEvalOT:
		return "EVAL_OT"
	case StateResultTx:
		return "RESULT_TX"
	case StateGoodbye:
		return "GOODBYE"
	case StateDone:
		return "DONE"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ProtocolError reports a violation of the protocol's message
// sequencing or framing rules.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Msg
}

// TransportError wraps a failure of the underlying transport.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "transport error during " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// OTError wraps a failure surfaced by the OT subprotocol, kept opaque
// per the OT interface's contract.
type OTError struct {
	Err error
}

func (e *OTError) Error() string {
	return "OT error: " + e.Err.Error()
}

func (e *OTError) Unwrap() error {
	return e.Err
}

func wrapTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(&TransportError{Op: op, Err: err}, "protocol %s", op)
}
