//
// framing.go
//
// Copyright (c) 2019-2021 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"github.com/cockroachdb/errors"

	"github.com/yaogc/engine/p2p"
)

// sendMessage frames and sends a typed message: one type byte
// followed by the length-prefixed payload, capped at MaxMessageSize.
func sendMessage(conn *p2p.Conn, typ MsgType, payload []byte) error {
	if len(payload) > MaxMessageSize {
		return &ProtocolError{Msg: "payload exceeds MAX_MESSAGE_SIZE"}
	}
	if err := conn.SendByte(byte(typ)); err != nil {
		return wrapTransport("send", err)
	}
	if err := conn.SendData(payload); err != nil {
		return wrapTransport("send", err)
	}
	return wrapTransport("flush", conn.Flush())
}

// receiveMessage reads one framed message, rejecting payloads above
// MaxMessageSize. The size check runs after the payload has been read
// in full.
func receiveMessage(conn *p2p.Conn) (MsgType, []byte, error) {
	b, err := conn.ReceiveByte()
	if err != nil {
		return 0, nil, wrapTransport("receive", err)
	}
	payload, err := conn.ReceiveData()
	if err != nil {
		return 0, nil, wrapTransport("receive", err)
	}
	if len(payload) > MaxMessageSize {
		return 0, nil, &ProtocolError{Msg: "payload exceeds MAX_MESSAGE_SIZE"}
	}
	return MsgType(b), payload, nil
}

// expectMessage receives a message and verifies its type matches want.
// An ERROR message from the peer is returned as a plain error carrying
// its payload text; any other unexpected type yields a ProtocolError.
func expectMessage(conn *p2p.Conn, want MsgType) ([]byte, error) {
	typ, payload, err := receiveMessage(conn)
	if err != nil {
		return nil, err
	}
	if typ == MsgError {
		return nil, errors.Newf("peer reported error: %s", string(payload))
	}
	if typ != want {
		return nil, &ProtocolError{
			Msg: "expected " + want.String() + ", got " + typ.String(),
		}
	}
	return payload, nil
}

// sendError sends an ERROR message best-effort; failures are ignored
// since the session is already terminating.
func sendError(conn *p2p.Conn, msg string) {
	_ = sendMessage(conn, MsgError, []byte(msg))
}
