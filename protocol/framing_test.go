//
// framing_test.go
//
// Copyright (c) 2019-2021 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"testing"

	"github.com/yaogc/engine/p2p"
)

func TestSendMessageRejectsOversizedPayload(t *testing.T) {
	c, _ := p2p.Pipe()
	err := sendMessage(c, MsgCircuit, make([]byte, MaxMessageSize+1))
	if err == nil {
		t.Fatal("expected an error for an oversized payload")
	}
	if _, ok := err.(*ProtocolError); !ok {
		t.Errorf("expected *ProtocolError, got %T: %v", err, err)
	}
}

func TestSendReceiveMessageRoundTrip(t *testing.T) {
	cw, cr := p2p.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- sendMessage(cw, MsgHello, []byte("hello"))
	}()

	typ, payload, err := receiveMessage(cr)
	if err != nil {
		t.Fatalf("receiveMessage: %v", err)
	}
	if typ != MsgHello {
		t.Errorf("type: got %v, want %v", typ, MsgHello)
	}
	if string(payload) != "hello" {
		t.Errorf("payload: got %q, want %q", payload, "hello")
	}
	if err := <-done; err != nil {
		t.Fatalf("sendMessage: %v", err)
	}
}

func TestExpectMessageSurfacesPeerError(t *testing.T) {
	cw, cr := p2p.Pipe()
	done := make(chan error, 1)
	go func() {
		sendError(cw, "something went wrong")
		done <- nil
	}()

	_, err := expectMessage(cr, MsgCircuit)
	if err == nil {
		t.Fatal("expected an error when the peer reports MsgError")
	}
	<-done
}

func TestExpectMessageRejectsWrongType(t *testing.T) {
	cw, cr := p2p.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- sendMessage(cw, MsgHello, nil)
	}()

	_, err := expectMessage(cr, MsgCircuit)
	if err == nil {
		t.Fatal("expected a ProtocolError for an unexpected message type")
	}
	if _, ok := err.(*ProtocolError); !ok {
		t.Errorf("expected *ProtocolError, got %T: %v", err, err)
	}
	<-done
}
