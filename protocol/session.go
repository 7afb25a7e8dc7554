//
// session.go
//
// Copyright (c) 2019-2021 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"io"

	"github.com/google/uuid"

	"github.com/yaogc/engine/circuit"
	"github.com/yaogc/engine/env"
	"github.com/yaogc/engine/ot"
	"github.com/yaogc/engine/p2p"
)

// Session carries the state shared by both the Garbler and Evaluator
// drivers: the transport, the party's declared name, and the running
// protocol state (used only for diagnostics; the functions below
// enforce sequencing directly).
type Session struct {
	ID     uuid.UUID
	Conn   *p2p.Conn
	Name   string
	State  State
	Env    *env.Config
	Timing *circuit.Timing
}

// NewSession creates a session over conn with a fresh session id. A
// Timing is attached so callers can print a per-phase profiling report
// (see circuit.Timing.Print) once the session finishes.
func NewSession(conn *p2p.Conn, name string, cfg *env.Config) *Session {
	if cfg == nil {
		cfg = &env.Config{}
	}
	return &Session{
		ID:     uuid.New(),
		Conn:   conn,
		Name:   name,
		State:  StateInit,
		Env:    cfg,
		Timing: circuit.NewTiming(),
	}
}

func (s *Session) mark(label string) {
	s.Timing.Sample(label, nil)
}

func (s *Session) fail(err error) error {
	s.State = StateError
	return err
}

func (s *Session) handshake(peerRole string) error {
	s.State = StateHandshake
	if err := sendMessage(s.Conn, MsgHello, []byte(s.Name)); err != nil {
		return s.fail(err)
	}
	payload, err := expectMessage(s.Conn, MsgHello)
	if err != nil {
		return s.fail(err)
	}
	_ = payload // peer name; logged by callers that want it
	return nil
}

// RunGarbler drives the Garbler side of a session: garble circ,
// exchange it and the Garbler's own input labels with the Evaluator,
// run the OT subprotocol for the Evaluator's inputs, then receive and
// decode the result. garblerInput holds one bool per Garbler input
// wire (the circuit's input_partition[0] share); pandp selects
// point-and-permute garbling.
func RunGarbler(s *Session, circ *circuit.Circuit, garblerInput []bool,
	pandp bool) ([]bool, error) {

	if err := s.handshake("evaluator"); err != nil {
		return nil, err
	}
	s.mark("handshake")

	p0 := 0
	if len(circ.InputPartition) > 0 {
		p0 = circ.InputPartition[0]
	}
	if len(garblerInput) != p0 {
		return nil, s.fail(&ProtocolError{Msg: "garbler input count mismatch"})
	}

	s.State = StateCircuitTx
	gc, err := circuit.Garble(circ, s.Env.GetRandom(),
		circuit.GarbleOptions{PointAndPermute: pandp})
	if err != nil {
		return nil, s.fail(err)
	}

	var buf []byte
	{
		w := &byteWriter{}
		if err := circuit.Marshal(w, gc); err != nil {
			return nil, s.fail(err)
		}
		buf = w.buf
	}
	if err := sendMessage(s.Conn, MsgCircuit, buf); err != nil {
		return nil, s.fail(err)
	}
	s.mark("garble+send circuit")

	if p0 > 0 {
		s.State = StateGarblerLabelsTx
		ownLabels, err := circuit.EncodeInputs(gc, 0, garblerInput)
		if err != nil {
			return nil, s.fail(err)
		}
		payload := make([]byte, 0, p0*16)
		for _, label := range ownLabels {
			var data ot.LabelData
			label.GetData(&data)
			payload = append(payload, data[:]...)
		}
		if err := sendMessage(s.Conn, MsgInputLabels, payload); err != nil {
			return nil, s.fail(err)
		}
		s.mark("garbler input labels")
	}

	numEvalInputs := circ.NumInputs() - p0
	if numEvalInputs > 0 {
		s.State = StateEvalOT
		pairs := make([]ot.Wire, numEvalInputs)
		for i := 0; i < numEvalInputs; i++ {
			l0, l1 := circuit.OTPairsFor(gc, circuit.Wire(p0+i))
			pairs[i] = ot.Wire{L0: l0, L1: l1}
		}
		if numEvalInputs >= ot.K {
			// Enough wires to amortize the K base OTs the IKNP
			// extension needs: its sender plays the base OT's
			// receiver role (see ot.NewIKNPSender).
			base := ot.NewCO()
			if err := base.InitReceiver(s.Conn); err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
			sender, err := ot.NewIKNPSender(base, s.Conn, s.Env.GetRandom(), nil)
			if err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
			if err := sender.SendWires(pairs); err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
		} else {
			co := ot.NewCO()
			if err := co.InitSender(s.Conn); err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
			if err := co.Send(pairs); err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
		}
		s.mark("evaluator OT")
	}

	s.State = StateResultTx
	resultPayload, err := expectMessage(s.Conn, MsgResult)
	if err != nil {
		return nil, s.fail(err)
	}
	outputLabels, err := decodeLabels(resultPayload)
	if err != nil {
		return nil, s.fail(err)
	}
	if len(outputLabels) != len(gc.Circuit.OutputWires()) {
		return nil, s.fail(&ProtocolError{Msg: "result label count mismatch"})
	}

	bits := circuit.DecodeOutputs(gc, outputLabels)
	s.mark("result+decode")

	s.State = StateGoodbye
	if err := sendMessage(s.Conn, MsgGoodbye, nil); err != nil {
		return nil, s.fail(err)
	}
	s.State = StateDone
	return bits, nil
}

// RunEvaluator drives the Evaluator side of a session: receive the
// garbled circuit and the Garbler's input labels, run the OT
// subprotocol to obtain its own input labels, evaluate, and send the
// result. evalInput holds one bool per Evaluator input wire.
func RunEvaluator(s *Session, evalInput []bool) ([]ot.Label, error) {
	if err := s.handshake("garbler"); err != nil {
		return nil, err
	}
	s.mark("handshake")

	s.State = StateCircuitTx
	circPayload, err := expectMessage(s.Conn, MsgCircuit)
	if err != nil {
		return nil, s.fail(err)
	}
	gc, err := circuit.Unmarshal(&byteReader{buf: circPayload})
	if err != nil {
		return nil, s.fail(err)
	}
	c := gc.Circuit
	s.mark("receive circuit")

	p0 := 0
	if len(c.InputPartition) > 0 {
		p0 = c.InputPartition[0]
	}
	numEvalInputs := c.NumInputs() - p0
	if numEvalInputs != len(evalInput) {
		return nil, s.fail(&ProtocolError{Msg: "evaluator input count mismatch"})
	}

	labels := make([]ot.Label, c.NumInputs())

	if p0 > 0 {
		s.State = StateGarblerLabelsTx
		payload, err := expectMessage(s.Conn, MsgInputLabels)
		if err != nil {
			return nil, s.fail(err)
		}
		garblerLabels, err := decodeLabels(payload)
		if err != nil {
			return nil, s.fail(err)
		}
		if len(garblerLabels) != p0 {
			return nil, s.fail(&ProtocolError{Msg: "input label count mismatch"})
		}
		copy(labels[:p0], garblerLabels)
		s.mark("garbler input labels")
	}

	if numEvalInputs > 0 {
		s.State = StateEvalOT
		received := make([]ot.Label, numEvalInputs)
		if numEvalInputs >= ot.K {
			// Mirror of the Garbler's extension branch above: this
			// side plays the base OT's sender role (see
			// ot.NewIKNPReceiver).
			base := ot.NewCO()
			if err := base.InitSender(s.Conn); err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
			receiver, err := ot.NewIKNPReceiver(base, s.Conn, s.Env.GetRandom())
			if err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
			if err := receiver.ReceiveWires(evalInput, received); err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
		} else {
			co := ot.NewCO()
			if err := co.InitReceiver(s.Conn); err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
			if err := co.Receive(evalInput, received); err != nil {
				return nil, s.fail(&OTError{Err: err})
			}
		}
		copy(labels[p0:], received)
		s.mark("evaluator OT")
	}

	outputLabels, _, err := circuit.Evaluate(gc, labels)
	if err != nil {
		return nil, s.fail(err)
	}
	s.mark("evaluate")

	s.State = StateResultTx
	payload := make([]byte, 0, len(outputLabels)*16)
	for _, l := range outputLabels {
		var data ot.LabelData
		l.GetData(&data)
		payload = append(payload, data[:]...)
	}
	if err := sendMessage(s.Conn, MsgResult, payload); err != nil {
		return nil, s.fail(err)
	}

	s.State = StateGoodbye
	if _, err := expectMessage(s.Conn, MsgGoodbye); err != nil {
		return nil, s.fail(err)
	}
	s.State = StateDone
	return outputLabels, nil
}

func decodeLabels(payload []byte) ([]ot.Label, error) {
	if len(payload)%16 != 0 {
		return nil, &ProtocolError{Msg: "label payload not a multiple of 16"}
	}
	n := len(payload) / 16
	labels := make([]ot.Label, n)
	for i := 0; i < n; i++ {
		labels[i] = ot.LabelFromData(payload[i*16 : i*16+16])
	}
	return labels, nil
}

type byteWriter struct {
	buf []byte
}

func (w *byteWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.buf) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.pos:])
	r.pos += n
	return n, nil
}
