//
// codec.go
//
// Copyright (c) 2019-2021 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/yaogc/engine/ot"
)

// EncodeInputs maps a party's plaintext input bits onto the wire
// labels gc assigned to the wires starting at wire index base. It is
// used by the Garbler for its own input share; the Evaluator's share
// is never encoded locally, it is obtained through oblivious transfer.
func EncodeInputs(gc *GarbledCircuit, base int, bits []bool) ([]ot.Label, error) {
	labels := make([]ot.Label, len(bits))
	for i, bit := range bits {
		w := base + i
		if w < 0 || w >= len(gc.Inputs) {
			return nil, &UnknownWire{Wire: Wire(w)}
		}
		labels[i] = LabelForBit(gc.Inputs[w], bit)
	}
	return labels, nil
}

// OTPairsFor returns the (label0, label1) pair for wire w, in
// canonical (bit, not permutation) order, for use as an OT sender's
// message pair.
func OTPairsFor(gc *GarbledCircuit, w Wire) (ot.Label, ot.Label) {
	wire := gc.Inputs[w]
	return wire.L0, wire.L1
}

// DecodeOutputs resolves a slice of received output labels into bits
// by comparing each against the stored label_for_0 for its wire: an
// exact match decodes to false, anything else decodes to true. It
// never fails by itself, matching the protocol's correctness
// invariant that a label reaching this point is always one of the two
// valid labels for its wire.
func DecodeOutputs(gc *GarbledCircuit, labels []ot.Label) []bool {
	out := gc.Circuit.OutputWires()
	bits := make([]bool, len(labels))
	for i, w := range labels {
		if i >= len(out) {
			break
		}
		zero := gc.Outputs[out[i]].L0
		bits[i] = !w.Equal(zero)
	}
	return bits
}

// DecodeOutputsStrict is DecodeOutputs' strict counterpart: it
// verifies each label matches one of the wire's two known labels and
// reports a StrictDecodeError otherwise. Callers that want early
// detection of transport corruption or a garbling/evaluation
// mismatch, rather than silent best-effort decoding, should use this
// instead of DecodeOutputs.
func DecodeOutputsStrict(gc *GarbledCircuit, labels []ot.Label) ([]bool, error) {
	out := gc.Circuit.OutputWires()
	if len(labels) != len(out) {
		return nil, &EvaluateError{"output label count mismatch"}
	}
	bits := make([]bool, len(labels))
	for i, w := range out {
		bit, err := BitFromLabel(gc.Outputs[w], labels[i])
		if err != nil {
			return nil, &StrictDecodeError{Wire: w, Err: err}
		}
		bits[i] = bit
	}
	return bits, nil
}

// StrictDecodeError reports that DecodeOutputsStrict found a result
// label matching neither of a wire's two known labels.
type StrictDecodeError struct {
	Wire Wire
	Err  error
}

func (e *StrictDecodeError) Error() string {
	return "strict decode failed at " + e.Wire.String() + ": " + e.Err.Error()
}

func (e *StrictDecodeError) Unwrap() error {
	return e.Err
}
