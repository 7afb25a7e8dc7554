//
// evaluate.go
//
// Copyright (c) 2019-2021 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/yaogc/engine/ot"
)

// EvalStats records counters from one Evaluate call, rendered through
// Timing/tabulate by callers that want a profiling report.
type EvalStats struct {
	GatesEvaluated int
	TrialDecrypts  int
	SuccessfulRows int
}

// Evaluate walks gc's gates in topological (file) order, recovering
// exactly one output wire label per gate, given the caller-supplied
// labels for every input wire (in the order gc.Circuit.InputWires()
// enumerates them). With point-and-permute it decrypts the one row
// the permutation bits select; otherwise it trial-decrypts rows in
// order until one passes the padding check.
func Evaluate(gc *GarbledCircuit, inputLabels []ot.Label) (
	[]ot.Label, *EvalStats, error) {

	c := gc.Circuit
	if len(inputLabels) != c.NumInputs() {
		return nil, nil, &EvaluateError{"input label count mismatch"}
	}

	labels := make([]ot.Label, c.NumWires)
	copy(labels, inputLabels)

	stats := &EvalStats{}

	for i, g := range c.Gates {
		row, err := evaluateGate(g, i, labels, gc.Gates[i], gc.Options, stats)
		if err != nil {
			return nil, stats, err
		}
		labels[g.Output] = row
		stats.GatesEvaluated++
	}

	out := c.OutputWires()
	result := make([]ot.Label, len(out))
	for i, w := range out {
		result[i] = labels[w]
	}
	return result, stats, nil
}

func evaluateGate(g Gate, id int, labels []ot.Label, gg GarbledGate,
	opts GarbleOptions, stats *EvalStats) (ot.Label, error) {

	k1 := labels[g.Input0]

	if g.Op.Unary() {
		if opts.PointAndPermute {
			idx := boolIndex(k1.Perm())
			stats.TrialDecrypts++
			label, err := ot.DecryptLabelUnary(gg[idx], k1, uint32(id))
			if err != nil {
				return ot.Label{}, &PandpFailure{id}
			}
			stats.SuccessfulRows++
			return label, nil
		}
		for _, idx := range []int{0, 1, 2, 3} {
			stats.TrialDecrypts++
			label, err := ot.DecryptLabelUnary(gg[idx], k1, uint32(id))
			if err == nil {
				stats.SuccessfulRows++
				return label, nil
			}
		}
		return ot.Label{}, &EvaluateError{"no row decrypted"}
	}

	k2 := labels[g.Input1]

	if opts.PointAndPermute {
		idx := permIndex(k1.Perm(), k2.Perm())
		stats.TrialDecrypts++
		label, err := ot.DecryptLabel(gg[idx], k1, k2, uint32(id))
		if err != nil {
			return ot.Label{}, &PandpFailure{id}
		}
		stats.SuccessfulRows++
		return label, nil
	}

	for _, idx := range []int{0, 1, 2, 3} {
		stats.TrialDecrypts++
		label, err := ot.DecryptLabel(gg[idx], k1, k2, uint32(id))
		if err == nil {
			stats.SuccessfulRows++
			return label, nil
		}
	}
	return ot.Label{}, &EvaluateError{"no row decrypted"}
}
