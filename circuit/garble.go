//
// garble.go
//
// Copyright (c) 2019 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"io"

	"github.com/yaogc/engine/ot"
)

// GarbleOptions controls the garbling (and matching evaluation) mode.
type GarbleOptions struct {
	// PointAndPermute enables the point-and-permute row-selection
	// optimization. When false, a gate's four rows are garbled in a
	// uniformly random order and the evaluator must trial-decrypt.
	PointAndPermute bool
}

// GarbledGate holds a gate's four ciphertext rows, each 32 bytes (a
// 16 byte label plus a 16 byte zero-padding verification tag).
type GarbledGate [4][]byte

// GarbledCircuit bundles a Circuit with its garbled gate tables, the
// label pair for every input wire, and the output decoding table.
type GarbledCircuit struct {
	Circuit *Circuit
	Options GarbleOptions
	Gates   []GarbledGate
	Inputs  []ot.Wire // indexed by input wire
	Outputs map[Wire]ot.Wire
}

// Garble converts a plain circuit into a garbled circuit, sampling two
// independent random labels per wire and one encrypted truth-table row
// per (wire pair, gate) combination. r is the session's entropy
// source (env.Config.GetRandom()).
func Garble(c *Circuit, r io.Reader, opts GarbleOptions) (*GarbledCircuit, error) {
	wires := make([]ot.Wire, c.NumWires)
	for w := 0; w < c.NumWires; w++ {
		l0, err := ot.NewLabel(r)
		if err != nil {
			return nil, err
		}
		l1, err := ot.NewLabel(r)
		if err != nil {
			return nil, err
		}
		if opts.PointAndPermute {
			l0.SetPerm(false)
			l1.SetPerm(true)
		}
		wires[w] = ot.Wire{L0: l0, L1: l1}
	}

	gates := make([]GarbledGate, len(c.Gates))
	for i, g := range c.Gates {
		gg, err := garbleGate(g, i, wires, opts, r)
		if err != nil {
			return nil, err
		}
		gates[i] = gg
	}

	outputs := make(map[Wire]ot.Wire)
	for _, w := range c.OutputWires() {
		outputs[w] = wires[w]
	}

	numInputs := c.NumInputs()
	inputs := make([]ot.Wire, numInputs)
	copy(inputs, wires[:numInputs])

	return &GarbledCircuit{
		Circuit: c,
		Options: opts,
		Gates:   gates,
		Inputs:  inputs,
		Outputs: outputs,
	}, nil
}

func garbleGate(g Gate, id int, wires []ot.Wire, opts GarbleOptions,
	r io.Reader) (GarbledGate, error) {

	if int(g.Output) >= len(wires) || int(g.Input0) >= len(wires) {
		return GarbledGate{}, &GarbleError{"gate references unknown wire"}
	}

	out := wires[g.Output]
	a := wires[g.Input0]

	var gg GarbledGate

	if g.Op.Unary() {
		rows := [2][]byte{
			ot.EncryptLabelUnary(LabelForBit(out, g.Op.Eval(false, false)),
				a.L0, uint32(id)),
			ot.EncryptLabelUnary(LabelForBit(out, g.Op.Eval(true, false)),
				a.L1, uint32(id)),
		}
		if opts.PointAndPermute {
			gg[boolIndex(a.L0.Perm())] = rows[0]
			gg[boolIndex(a.L1.Perm())] = rows[1]
			for _, i := range []int{2, 3} {
				row, err := randomRow(r)
				if err != nil {
					return GarbledGate{}, err
				}
				gg[i] = row
			}
		} else {
			for i := range gg {
				row, err := randomRow(r)
				if err != nil {
					return GarbledGate{}, err
				}
				gg[i] = row
			}
			perm, err := shuffledIndices(r, 4)
			if err != nil {
				return GarbledGate{}, err
			}
			gg[perm[0]] = rows[0]
			gg[perm[1]] = rows[1]
		}
		return gg, nil
	}

	if int(g.Input1) >= len(wires) {
		return GarbledGate{}, &GarbleError{"gate references unknown wire"}
	}
	b := wires[g.Input1]

	rows := make([][]byte, 4)
	rowIndex := make([]int, 4)
	k := 0
	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			v := g.Op.Eval(av, bv)
			k1 := LabelForBit(a, av)
			k2 := LabelForBit(b, bv)
			m := LabelForBit(out, v)
			rows[k] = ot.EncryptLabel(m, k1, k2, uint32(id))
			if opts.PointAndPermute {
				rowIndex[k] = permIndex(k1.Perm(), k2.Perm())
			}
			k++
		}
	}

	if opts.PointAndPermute {
		for i, idx := range rowIndex {
			gg[idx] = rows[i]
		}
	} else {
		perm, err := shuffledIndices(r, 4)
		if err != nil {
			return GarbledGate{}, err
		}
		for i, idx := range perm {
			gg[idx] = rows[i]
		}
	}
	return gg, nil
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

func permIndex(a, b bool) int {
	idx := 0
	if a {
		idx |= 0x2
	}
	if b {
		idx |= 0x1
	}
	return idx
}

func randomRow(r io.Reader) ([]byte, error) {
	row := make([]byte, 32)
	if _, err := io.ReadFull(r, row); err != nil {
		return nil, err
	}
	return row, nil
}

// shuffledIndices returns a uniformly random permutation of
// [0, n) using Fisher-Yates, drawing randomness from r.
func shuffledIndices(r io.Reader, n int) ([]int, error) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j, err := randIntn(r, i+1)
		if err != nil {
			return nil, err
		}
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx, nil
}

// randIntn returns a uniform random integer in [0, n) using rejection
// sampling over a single random byte; n is always <= 4 here.
func randIntn(r io.Reader, n int) (int, error) {
	for {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		v := int(b[0])
		limit := 256 - (256 % n)
		if v < limit {
			return v % n, nil
		}
	}
}
