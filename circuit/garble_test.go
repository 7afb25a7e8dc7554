//
// garble_test.go
//
// Copyright (c) 2019-2021 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/yaogc/engine/ot"
)

// scenario describes one of the spec's end-to-end garble/evaluate
// test cases: a Bristol circuit plus a Garbler and Evaluator input.
type scenario struct {
	name      string
	src       string
	garbler   []bool
	evaluator []bool
	want      []bool
}

func bitsFromString(s string) []bool {
	var bits []bool
	for _, r := range s {
		bits = append(bits, r == '1')
	}
	return bits
}

var scenarios = []scenario{
	{
		name:      "AND 1,1",
		src:       "1 3\n2 1 1\n1 1\n\n2 1 0 1 2 AND\n",
		garbler:   bitsFromString("1"),
		evaluator: bitsFromString("1"),
		want:      bitsFromString("1"),
	},
	{
		name:      "AND 1,0",
		src:       "1 3\n2 1 1\n1 1\n\n2 1 0 1 2 AND\n",
		garbler:   bitsFromString("1"),
		evaluator: bitsFromString("0"),
		want:      bitsFromString("0"),
	},
	{
		name:      "XOR 1,1",
		src:       "1 3\n2 1 1\n1 1\n\n2 1 0 1 2 XOR\n",
		garbler:   bitsFromString("1"),
		evaluator: bitsFromString("1"),
		want:      bitsFromString("0"),
	},
	{
		name:      "NOT 1",
		src:       "1 2\n1 1\n1 1\n\n1 1 0 1 NOT\n",
		garbler:   bitsFromString("1"),
		evaluator: nil,
		want:      bitsFromString("0"),
	},
}

// run executes scenario sc under the given GarbleOptions and checks
// the evaluated output against sc.want.
func (sc scenario) run(t *testing.T, opts GarbleOptions) {
	t.Helper()

	c, err := ParseBristol(strings.NewReader(sc.src))
	if err != nil {
		t.Fatalf("ParseBristol: %v", err)
	}

	gc, err := Garble(c, rand.Reader, opts)
	if err != nil {
		t.Fatalf("Garble: %v", err)
	}

	garblerLabels, err := EncodeInputs(gc, 0, sc.garbler)
	if err != nil {
		t.Fatalf("EncodeInputs(garbler): %v", err)
	}
	evalLabels, err := EncodeInputs(gc, len(sc.garbler), sc.evaluator)
	if err != nil {
		t.Fatalf("EncodeInputs(evaluator): %v", err)
	}

	all := append(append([]ot.Label{}, garblerLabels...), evalLabels...)

	outLabels, stats, err := Evaluate(gc, all)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if stats.GatesEvaluated != len(c.Gates) {
		t.Errorf("GatesEvaluated: got %d, want %d",
			stats.GatesEvaluated, len(c.Gates))
	}

	got := DecodeOutputs(gc, outLabels)
	if len(got) != len(sc.want) {
		t.Fatalf("output length: got %d, want %d", len(got), len(sc.want))
	}
	for i := range got {
		if got[i] != sc.want[i] {
			t.Errorf("bit %d: got %v, want %v", i, got[i], sc.want[i])
		}
	}

	strict, err := DecodeOutputsStrict(gc, outLabels)
	if err != nil {
		t.Fatalf("DecodeOutputsStrict: %v", err)
	}
	for i := range strict {
		if strict[i] != sc.want[i] {
			t.Errorf("strict bit %d: got %v, want %v", i, strict[i], sc.want[i])
		}
	}
}

func TestScenariosPointAndPermute(t *testing.T) {
	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.name+"/pandp", func(t *testing.T) {
			sc.run(t, GarbleOptions{PointAndPermute: true})
		})
	}
}

func TestScenariosLegacy(t *testing.T) {
	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.name+"/legacy", func(t *testing.T) {
			sc.run(t, GarbleOptions{PointAndPermute: false})
		})
	}
}

func TestEqualityCircuit(t *testing.T) {
	// (a0==b0) AND (a1==b1), built from XNOR = NOT(XOR) then AND.
	// Wires: 0,1 = a0,a1 (Garbler); 2,3 = b0,b1 (Evaluator);
	// 4 = a0 XOR b0; 5 = NOT(4) = a0==b0; 6 = a1 XOR b1;
	// 7 = NOT(6) = a1==b1; 8 = 5 AND 7.
	src := `5 9
2 2 2
1 1

2 1 0 2 4 XOR
1 1 4 5 NOT
2 1 1 3 6 XOR
1 1 6 7 NOT
2 1 5 7 8 AND
`
	for _, opts := range []GarbleOptions{
		{PointAndPermute: true},
		{PointAndPermute: false},
	} {
		c, err := ParseBristol(strings.NewReader(src))
		if err != nil {
			t.Fatalf("ParseBristol: %v", err)
		}
		gc, err := Garble(c, rand.Reader, opts)
		if err != nil {
			t.Fatalf("Garble: %v", err)
		}

		cases := []struct {
			a, b []bool
			want bool
		}{
			{bitsFromString("01"), bitsFromString("01"), true},
			{bitsFromString("01"), bitsFromString("10"), false},
		}
		for _, tc := range cases {
			aLabels, _ := EncodeInputs(gc, 0, tc.a)
			bLabels, _ := EncodeInputs(gc, 2, tc.b)
			all := append(append([]ot.Label{}, aLabels...), bLabels...)
			out, _, err := Evaluate(gc, all)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			got := DecodeOutputs(gc, out)
			if got[0] != tc.want {
				t.Errorf("pandp=%v a=%v b=%v: got %v, want %v",
					opts.PointAndPermute, tc.a, tc.b, got[0], tc.want)
			}
		}
	}
}

func TestLabelUniqueness(t *testing.T) {
	src := "1 3\n2 1 1\n1 1\n\n2 1 0 1 2 AND\n"
	c, err := ParseBristol(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseBristol: %v", err)
	}
	gc, err := Garble(c, rand.Reader, GarbleOptions{PointAndPermute: true})
	if err != nil {
		t.Fatalf("Garble: %v", err)
	}
	seen := make(map[ot.Label]bool)
	for _, w := range gc.Inputs {
		for _, l := range []ot.Label{w.L0, w.L1} {
			if seen[l] {
				t.Fatalf("duplicate label %v", l)
			}
			seen[l] = true
		}
	}
}
