//
// codec_test.go
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
)

func TestEncodeInputsTotality(t *testing.T) {
	c, err := ParseBristol(strings.NewReader(andCircuit))
	if err != nil {
		t.Fatalf("ParseBristol: %v", err)
	}
	gc, err := Garble(c, rand.Reader, GarbleOptions{PointAndPermute: true})
	if err != nil {
		t.Fatalf("Garble: %v", err)
	}

	for i, wire := range gc.Inputs {
		for _, bit := range []bool{false, true} {
			labels, err := EncodeInputs(gc, i, []bool{bit})
			if err != nil {
				t.Fatalf("EncodeInputs: %v", err)
			}
			l := labels[0]
			if !l.Equal(wire.L0) && !l.Equal(wire.L1) {
				t.Errorf("wire %d bit %v: label matches neither stored label",
					i, bit)
			}
		}
	}
}

func TestEncodeInputsRejectsOutOfRange(t *testing.T) {
	c, err := ParseBristol(strings.NewReader(andCircuit))
	if err != nil {
		t.Fatalf("ParseBristol: %v", err)
	}
	gc, err := Garble(c, rand.Reader, GarbleOptions{PointAndPermute: true})
	if err != nil {
		t.Fatalf("Garble: %v", err)
	}
	_, err = EncodeInputs(gc, 1, []bool{true, true})
	if err == nil {
		t.Fatal("expected an error for bits exceeding the input wire count")
	}
}

func TestOTPairsForMatchesInputs(t *testing.T) {
	c, err := ParseBristol(strings.NewReader(andCircuit))
	if err != nil {
		t.Fatalf("ParseBristol: %v", err)
	}
	gc, err := Garble(c, rand.Reader, GarbleOptions{PointAndPermute: true})
	if err != nil {
		t.Fatalf("Garble: %v", err)
	}
	for i := range gc.Inputs {
		l0, l1 := OTPairsFor(gc, Wire(i))
		if !l0.Equal(gc.Inputs[i].L0) || !l1.Equal(gc.Inputs[i].L1) {
			t.Errorf("OTPairsFor(%d) mismatch", i)
		}
	}
}
