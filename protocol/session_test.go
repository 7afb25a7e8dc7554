//
// session_test.go
//
// Copyright (c) 2019-2021 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"strings"
	"testing"

	"github.com/yaogc/engine/circuit"
	"github.com/yaogc/engine/env"
	"github.com/yaogc/engine/p2p"
)

const andBristol = "1 3\n2 1 1\n1 1\n\n2 1 0 1 2 AND\n"

func runSession(t *testing.T, src string, garblerInput, evalInput []bool,
	pandp bool) []bool {

	t.Helper()

	c, err := circuit.ParseBristol(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseBristol: %v", err)
	}

	gConn, eConn := p2p.Pipe()

	type gresult struct {
		bits []bool
		err  error
	}
	gch := make(chan gresult, 1)
	go func() {
		gs := NewSession(gConn, "garbler", &env.Config{})
		bits, err := RunGarbler(gs, c, garblerInput, pandp)
		gch <- gresult{bits, err}
	}()

	es := NewSession(eConn, "evaluator", &env.Config{})
	if _, err := RunEvaluator(es, evalInput); err != nil {
		t.Fatalf("RunEvaluator: %v", err)
	}

	res := <-gch
	if res.err != nil {
		t.Fatalf("RunGarbler: %v", res.err)
	}
	return res.bits
}

func TestSessionAnd(t *testing.T) {
	for _, pandp := range []bool{true, false} {
		got := runSession(t, andBristol, []bool{true}, []bool{true}, pandp)
		if len(got) != 1 || !got[0] {
			t.Errorf("pandp=%v: got %v, want [true]", pandp, got)
		}
		got = runSession(t, andBristol, []bool{true}, []bool{false}, pandp)
		if len(got) != 1 || got[0] {
			t.Errorf("pandp=%v: got %v, want [false]", pandp, got)
		}
	}
}

func TestSessionNotNoEvaluatorInput(t *testing.T) {
	src := "1 2\n1 1\n1 1\n\n1 1 0 1 NOT\n"
	got := runSession(t, src, []bool{true}, nil, true)
	if len(got) != 1 || got[0] {
		t.Errorf("got %v, want [false]", got)
	}
}
