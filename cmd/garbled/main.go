//
// main.go
//
// Copyright (c) 2019-2021 Markku Rossi
//
// All rights reserved.
//

// Command garbled runs one party of a two-player Yao garbled-circuit
// computation over a Bristol Fashion circuit file: the Garbler listens
// for a connection and garbles; the Evaluator dials in and evaluates.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yaogc/engine/circuit"
	"github.com/yaogc/engine/env"
	"github.com/yaogc/engine/p2p"
	"github.com/yaogc/engine/protocol"
)

func main() {
	garbler := flag.Bool("g", false, "run as Garbler (default: Evaluator)")
	host := flag.String("host", "127.0.0.1", "Garbler host to dial (Evaluator mode)")
	port := flag.String("port", "8080", "TCP port to listen on / dial")
	circuitFile := flag.String("circuit", "", "Bristol Fashion circuit file (Garbler mode)")
	inputStr := flag.String("input", "", "this party's input bits, e.g. \"0110\"")
	pandp := flag.Bool("pandp", true, "use point-and-permute garbling")
	flag.Parse()

	input, err := parseBits(*inputStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "garbled: invalid --input: %s\n", err)
		os.Exit(1)
	}

	cfg := &env.Config{}

	if *garbler {
		if err := runGarbler(cfg, *port, *circuitFile, input, *pandp); err != nil {
			fmt.Fprintf(os.Stderr, "garbled: %s\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runEvaluator(cfg, *host, *port, input); err != nil {
		fmt.Fprintf(os.Stderr, "garbled: %s\n", err)
		os.Exit(1)
	}
}

// parseBits turns a string of '0'/'1' characters into bools, ignoring
// whitespace and commas.
func parseBits(s string) ([]bool, error) {
	var bits []bool
	for _, r := range s {
		switch r {
		case '0':
			bits = append(bits, false)
		case '1':
			bits = append(bits, true)
		case ' ', '\t', ',':
			continue
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	return bits, nil
}

func runGarbler(cfg *env.Config, port, circuitFile string, input []bool,
	pandp bool) error {

	if circuitFile == "" {
		return fmt.Errorf("--circuit is required in Garbler mode")
	}
	circ, err := loadCircuit(circuitFile)
	if err != nil {
		return fmt.Errorf("failed to load circuit: %w", err)
	}

	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	defer ln.Close()
	fmt.Printf("Listening on :%s\n", port)

	nc, err := ln.Accept()
	if err != nil {
		return err
	}
	defer nc.Close()
	fmt.Printf("Connection from %s\n", nc.RemoteAddr())

	conn := p2p.NewConn(nc)
	defer conn.Close()

	s := protocol.NewSession(conn, "garbler", cfg)
	result, err := protocol.RunGarbler(s, circ, input, pandp)
	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	fmt.Printf("Result: %s\n", formatBits(result))
	s.Timing.Print(conn.Stats)
	return nil
}

func runEvaluator(cfg *env.Config, host, port string, input []bool) error {
	nc, err := net.Dial("tcp", host+":"+port)
	if err != nil {
		return err
	}
	defer nc.Close()

	conn := p2p.NewConn(nc)
	defer conn.Close()

	s := protocol.NewSession(conn, "evaluator", cfg)
	labels, err := protocol.RunEvaluator(s, input)
	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	fmt.Printf("Received %d output label(s)\n", len(labels))
	s.Timing.Print(conn.Stats)
	return nil
}

func loadCircuit(file string) (*circuit.Circuit, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return circuit.ParseBristol(f)
}

func formatBits(bits []bool) string {
	var b strings.Builder
	for _, bit := range bits {
		if bit {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
