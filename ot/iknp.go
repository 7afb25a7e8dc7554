//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// More Efficient Oblivious Transfer and Extensions for Faster Secure
// Computation
//  - https://eprint.iacr.org/2013/552.pdf

/*

This implementation is derived from the EMP Toolkit's ikmp.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/ikmp.h)
with original license as follows:

MIT License

Copyright (c) 2018 Xiao Wang (wangxiao1254@gmail.com)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

Enquiries about further applications and development opportunities are welcome.

*/

// Package ot's IKNP extension batches K base OTs (run once, via CO)
// into many derived OTs using a chacha20-keyed PRG per base key. It
// implements only the semi-honest variant: the actively-secure
// consistency check from the IKNP/KOS papers is out of scope for this
// engine (see the two-party, semi-honest-only scope elsewhere in this
// package).
package ot

import (
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"
)

const (
	// K defines the IKNP security parameter; the number of IKNP base
	// OTs.
	K = 128

	// Chunk size. Must be multiple of 16 (K-bits).
	chunkSize = 2 * 1024

	// The maximum number of byte-rows in a chunk.
	chunkByteRows = chunkSize / K

	// The number of label rows in a chunk.
	chunkRows = chunkByteRows * 8
)

// IKNPSender implements the random correlated OT extension sender.
type IKNPSender struct {
	// Delta defines the correlation delta: b1 = b0 ⊕ Δ
	Delta Label
	io    IO
	g0    [K]*chacha20.Cipher
}

// NewIKNPSender creates a new sender, running K base OTs over base to
// seed the extension. The d argument is an optional fixed delta; if
// nil, a random delta is sampled from r.
func NewIKNPSender(base OT, io IO, r io.Reader, d *Label) (*IKNPSender, error) {
	var delta Label
	var err error
	if d == nil {
		delta, err = NewLabel(r)
		if err != nil {
			return nil, err
		}
	} else {
		delta = *d
	}

	s := &IKNPSender{
		Delta: delta,
		io:    io,
	}

	var flags [K]bool
	for i := 0; i < K; i++ {
		flags[i] = delta.Bit(i) == 1
	}

	var k0 [K]Label
	err = base.Receive(flags[:], k0[:])
	if err != nil {
		return nil, err
	}

	for i := 0; i < K; i++ {
		s.g0[i], err = newPrg(k0[i])
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Send returns n derived sender labels. The returned labels are the
// b0 side of the OT; the matching b1 side is b0[i] ⊕ s.Delta, so the
// higher level protocol derives both sides of each OT from one array.
func (s *IKNPSender) Send(n int) ([]Label, error) {
	result := make([]Label, n)

	var ofs int
	for ofs < n {
		chunk, err := s.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(chunk)%K != 0 {
			return nil, fmt.Errorf("invalid chunk size: %v", len(chunk))
		}
		byteRows := len(chunk) / K

		var t [chunkSize]byte

		for i := 0; i < K; i++ {
			prg(s.g0[i], t[i*byteRows:(i+1)*byteRows])
			if s.Delta.Bit(i) == 1 {
				xorInto(t[i*byteRows:(i+1)*byteRows], chunk[i*byteRows:])
			}
		}
		createLabels(result[ofs:], t[:], byteRows)

		ofs += byteRows * 8
	}

	return result, nil
}

// SendWires derandomizes the extension's correlated output into a
// chosen-message OT for each wire: the sender already holds b0[i] and
// Delta from Send, so it one-time-pads wire[i].L0 with b0[i] and
// wire[i].L1 with b0[i]^Delta and ships both pads alongside the
// derived labels. This is what lets the IKNP extension stand in for
// the base OT once there are enough wires to amortize the K base OTs
// that seeded it.
func (s *IKNPSender) SendWires(wires []Wire) error {
	b0, err := s.Send(len(wires))
	if err != nil {
		return err
	}
	for i, w := range wires {
		e0 := w.L0
		e0.Xor(b0[i])
		e1 := w.L1
		e1.Xor(b0[i])
		e1.Xor(s.Delta)
		if err := s.io.SendData(e0.Bytes()); err != nil {
			return err
		}
		if err := s.io.SendData(e1.Bytes()); err != nil {
			return err
		}
	}
	return s.io.Flush()
}

// IKNPReceiver implements the random correlated OT extension receiver.
type IKNPReceiver struct {
	io IO
	g0 [K]*chacha20.Cipher
	g1 [K]*chacha20.Cipher
}

// NewIKNPReceiver creates a new receiver, running K base OTs over base
// to seed the extension.
func NewIKNPReceiver(base OT, io IO, r io.Reader) (*IKNPReceiver, error) {
	var wires [K]Wire
	for i := 0; i < K; i++ {
		l0, err := NewLabel(r)
		if err != nil {
			return nil, err
		}
		l1, err := NewLabel(r)
		if err != nil {
			return nil, err
		}
		wires[i] = Wire{
			L0: l0,
			L1: l1,
		}
	}
	err := base.Send(wires[:])
	if err != nil {
		return nil, err
	}

	rcv := &IKNPReceiver{
		io: io,
	}

	for i := 0; i < K; i++ {
		rcv.g0[i], err = newPrg(wires[i].L0)
		if err != nil {
			return nil, err
		}
		rcv.g1[i], err = newPrg(wires[i].L1)
		if err != nil {
			return nil, err
		}
	}

	return rcv, nil
}

// Receive derives len(b) labels, selected by the choice bits b. The
// returned labels implement the correlation: result[i] = b0[i] ⊕
// b[i]*Delta. Panics if b and result have different lengths.
func (r *IKNPReceiver) Receive(b []bool, result []Label) error {
	if len(b) != len(result) {
		panic("len(b) != len(result)")
	}
	bbuf := make([]byte, (len(b)+7)/8)
	for i, f := range b {
		if f {
			bbuf[i/8] |= 1 << (i % 8)
		}
	}

	var chunk, out [chunkSize]byte
	var tmp [chunkByteRows]byte

	for ofs := 0; ofs < len(b); {
		rows := chunkRows
		avail := len(b) - ofs
		if rows > avail {
			rows = avail
		}
		byteRows := (rows + 7) / 8

		for i := 0; i < K; i++ {
			prg(r.g0[i], chunk[i*byteRows:(i+1)*byteRows])
			prg(r.g1[i], tmp[:byteRows])

			xorInto(tmp[:byteRows], chunk[i*byteRows:])
			xorInto(tmp[:byteRows], bbuf[ofs/8:])

			copy(out[i*byteRows:], tmp[:byteRows])
		}
		if err := r.io.SendData(out[:byteRows*K]); err != nil {
			return err
		}
		createLabels(result[ofs:], chunk[:], byteRows)

		ofs += rows
	}
	return r.io.Flush()
}

// ReceiveWires is SendWires' receiver counterpart: it derives the
// correlated labels for the selection bits b, then strips the sender's
// one-time pad matching each selection bit off the wire matching
// SendWires' e0/e1 ordering.
func (r *IKNPReceiver) ReceiveWires(b []bool, result []Label) error {
	corr := make([]Label, len(b))
	if err := r.Receive(b, corr); err != nil {
		return err
	}
	for i, bit := range b {
		d0, err := r.io.ReceiveData()
		if err != nil {
			return err
		}
		d1, err := r.io.ReceiveData()
		if err != nil {
			return err
		}
		var e Label
		if bit {
			e.SetBytes(d1)
		} else {
			e.SetBytes(d0)
		}
		result[i] = corr[i]
		result[i].Xor(e)
	}
	return nil
}

// newPrg creates a chacha20 keystream generator keyed by key, used as
// the IKNP extension's per-base-OT pseudorandom generator.
func newPrg(key Label) (*chacha20.Cipher, error) {
	var seed [32]byte
	copy(seed[:16], key.Bytes())
	var nonce [chacha20.NonceSize]byte
	return chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
}

func prg(c *chacha20.Cipher, buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	c.XORKeyStream(buf, buf)
}

func createLabels(l []Label, buf []byte, w int) {
	end := w * 8
	if end > len(l) {
		end = len(l)
	}
	for i := 0; i < end; i++ {
		row := i / 8
		bit := i % 8
		for j := 0; j < K; j++ {
			v := uint((buf[j*w+row] >> bit) & 1)
			l[i].SetBit(j, v)
		}
	}
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
