//
// label.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Wire implements a circuit wire with its two garbled labels.
type Wire struct {
	L0 Label
	L1 Label
}

func (w Wire) String() string {
	return fmt.Sprintf("%s/%s", w.L0, w.L1)
}

// Label implements a 128 bit wire label.
type Label struct {
	D0 uint64
	D1 uint64
}

// LabelData contains label data as a byte array.
type LabelData [16]byte

func (l Label) String() string {
	return fmt.Sprintf("%016x%016x", l.D0, l.D1)
}

// Equal tests if the labels are equal.
func (l Label) Equal(o Label) bool {
	return l.D0 == o.D0 && l.D1 == o.D1
}

// NewLabel creates a new random label read from r.
func NewLabel(r io.Reader) (Label, error) {
	var buf LabelData
	var label Label

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return label, err
	}
	label.SetData(&buf)
	return label, nil
}

// NewTweak creates a label carrying the gate tweak value in its low
// bits. PRF does not use it: PRF takes the gate id as a separate
// argument.
func NewTweak(tweak uint32) Label {
	return Label{
		D1: uint64(tweak),
	}
}

// Perm returns the label's permutation bit: the least significant bit
// of the last serialized byte.
func (l Label) Perm() bool {
	return (l.D1 & 0x1) != 0
}

// SetPerm sets the label's permutation bit.
func (l *Label) SetPerm(set bool) {
	if set {
		l.D1 |= 0x1
	} else {
		l.D1 &^= 0x1
	}
}

// Xor xors the label with the argument label.
func (l *Label) Xor(o Label) {
	l.D0 ^= o.D0
	l.D1 ^= o.D1
}

// Bit returns bit i (0 is the most significant bit of D0) of the
// label, used internally by the IKNP OT extension's bit-matrix
// transpose. It carries no relation to the wire-label semantics.
func (l Label) Bit(i int) uint {
	if i < 64 {
		return uint((l.D0 >> (63 - i)) & 0x1)
	}
	return uint((l.D1 >> (63 - (i - 64))) & 0x1)
}

// SetBit sets bit i of the label to v (0 or 1).
func (l *Label) SetBit(i int, v uint) {
	var mask uint64
	if i < 64 {
		mask = uint64(1) << (63 - i)
		if v != 0 {
			l.D0 |= mask
		} else {
			l.D0 &^= mask
		}
		return
	}
	mask = uint64(1) << (63 - (i - 64))
	if v != 0 {
		l.D1 |= mask
	} else {
		l.D1 &^= mask
	}
}

// GetData gets the label as label data, big-endian.
func (l Label) GetData(buf *LabelData) {
	binary.BigEndian.PutUint64(buf[0:8], l.D0)
	binary.BigEndian.PutUint64(buf[8:16], l.D1)
}

// SetData sets the label from label data, big-endian.
func (l *Label) SetData(data *LabelData) {
	l.D0 = binary.BigEndian.Uint64(data[0:8])
	l.D1 = binary.BigEndian.Uint64(data[8:16])
}

// Bytes returns the label data as a fresh 16 byte slice.
func (l Label) Bytes() []byte {
	var buf LabelData
	l.GetData(&buf)
	return buf[:]
}

// SetBytes sets the label data from a 16 byte slice.
func (l *Label) SetBytes(data []byte) {
	l.D0 = binary.BigEndian.Uint64(data[0:8])
	l.D1 = binary.BigEndian.Uint64(data[8:16])
}

// LabelFromData creates a label from 16 bytes of data.
func LabelFromData(data []byte) Label {
	var l Label
	l.SetBytes(data)
	return l
}
