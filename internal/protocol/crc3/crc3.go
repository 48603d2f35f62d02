// Package crc3 computes the 12-trit ternary CRC used by the superframe header.
//
// The register is a 12-stage LFSR over GF(3) for g(x) = x^12 + x^7 + x^4 + x^3 + 1.
package crc3

import "github.com/danmuck/t3codec/internal/protocol/gf27"

// Length is the remainder length in trits.
const Length = 12

// Remainder runs the message through the register, then 12 zero trits, and
// returns the register contents. Input trits above 2 are reduced mod 3.
func Remainder(msg []gf27.Trit) [Length]gf27.Trit {
	var reg [Length]gf27.Trit
	for _, t := range msg {
		reg = step(reg, t%3)
	}
	for i := 0; i < Length; i++ {
		reg = step(reg, 0)
	}
	return reg
}

func step(reg [Length]gf27.Trit, in gf27.Trit) [Length]gf27.Trit {
	fb := (in + reg[Length-1]) % 3
	var next [Length]gf27.Trit
	next[0] = fb
	next[1] = reg[0]
	next[2] = reg[1]
	next[3] = (reg[2] + fb) % 3
	next[4] = (reg[3] + fb) % 3
	next[5] = reg[4]
	next[6] = reg[5]
	next[7] = (reg[6] + fb) % 3
	next[8] = reg[7]
	next[9] = reg[8]
	next[10] = reg[9]
	next[11] = reg[10]
	return next
}
