package framing

import (
	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
)

// allDigits is the element whose three digits are all 1; multiplying it by a
// state in {0,1,2} (as an integer) shifts every digit by that state.
const allDigits = 13

// Scrambler whitens a symbol stream with the recurrence s <- (a*s + b) mod 3.
// Symbol i is shifted by the state after i+1 steps from s0. The orbit of a
// map on three values enters its cycle within three steps, so StateAt is
// constant time.
type Scrambler struct {
	orbit [4]uint8
	tail  int
	cycle int
}

func NewScrambler(seed protocol.ScramblerSeed) Scrambler {
	a, b := seed.A%3, seed.B%3
	var s Scrambler
	s.orbit[0] = seed.S0 % 3
	for i := 1; i < len(s.orbit); i++ {
		s.orbit[i] = (a*s.orbit[i-1] + b) % 3
	}
	for j := 1; j < len(s.orbit); j++ {
		for i := 0; i < j; i++ {
			if s.orbit[i] == s.orbit[j] {
				s.tail, s.cycle = i, j-i
				return s
			}
		}
	}
	// Unreachable: four values drawn from {0,1,2} always repeat.
	s.tail, s.cycle = 0, 3
	return s
}

// StateAt returns the scrambler state applied to symbol i.
func (s Scrambler) StateAt(i int) uint8 {
	step := i + 1
	if step < s.tail {
		return s.orbit[step]
	}
	return s.orbit[s.tail+(step-s.tail)%s.cycle]
}

func (s Scrambler) ScrambleSymbol(e gf27.Element, i int) gf27.Element {
	return gf27.Add(e, gf27.Element(allDigits*s.StateAt(i)))
}

func (s Scrambler) DescrambleSymbol(e gf27.Element, i int) gf27.Element {
	return gf27.Sub(e, gf27.Element(allDigits*s.StateAt(i)))
}

// Scramble returns a scrambled copy of symbols, indexing from zero.
func (s Scrambler) Scramble(symbols []gf27.Element) []gf27.Element {
	out := make([]gf27.Element, len(symbols))
	for i, e := range symbols {
		out[i] = s.ScrambleSymbol(e, i)
	}
	return out
}

func (s Scrambler) Descramble(symbols []gf27.Element) []gf27.Element {
	out := make([]gf27.Element, len(symbols))
	for i, e := range symbols {
		out[i] = s.DescrambleSymbol(e, i)
	}
	return out
}
