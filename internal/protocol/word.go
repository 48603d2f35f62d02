package protocol

import (
	"fmt"

	"github.com/danmuck/t3codec/internal/protocol/gf27"
)

// Word27 is the transport unit: nine GF(27) symbols, 27 trits.
type Word27 [SymbolsPerWord]gf27.Element

// Trits expands w into 27 trits, three per symbol, least significant digit first.
func (w Word27) Trits() [TritsPerWord]Trit {
	var out [TritsPerWord]Trit
	for i, e := range w {
		d := gf27.Digits(e)
		copy(out[3*i:], d[:])
	}
	return out
}

// WordFromTrits is the inverse of Trits. Trits above 2 are reduced mod 3.
func WordFromTrits(t [TritsPerWord]Trit) Word27 {
	var w Word27
	for i := range w {
		w[i] = gf27.FromDigits(t[3*i]%3, t[3*i+1]%3, t[3*i+2]%3)
	}
	return w
}

// Reserved returns trit 26, which carries no payload.
func (w Word27) Reserved() Trit {
	return gf27.Digits(w[SymbolsPerWord-1])[2]
}

// Valid reports whether every symbol is a field element.
func (w Word27) Valid() bool {
	for _, e := range w {
		if !e.Valid() {
			return false
		}
	}
	return true
}

// ValidateWords returns ErrInvalidSymbol for the first out-of-range symbol.
func ValidateWords(words []Word27) error {
	for i, w := range words {
		for j, e := range w {
			if !e.Valid() {
				return fmt.Errorf("%w: word %d symbol %d = %d", ErrInvalidSymbol, i, j, e)
			}
		}
	}
	return nil
}

// Flatten concatenates the symbols of words.
func Flatten(words []Word27) []gf27.Element {
	out := make([]gf27.Element, 0, len(words)*SymbolsPerWord)
	for _, w := range words {
		out = append(out, w[:]...)
	}
	return out
}

// Group splits symbols into words, zero-filling the last one.
func Group(symbols []gf27.Element) []Word27 {
	out := make([]Word27, (len(symbols)+SymbolsPerWord-1)/SymbolsPerWord)
	for i, e := range symbols {
		out[i/SymbolsPerWord][i%SymbolsPerWord] = e
	}
	return out
}
