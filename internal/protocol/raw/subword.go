package raw

import (
	"github.com/danmuck/t3codec/internal/protocol"
)

// ExtractSubword returns the leading mode.PayloadTrits() trits of every word,
// concatenated.
func ExtractSubword(words []protocol.Word27, mode protocol.SubwordMode) ([]protocol.Trit, error) {
	if _, err := mode.Index(); err != nil {
		return nil, err
	}
	n := mode.PayloadTrits()
	out := make([]protocol.Trit, 0, n*len(words))
	for _, w := range words {
		t := w.Trits()
		out = append(out, t[:n]...)
	}
	return out, nil
}

// BuildWords packs stream into words carrying mode.PayloadTrits() trits each.
// The unused tail of every word, and the rest of a short last word, hold fill.
func BuildWords(stream []protocol.Trit, mode protocol.SubwordMode, fill protocol.Trit) ([]protocol.Word27, error) {
	if _, err := mode.Index(); err != nil {
		return nil, err
	}
	n := mode.PayloadTrits()
	fill %= 3
	out := make([]protocol.Word27, 0, (len(stream)+n-1)/n)
	for start := 0; start < len(stream); start += n {
		var t [protocol.TritsPerWord]protocol.Trit
		for i := range t {
			t[i] = fill
		}
		end := min(start+n, len(stream))
		copy(t[:], stream[start:end])
		out = append(out, protocol.WordFromTrits(t))
	}
	return out, nil
}
