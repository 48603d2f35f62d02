package raw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
)

var (
	ErrWordBytes   = errors.New("raw: byte length is not a multiple of 9")
	ErrBase243     = errors.New("raw: malformed base-243 stream")
	ErrStreamLarge = errors.New("raw: stream exceeds word limit")
)

// WordsToBytes writes one byte per symbol, nine per word.
func WordsToBytes(words []protocol.Word27) []byte {
	out := make([]byte, 0, len(words)*protocol.SymbolsPerWord)
	for _, w := range words {
		for _, e := range w {
			out = append(out, byte(e))
		}
	}
	return out
}

// BytesToWords is the inverse of WordsToBytes. Every byte must be a field
// element.
func BytesToWords(b []byte) ([]protocol.Word27, error) {
	if len(b)%protocol.SymbolsPerWord != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrWordBytes, len(b))
	}
	out := make([]protocol.Word27, len(b)/protocol.SymbolsPerWord)
	for i, v := range b {
		e := gf27.Element(v)
		if !e.Valid() {
			return nil, fmt.Errorf("%w: byte %d = %d", protocol.ErrInvalidSymbol, i, v)
		}
		out[i/protocol.SymbolsPerWord][i%protocol.SymbolsPerWord] = e
	}
	return out, nil
}

// ReadWords reads a whole word stream from r, refusing more than maxWords
// words when maxWords is positive.
func ReadWords(r io.Reader, maxWords int) ([]protocol.Word27, error) {
	if maxWords > 0 {
		r = io.LimitReader(r, int64(maxWords+1)*protocol.SymbolsPerWord)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxWords > 0 && len(b) > maxWords*protocol.SymbolsPerWord {
		return nil, fmt.Errorf("%w: limit %d", ErrStreamLarge, maxWords)
	}
	return BytesToWords(b)
}

// WriteWords writes words in the one-byte-per-symbol layout.
func WriteWords(w io.Writer, words []protocol.Word27) error {
	_, err := w.Write(WordsToBytes(words))
	return err
}

// PackBase243 stores five trits per byte, least significant first, behind a
// little-endian uint32 trit count.
func PackBase243(trits []protocol.Trit) []byte {
	out := make([]byte, 4, 4+(len(trits)+4)/5)
	binary.LittleEndian.PutUint32(out, uint32(len(trits)))
	for i := 0; i < len(trits); i += 5 {
		v, p := 0, 1
		for _, t := range trits[i:min(i+5, len(trits))] {
			v += p * int(t%3)
			p *= 3
		}
		out = append(out, byte(v))
	}
	return out
}

// UnpackBase243 is the inverse of PackBase243.
func UnpackBase243(b []byte) ([]protocol.Trit, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: missing count", ErrBase243)
	}
	count := int(binary.LittleEndian.Uint32(b))
	body := b[4:]
	if len(body) != (count+4)/5 {
		return nil, fmt.Errorf("%w: %d trits need %d bytes, have %d", ErrBase243, count, (count+4)/5, len(body))
	}
	out := make([]protocol.Trit, 0, count)
	for i, v := range body {
		if v >= 243 {
			return nil, fmt.Errorf("%w: byte %d = %d", ErrBase243, i, v)
		}
		for k := 0; k < 5 && len(out) < count; k++ {
			out = append(out, protocol.Trit(v%3))
			v /= 3
		}
	}
	return out, nil
}
