package header

import (
	"fmt"

	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
	"github.com/danmuck/t3codec/internal/protocol/rs"
)

const (
	groupA = rs.HeaderK
	groupB = protocol.HeaderSymbols - groupA

	// Words is the number of Word27 the encoded header occupies: two
	// codewords (52 symbols) plus two zero fill symbols.
	Words = (2*rs.N + protocol.SymbolsPerWord - 1) / protocol.SymbolsPerWord
)

// EncodeWords protects s as two RS(26,18) codewords. The second group holds
// the last nine symbols followed by nine zeros.
func EncodeWords(s Symbols, bank *rs.Bank) ([Words]protocol.Word27, error) {
	var out [Words]protocol.Word27
	coder := bank.Header()

	var b [rs.HeaderK]gf27.Element
	copy(b[:], s[groupA:])

	stream := make([]gf27.Element, 2*rs.N, Words*protocol.SymbolsPerWord)
	if err := coder.EncodeTo(stream[:rs.N], s[:groupA]); err != nil {
		return out, err
	}
	if err := coder.EncodeTo(stream[rs.N:], b[:]); err != nil {
		return out, err
	}
	copy(out[:], protocol.Group(stream))
	return out, nil
}

// DecodeWords recovers the packed header from the first Words words. Each
// group is decoded independently and any failure aborts. The returned count
// is the number of symbols the RS decoder corrected. The CRC is not checked.
func DecodeWords(words []protocol.Word27, bank *rs.Bank) (Symbols, int, error) {
	var s Symbols
	if len(words) < Words {
		return s, 0, fmt.Errorf("%w: have %d want %d", ErrShort, len(words), Words)
	}
	if err := protocol.ValidateWords(words[:Words]); err != nil {
		return s, 0, err
	}
	stream := protocol.Flatten(words[:Words])
	coder := bank.Header()

	a, fixedA, err := coder.Decode(stream[:rs.N])
	if err != nil {
		return s, 0, fmt.Errorf("%w: group 0: %w", ErrGroup, err)
	}
	b, fixedB, err := coder.Decode(stream[rs.N : 2*rs.N])
	if err != nil {
		return s, 0, fmt.Errorf("%w: group 1: %w", ErrGroup, err)
	}
	for i := groupB; i < len(b); i++ {
		if b[i] != 0 {
			return s, 0, fmt.Errorf("%w: symbol %d = %d", ErrPadding, i, b[i])
		}
	}

	copy(s[:groupA], a)
	copy(s[groupA:], b[:groupB])
	return s, fixedA + fixedB, nil
}
