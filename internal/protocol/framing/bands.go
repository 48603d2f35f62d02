package framing

import (
	"errors"
	"fmt"

	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
	"github.com/danmuck/t3codec/internal/protocol/rs"
	"golang.org/x/sync/errgroup"
)

// GroupSymbols is one RS block from every band.
const GroupSymbols = protocol.NumBands * rs.N

var ErrBodyAlignment = errors.New("framing: body is not a whole number of band groups")

// BandError reports the band and block a decode failed in.
type BandError struct {
	Band  int
	Block int
	Err   error
}

func (e BandError) Error() string {
	return fmt.Sprintf("framing: band=%d block=%d: %v", e.Band, e.Block, e.Err)
}

func (e BandError) Unwrap() error { return e.Err }

// BandStats summarises one banded decode.
type BandStats struct {
	// Blocks is the number of RS blocks each band carried.
	Blocks    int
	Corrected [protocol.NumBands]int
}

// TotalCorrected sums corrections across bands.
func (s BandStats) TotalCorrected() int {
	total := 0
	for _, c := range s.Corrected {
		total += c
	}
	return total
}

func bandCoders(layout protocol.UEPLayout, bank *rs.Bank) ([protocol.NumBands]*rs.Coder, error) {
	var coders [protocol.NumBands]*rs.Coder
	if err := layout.Validate(); err != nil {
		return coders, err
	}
	for b, sel := range layout {
		c, err := bank.Coder(sel)
		if err != nil {
			return coders, err
		}
		coders[b] = c
	}
	return coders, nil
}

// BlocksFor returns how many RS blocks every band needs to carry n symbols.
func BlocksFor(n int, layout protocol.UEPLayout) int {
	blocks := 0
	for b, sel := range layout {
		k, err := rs.KForSelector(sel)
		if err != nil {
			continue
		}
		count := 0
		if n > b {
			count = (n - b + protocol.NumBands - 1) / protocol.NumBands
		}
		blocks = max(blocks, (count+k-1)/k)
	}
	return blocks
}

// EncodeBands spreads symbols round-robin over the nine bands, RS-encodes each
// band with its selected profile, and interleaves the codewords back so body
// symbol j belongs to band j mod 9. Every band carries the same number of
// blocks; shorter bands are zero-padded.
func EncodeBands(symbols []gf27.Element, layout protocol.UEPLayout, bank *rs.Bank) ([]gf27.Element, error) {
	coders, err := bandCoders(layout, bank)
	if err != nil {
		return nil, err
	}
	blocks := BlocksFor(len(symbols), layout)
	body := make([]gf27.Element, blocks*GroupSymbols)
	if blocks == 0 {
		return body, nil
	}

	var g errgroup.Group
	for b := range coders {
		g.Go(func() error {
			c := coders[b]
			k := c.Params().K
			data := make([]gf27.Element, blocks*k)
			for i, off := b, 0; i < len(symbols); i, off = i+protocol.NumBands, off+1 {
				data[off] = symbols[i]
			}
			code := make([]gf27.Element, rs.N)
			for blk := 0; blk < blocks; blk++ {
				if err := c.EncodeTo(code, data[blk*k:(blk+1)*k]); err != nil {
					return BandError{Band: b, Block: blk, Err: err}
				}
				// Each goroutine writes only the body positions of its own band.
				for i, sym := range code {
					body[(blk*rs.N+i)*protocol.NumBands+b] = sym
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return body, nil
}

// DecodeBands reverses EncodeBands. The body must be a whole number of band
// groups. The returned stream still carries the encoder's zero padding; it
// ends where the first band runs out of data.
func DecodeBands(body []gf27.Element, layout protocol.UEPLayout, bank *rs.Bank) ([]gf27.Element, BandStats, error) {
	var stats BandStats
	coders, err := bandCoders(layout, bank)
	if err != nil {
		return nil, stats, err
	}
	if len(body)%GroupSymbols != 0 {
		return nil, stats, fmt.Errorf("%w: %d symbols", ErrBodyAlignment, len(body))
	}
	blocks := len(body) / GroupSymbols
	stats.Blocks = blocks

	var bands [protocol.NumBands][]gf27.Element
	var g errgroup.Group
	for b := range coders {
		g.Go(func() error {
			c := coders[b]
			k := c.Params().K
			out := make([]gf27.Element, 0, blocks*k)
			code := make([]gf27.Element, rs.N)
			for blk := 0; blk < blocks; blk++ {
				for i := range code {
					code[i] = body[(blk*rs.N+i)*protocol.NumBands+b]
				}
				data, fixed, err := c.Decode(code)
				if err != nil {
					return BandError{Band: b, Block: blk, Err: err}
				}
				stats.Corrected[b] += fixed
				out = append(out, data...)
			}
			bands[b] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, BandStats{Blocks: blocks}, err
	}

	var symbols []gf27.Element
	for i := 0; ; i++ {
		b, off := i%protocol.NumBands, i/protocol.NumBands
		if off >= len(bands[b]) {
			break
		}
		symbols = append(symbols, bands[b][off])
	}
	return symbols, stats, nil
}
