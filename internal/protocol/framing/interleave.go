package framing

import (
	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
)

// tileOrder lists source indices in boustrophedon order: tile by tile, rows
// top to bottom, even rows left to right and odd rows right to left. Indices
// past n in a partial last tile are skipped.
func tileOrder(n int, tile protocol.Tile2D) []int {
	w, h := int(tile.W), int(tile.H)
	area := w * h
	order := make([]int, 0, n)
	for base := 0; base < n; base += area {
		for r := 0; r < h; r++ {
			for i := 0; i < w; i++ {
				c := i
				if r%2 == 1 {
					c = w - 1 - i
				}
				if idx := base + r*w + c; idx < n {
					order = append(order, idx)
				}
			}
		}
	}
	return order
}

// PadToTile zero-extends symbols to a whole number of tiles.
func PadToTile(symbols []gf27.Element, tile protocol.Tile2D) []gf27.Element {
	area := tile.Area()
	if area == 0 || len(symbols)%area == 0 {
		return symbols
	}
	out := make([]gf27.Element, len(symbols)+area-len(symbols)%area)
	copy(out, symbols)
	return out
}

// Interleave applies the tile permutation. A disabled tile returns a copy.
func Interleave(symbols []gf27.Element, tile protocol.Tile2D) []gf27.Element {
	if !tile.Enabled() {
		return append([]gf27.Element(nil), symbols...)
	}
	out := make([]gf27.Element, len(symbols))
	for i, src := range tileOrder(len(symbols), tile) {
		out[i] = symbols[src]
	}
	return out
}

// Deinterleave is the exact inverse of Interleave for the same length and tile.
func Deinterleave(symbols []gf27.Element, tile protocol.Tile2D) []gf27.Element {
	if !tile.Enabled() {
		return append([]gf27.Element(nil), symbols...)
	}
	out := make([]gf27.Element, len(symbols))
	for i, dst := range tileOrder(len(symbols), tile) {
		out[dst] = symbols[i]
	}
	return out
}
