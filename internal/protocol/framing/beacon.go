package framing

import (
	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
)

// BeaconSymbol folds the profile id, a frame-sequence digit mod 5 and a
// health digit mod 3 into one element.
func BeaconSymbol(profile protocol.ProfileID, frameSeq uint32, health uint8) gf27.Element {
	v := uint32(profile) + 5*(frameSeq%5) + 15*uint32(health%3)
	return gf27.Element(v % gf27.Size)
}

func isBeacon(pos int, cfg protocol.BeaconConfig) bool {
	word, slot := pos/protocol.SymbolsPerWord, pos%protocol.SymbolsPerWord
	return word%int(cfg.Period) == 0 && slot == int(cfg.Slot)
}

// InsertBeacons places value at cfg.Slot of every cfg.Period-th word,
// shifting payload symbols later. The result is whole words; the last one is
// zero-filled. An inactive config returns a copy.
func InsertBeacons(symbols []gf27.Element, cfg protocol.BeaconConfig, value gf27.Element) []gf27.Element {
	if !cfg.Active() {
		return append([]gf27.Element(nil), symbols...)
	}
	out := make([]gf27.Element, 0, len(symbols)+len(symbols)/protocol.SymbolsPerWord+protocol.SymbolsPerWord)
	src := 0
	for pos := 0; src < len(symbols) || pos%protocol.SymbolsPerWord != 0; pos++ {
		switch {
		case isBeacon(pos, cfg):
			out = append(out, value)
		case src < len(symbols):
			out = append(out, symbols[src])
			src++
		default:
			out = append(out, 0)
		}
	}
	return out
}

// StripBeacons drops every beacon position. Removal is positional only.
func StripBeacons(symbols []gf27.Element, cfg protocol.BeaconConfig) []gf27.Element {
	if !cfg.Active() {
		return append([]gf27.Element(nil), symbols...)
	}
	out := make([]gf27.Element, 0, len(symbols))
	for pos, e := range symbols {
		if !isBeacon(pos, cfg) {
			out = append(out, e)
		}
	}
	return out
}

// Beacons returns the pilot values found at beacon positions, for link
// monitoring.
func Beacons(symbols []gf27.Element, cfg protocol.BeaconConfig) []gf27.Element {
	if !cfg.Active() {
		return nil
	}
	var out []gf27.Element
	for pos := int(cfg.Slot); pos < len(symbols); pos += protocol.SymbolsPerWord * int(cfg.Period) {
		out = append(out, symbols[pos])
	}
	return out
}
