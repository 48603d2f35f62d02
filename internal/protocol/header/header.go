// Package header packs the superframe header into 27 GF(27) symbols, guards
// it with the ternary CRC, and carries it as two RS(26,18) codewords.
package header

import (
	"errors"
	"fmt"

	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/crc3"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
)

var (
	ErrCRCMismatch = errors.New("header: crc mismatch")
	ErrShort       = errors.New("header: fewer words than the header occupies")
	ErrPadding     = errors.New("header: nonzero padding in second group")
	ErrGroup       = errors.New("header: codeword group uncorrectable")
)

// Symbol positions inside the 27-symbol pack.
const (
	posMagic    = 0
	posVersion  = 2
	posProfile  = 3
	posUEP      = 4
	posTileW    = 7
	posTileH    = 8
	posSeed     = 9
	posSubword  = 12
	posHash     = 13
	posCoset    = 16
	posFrameSeq = 17
	posBeaconOn = 23
	posSlot     = 24
	posPeriod   = 25
)

// crcSlots hold the 12 CRC trits, three per symbol. They are excluded from
// the CRC input.
var crcSlots = [4]int{20, 21, 22, 26}

// Symbols is a packed header.
type Symbols [protocol.HeaderSymbols]gf27.Element

// Pack validates h and lays it out with the CRC filled in.
func Pack(h protocol.SuperframeHeader) (Symbols, error) {
	var s Symbols
	if err := h.Validate(); err != nil {
		return s, err
	}

	putBase27(s[posMagic:posMagic+2], uint32(h.Magic))
	s[posVersion] = gf27.Element(h.Version)
	s[posProfile] = gf27.Element(h.Profile)

	offset := h.UEP.Offset()
	for g := 0; g < 3; g++ {
		var u uint8
		for _, sel := range h.UEP[3*g : 3*g+3] {
			u = u*3 + (sel - offset)
		}
		s[posUEP+g] = gf27.Element(u)
	}

	s[posTileW] = gf27.Element(h.Tile.W)
	s[posTileH] = gf27.Element(h.Tile.H)
	s[posSeed] = gf27.Element(h.Seed.A)
	s[posSeed+1] = gf27.Element(h.Seed.B)
	s[posSeed+2] = gf27.Element(h.Seed.S0)

	idx, _ := h.Subword.Index()
	if h.Centered {
		idx += 9
	}
	s[posSubword] = gf27.Element(idx)

	putBase27(s[posHash:posHash+3], h.BandMapHash)
	s[posCoset] = gf27.Element(uint8(h.Coset) + 3*offset)
	putBase27(s[posFrameSeq:posFrameSeq+3], h.FrameSeq)

	if h.Beacon.Enabled {
		s[posBeaconOn] = 1
	}
	s[posSlot] = gf27.Element(h.Beacon.Slot)
	s[posPeriod] = gf27.Element(h.Beacon.Period)

	s.writeCRC()
	return s, nil
}

// Check reports whether every symbol is in range and the CRC matches.
func Check(s Symbols) bool {
	for _, e := range s {
		if !e.Valid() {
			return false
		}
	}
	want := s
	want.writeCRC()
	for _, slot := range crcSlots {
		if want[slot] != s[slot] {
			return false
		}
	}
	return true
}

// Unpack reads the fields back out of s without validating them. A subword
// index outside 0..4 yields the zero SubwordMode, which Validate rejects.
func Unpack(s Symbols) protocol.SuperframeHeader {
	var h protocol.SuperframeHeader
	h.Magic = uint16(getBase27(s[posMagic : posMagic+2]))
	h.Version = uint8(s[posVersion])
	h.Profile = protocol.ProfileID(s[posProfile])

	offset := uint8(s[posCoset]) / 3
	h.Coset = protocol.CosetID(uint8(s[posCoset]) % 3)
	for g := 0; g < 3; g++ {
		u := uint8(s[posUEP+g])
		for j := 2; j >= 0; j-- {
			h.UEP[3*g+j] = u%3 + offset
			u /= 3
		}
	}

	h.Tile = protocol.Tile2D{W: uint16(s[posTileW]), H: uint16(s[posTileH])}
	h.Seed = protocol.ScramblerSeed{A: uint8(s[posSeed]), B: uint8(s[posSeed+1]), S0: uint8(s[posSeed+2])}

	sub := uint8(s[posSubword])
	h.Centered = sub/9 == 1
	if sub/9 <= 1 {
		if mode, err := protocol.SubwordFromIndex(sub % 9); err == nil {
			h.Subword = mode
		}
	}

	h.BandMapHash = getBase27(s[posHash : posHash+3])
	h.FrameSeq = getBase27(s[posFrameSeq : posFrameSeq+3])
	h.Beacon = protocol.BeaconConfig{
		Enabled: s[posBeaconOn] != 0,
		Slot:    uint8(s[posSlot]),
		Period:  uint8(s[posPeriod]),
	}
	return h
}

// Parse checks the CRC, unpacks and validates.
func Parse(s Symbols) (protocol.SuperframeHeader, error) {
	if !Check(s) {
		return protocol.SuperframeHeader{}, ErrCRCMismatch
	}
	h := Unpack(s)
	if err := h.Validate(); err != nil {
		return protocol.SuperframeHeader{}, fmt.Errorf("header: %w", err)
	}
	return h, nil
}

func (s *Symbols) writeCRC() {
	msg := make([]gf27.Trit, 0, 3*(protocol.HeaderSymbols-len(crcSlots)))
	for i, e := range s {
		if isCRCSlot(i) {
			continue
		}
		d := gf27.Digits(e)
		msg = append(msg, d[:]...)
	}
	rem := crc3.Remainder(msg)
	for j, slot := range crcSlots {
		s[slot] = gf27.FromDigits(rem[3*j], rem[3*j+1], rem[3*j+2])
	}
}

func isCRCSlot(i int) bool {
	for _, slot := range crcSlots {
		if slot == i {
			return true
		}
	}
	return false
}

// putBase27 writes v little-endian into dst, truncating to len(dst) digits.
func putBase27(dst []gf27.Element, v uint32) {
	for i := range dst {
		dst[i] = gf27.Element(v % gf27.Size)
		v /= gf27.Size
	}
}

func getBase27(src []gf27.Element) uint32 {
	var v uint32
	for i := len(src) - 1; i >= 0; i-- {
		v = v*gf27.Size + uint32(src[i]%gf27.Size)
	}
	return v
}
