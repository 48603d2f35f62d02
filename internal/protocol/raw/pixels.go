// Package raw bridges quantised pixels and byte streams to Word27 payloads.
package raw

import (
	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
)

const (
	MaxLuma     = 242
	ChromaRange = 40

	lumaTrits   = 5
	chromaTrits = 4
	pixelTrits  = lumaTrits + 2*chromaTrits
)

// Pixel is one quantised YCbCr sample: Y in [0,242], Cb and Cr in [-40,40].
type Pixel struct {
	Y  uint16
	Cb int16
	Cr int16
}

// Clamp forces p into the quantiser's range.
func (p Pixel) Clamp() Pixel {
	return Pixel{
		Y:  min(p.Y, MaxLuma),
		Cb: min(max(p.Cb, -ChromaRange), ChromaRange),
		Cr: min(max(p.Cr, -ChromaRange), ChromaRange),
	}
}

func putDigits(dst []protocol.Trit, v int) {
	for i := range dst {
		dst[i] = protocol.Trit(v % 3)
		v /= 3
	}
}

func digitsValue(src []protocol.Trit) int {
	v := 0
	for i := len(src) - 1; i >= 0; i-- {
		v = v*3 + int(src[i]%3)
	}
	return v
}

func packPixel(dst []protocol.Trit, p Pixel) {
	p = p.Clamp()
	putDigits(dst[:lumaTrits], int(p.Y))
	putDigits(dst[lumaTrits:lumaTrits+chromaTrits], int(p.Cb)+ChromaRange)
	putDigits(dst[lumaTrits+chromaTrits:pixelTrits], int(p.Cr)+ChromaRange)
}

func unpackPixel(src []protocol.Trit) Pixel {
	return Pixel{
		Y:  uint16(digitsValue(src[:lumaTrits])),
		Cb: int16(digitsValue(src[lumaTrits:lumaTrits+chromaTrits]) - ChromaRange),
		Cr: int16(digitsValue(src[lumaTrits+chromaTrits:pixelTrits]) - ChromaRange),
	}
}

// PackPixels stores two clamped pixels in the first 26 trits of a word.
// Trit 26 is reserved and left at zero.
func PackPixels(p0, p1 Pixel) protocol.Word27 {
	var t [protocol.TritsPerWord]protocol.Trit
	packPixel(t[:pixelTrits], p0)
	packPixel(t[pixelTrits:2*pixelTrits], p1)
	return protocol.WordFromTrits(t)
}

// UnpackPixels is the inverse of PackPixels. Luma digits that decode above
// 242 are clamped.
func UnpackPixels(w protocol.Word27) (Pixel, Pixel) {
	t := w.Trits()
	return unpackPixel(t[:pixelTrits]).Clamp(), unpackPixel(t[pixelTrits : 2*pixelTrits]).Clamp()
}

// EncodePixels packs pixels two per word; an odd count is completed with a
// zero pixel.
func EncodePixels(px []Pixel) []protocol.Word27 {
	out := make([]protocol.Word27, 0, (len(px)+1)/2)
	for i := 0; i < len(px); i += 2 {
		var second Pixel
		if i+1 < len(px) {
			second = px[i+1]
		}
		out = append(out, PackPixels(px[i], second))
	}
	return out
}

// DecodePixels returns two pixels per word.
func DecodePixels(words []protocol.Word27) []Pixel {
	out := make([]Pixel, 0, 2*len(words))
	for _, w := range words {
		a, b := UnpackPixels(w)
		out = append(out, a, b)
	}
	return out
}

// WordsToSymbols concatenates the 26 payload trits of each word and regroups
// them three per symbol, zero-filling the last symbol. Trit 26 of every word
// is reserved and not carried.
func WordsToSymbols(words []protocol.Word27) []gf27.Element {
	trits := make([]protocol.Trit, 0, len(words)*protocol.PayloadTritsPerWord+2)
	for _, w := range words {
		t := w.Trits()
		trits = append(trits, t[:protocol.PayloadTritsPerWord]...)
	}
	for len(trits)%3 != 0 {
		trits = append(trits, 0)
	}
	out := make([]gf27.Element, len(trits)/3)
	for i := range out {
		out[i] = gf27.FromDigits(trits[3*i], trits[3*i+1], trits[3*i+2])
	}
	return out
}

// SymbolsToWords is the inverse of WordsToSymbols. Only whole 26-trit groups
// become words; leftover trits from the symbol fill are dropped.
func SymbolsToWords(symbols []gf27.Element) []protocol.Word27 {
	trits := make([]protocol.Trit, 0, 3*len(symbols))
	for _, e := range symbols {
		d := gf27.Digits(e)
		trits = append(trits, d[:]...)
	}
	out := make([]protocol.Word27, len(trits)/protocol.PayloadTritsPerWord)
	for i := range out {
		var t [protocol.TritsPerWord]protocol.Trit
		copy(t[:], trits[i*protocol.PayloadTritsPerWord:(i+1)*protocol.PayloadTritsPerWord])
		out[i] = protocol.WordFromTrits(t)
	}
	return out
}
