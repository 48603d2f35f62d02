package protocol

import (
	"fmt"
	"strings"
)

// SubwordMode is the number of leading trits per word that carry payload in
// a reduced-density stream.
type SubwordMode uint8

const (
	SubwordS27 SubwordMode = 27
	SubwordS24 SubwordMode = 24
	SubwordS21 SubwordMode = 21
	SubwordS18 SubwordMode = 18
	SubwordS15 SubwordMode = 15
)

var subwordByIndex = [...]SubwordMode{SubwordS27, SubwordS24, SubwordS21, SubwordS18, SubwordS15}

// Index is the header encoding of m (0..4).
func (m SubwordMode) Index() (uint8, error) {
	for i, s := range subwordByIndex {
		if s == m {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownSubword, uint8(m))
}

// SubwordFromIndex decodes a header subword index.
func SubwordFromIndex(idx uint8) (SubwordMode, error) {
	if int(idx) >= len(subwordByIndex) {
		return 0, fmt.Errorf("%w: index %d", ErrUnknownSubword, idx)
	}
	return subwordByIndex[idx], nil
}

// ParseSubword accepts "S27".."S15" or the bare trit count.
func ParseSubword(raw string) (SubwordMode, error) {
	s := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "S")
	for _, m := range subwordByIndex {
		if s == fmt.Sprint(uint8(m)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSubword, raw)
}

func (m SubwordMode) PayloadTrits() int { return int(m) }

func (m SubwordMode) String() string { return fmt.Sprintf("S%d", uint8(m)) }

// Resolution is a frame size in pixels.
type Resolution struct {
	W uint32
	H uint32
}

// Window is the active area of a smaller mode inside the S27 canvas.
type Window struct {
	X0 uint32
	Y0 uint32
	W  uint32
	H  uint32
}

// StandardResolution returns the nominal frame size carried by m, or the zero
// value for unknown modes.
func (m SubwordMode) StandardResolution() Resolution {
	switch m {
	case SubwordS27:
		return Resolution{W: 7680, H: 4320}
	case SubwordS24:
		return Resolution{W: 3840, H: 2160}
	case SubwordS21:
		return Resolution{W: 1920, H: 1080}
	case SubwordS18:
		return Resolution{W: 1280, H: 720}
	case SubwordS15:
		return Resolution{W: 960, H: 540}
	default:
		return Resolution{}
	}
}

// CenteredWindow centres m's standard resolution inside the S27 canvas.
func (m SubwordMode) CenteredWindow() Window {
	outer := SubwordS27.StandardResolution()
	inner := m.StandardResolution()
	if inner.W == 0 {
		return Window{}
	}
	return Window{
		X0: (outer.W - inner.W) / 2,
		Y0: (outer.H - inner.H) / 2,
		W:  inner.W,
		H:  inner.H,
	}
}
