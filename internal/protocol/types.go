package protocol

import (
	"fmt"
	"strings"

	"github.com/danmuck/t3codec/internal/protocol/rs"
)

const (
	Magic   uint16 = 0x0A2
	Version uint8  = 1

	SymbolsPerWord      = 9
	TritsPerWord        = 27
	PayloadTritsPerWord = 26
	NumBands            = 9
	HeaderSymbols       = 27

	// SeqModulus bounds values carried in three header symbols.
	SeqModulus uint32 = 27 * 27 * 27
	// MaxFieldValue bounds values carried in one header symbol.
	MaxFieldValue = 26
)

// ProfileID selects the protection profile of a frame.
type ProfileID uint8

const (
	ProfileP1  ProfileID = 0 // RS(26,24), t=1
	ProfileP2  ProfileID = 1 // RS(26,22), t=2
	ProfileP3  ProfileID = 2 // RS(26,20), t=3
	ProfileP4  ProfileID = 3 // RS(26,18), t=4
	ProfileP5  ProfileID = 4 // RS(26,22) with 2D interleave
	ProfileRaw ProfileID = 0xFF
)

// Known reports whether p is one of the defined profiles.
func (p ProfileID) Known() bool {
	switch p {
	case ProfileP1, ProfileP2, ProfileP3, ProfileP4, ProfileP5, ProfileRaw:
		return true
	default:
		return false
	}
}

// Selector returns the band selector matching the profile's own RS strength.
func (p ProfileID) Selector() (uint8, error) {
	switch p {
	case ProfileP1:
		return 0, nil
	case ProfileP2, ProfileP5:
		return 1, nil
	case ProfileP3:
		return 2, nil
	case ProfileP4:
		return 3, nil
	case ProfileRaw:
		return 0, fmt.Errorf("%w: raw profile has no rs selector", ErrUnknownProfile)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownProfile, uint8(p))
	}
}

// K returns the payload length of the profile's RS code.
func (p ProfileID) K() (int, error) {
	sel, err := p.Selector()
	if err != nil {
		return 0, err
	}
	return rs.KForSelector(sel)
}

// Interleaved reports whether the profile requires the 2D tile interleave.
func (p ProfileID) Interleaved() bool { return p == ProfileP5 }

func (p ProfileID) String() string {
	switch p {
	case ProfileP1:
		return "p1"
	case ProfileP2:
		return "p2"
	case ProfileP3:
		return "p3"
	case ProfileP4:
		return "p4"
	case ProfileP5:
		return "p5"
	case ProfileRaw:
		return "raw"
	default:
		return fmt.Sprintf("profile(%d)", uint8(p))
	}
}

// ParseProfile accepts "raw" and "p1".."p5", case-insensitive.
func ParseProfile(raw string) (ProfileID, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "raw":
		return ProfileRaw, nil
	case "p1":
		return ProfileP1, nil
	case "p2":
		return ProfileP2, nil
	case "p3":
		return ProfileP3, nil
	case "p4":
		return ProfileP4, nil
	case "p5":
		return ProfileP5, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, raw)
	}
}

// CosetID tags the sub-lattice a frame was produced on.
type CosetID uint8

const (
	CosetC0 CosetID = 0
	CosetC1 CosetID = 1
	CosetC2 CosetID = 2
)

func (c CosetID) Valid() bool { return c <= CosetC2 }

// UEPLayout assigns a band selector (0..3, see rs.KForSelector) to each of
// the nine symbol-slot bands.
type UEPLayout [NumBands]uint8

// UniformLayout returns a layout with every band on selector sel.
func UniformLayout(sel uint8) UEPLayout {
	var u UEPLayout
	for i := range u {
		u[i] = sel % 4
	}
	return u
}

// LumaPriorityLayout puts bands 0, 3 and 6 on selector 2 and the rest on 1.
func LumaPriorityLayout() UEPLayout {
	u := UniformLayout(1)
	u[0], u[3], u[6] = 2, 2, 2
	return u
}

// Offset is the base selector the header stores digits relative to. The
// header carries one trit per band, so a layout can span at most three
// adjacent selectors.
func (u UEPLayout) Offset() uint8 {
	for _, s := range u {
		if s == 3 {
			return 1
		}
	}
	return 0
}

func (u UEPLayout) Validate() error {
	lo, hi := uint8(3), uint8(0)
	for i, s := range u {
		if s > 3 {
			return fmt.Errorf("%w: band %d selector %d", ErrUEPSelector, i, s)
		}
		lo = min(lo, s)
		hi = max(hi, s)
	}
	if hi-lo > 2 {
		return fmt.Errorf("%w: selectors %d..%d", ErrUEPSpan, lo, hi)
	}
	return nil
}

// Tile2D is the boustrophedon tile geometry. Zero in either dimension disables it.
type Tile2D struct {
	W uint16
	H uint16
}

func (t Tile2D) Enabled() bool { return t.W > 0 && t.H > 0 }

func (t Tile2D) Area() int {
	if !t.Enabled() {
		return 0
	}
	return int(t.W) * int(t.H)
}

func (t Tile2D) Validate() error {
	if t.W > MaxFieldValue || t.H > MaxFieldValue {
		return fmt.Errorf("%w: %dx%d", ErrTileRange, t.W, t.H)
	}
	return nil
}

// ScramblerSeed drives state <- (A*state + B) mod 3, starting from S0.
type ScramblerSeed struct {
	A  uint8
	B  uint8
	S0 uint8
}

// DefaultSeed is the seed used when none is configured.
func DefaultSeed() ScramblerSeed { return ScramblerSeed{A: 1, B: 1, S0: 1} }

func (s ScramblerSeed) Validate() error {
	if s.A > MaxFieldValue || s.B > MaxFieldValue || s.S0 > MaxFieldValue {
		return fmt.Errorf("%w: a=%d b=%d s0=%d", ErrSeedRange, s.A, s.B, s.S0)
	}
	return nil
}

// BeaconConfig places one pilot symbol at Slot in every Period-th word.
type BeaconConfig struct {
	Enabled bool
	Slot    uint8
	Period  uint8
}

// Active reports whether beacons are actually inserted.
func (b BeaconConfig) Active() bool { return b.Enabled && b.Period > 0 }

func (b BeaconConfig) Validate() error {
	if b.Slot >= SymbolsPerWord {
		return fmt.Errorf("%w: slot %d", ErrBeaconRange, b.Slot)
	}
	if b.Period > MaxFieldValue {
		return fmt.Errorf("%w: period %d", ErrBeaconRange, b.Period)
	}
	if b.Enabled && b.Period == 0 {
		return fmt.Errorf("%w: enabled with zero period", ErrBeaconRange)
	}
	return nil
}

// SuperframeHeader is the self-describing configuration block sent ahead of
// every protected frame.
type SuperframeHeader struct {
	Magic       uint16
	Version     uint8
	Profile     ProfileID
	UEP         UEPLayout
	Tile        Tile2D
	Seed        ScramblerSeed
	BandMapHash uint32
	FrameSeq    uint32
	Subword     SubwordMode
	Centered    bool
	Coset       CosetID
	Beacon      BeaconConfig
}

// DefaultHeader returns a P2 header with a uniform layout.
func DefaultHeader() SuperframeHeader {
	return SuperframeHeader{
		Magic:    Magic,
		Version:  Version,
		Profile:  ProfileP2,
		UEP:      UniformLayout(1),
		Seed:     DefaultSeed(),
		Subword:  SubwordS27,
		Centered: true,
	}
}

// Validate checks that every field fits the fixed 27-symbol layout.
func (h SuperframeHeader) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: 0x%03x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if !h.Profile.Known() || h.Profile == ProfileRaw {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, h.Profile)
	}
	if err := h.UEP.Validate(); err != nil {
		return err
	}
	if err := h.Tile.Validate(); err != nil {
		return err
	}
	if h.Profile.Interleaved() && !h.Tile.Enabled() {
		return fmt.Errorf("%w: %s", ErrTileRequired, h.Profile)
	}
	if err := h.Seed.Validate(); err != nil {
		return err
	}
	if h.BandMapHash >= SeqModulus {
		return fmt.Errorf("%w: band map hash %d", ErrFieldRange, h.BandMapHash)
	}
	if h.FrameSeq >= SeqModulus {
		return fmt.Errorf("%w: frame seq %d", ErrFieldRange, h.FrameSeq)
	}
	if _, err := h.Subword.Index(); err != nil {
		return err
	}
	if !h.Coset.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCoset, h.Coset)
	}
	return h.Beacon.Validate()
}
