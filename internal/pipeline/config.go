package pipeline

import (
	"github.com/danmuck/t3codec/internal/protocol"
)

// Config is everything the encoder needs for one frame. Every field except
// Health travels in the superframe header.
type Config struct {
	Profile     protocol.ProfileID
	UEP         protocol.UEPLayout
	Tile        protocol.Tile2D
	Seed        protocol.ScramblerSeed
	Beacon      protocol.BeaconConfig
	Subword     protocol.SubwordMode
	Centered    bool
	Coset       protocol.CosetID
	FrameSeq    uint32
	BandMapHash uint32
	// Health is folded into beacon symbols only.
	Health uint8
}

// DefaultTile is the tile ForProfile picks for interleaved profiles.
var DefaultTile = protocol.Tile2D{W: 9, H: 9}

// DefaultConfig is P2 with a uniform layout and no beacons.
func DefaultConfig() Config {
	return ForProfile(protocol.ProfileP2)
}

// ForProfile returns a config whose bands all use the profile's own RS code.
func ForProfile(p protocol.ProfileID) Config {
	cfg := Config{
		Profile:  p,
		Seed:     protocol.DefaultSeed(),
		Subword:  protocol.SubwordS27,
		Centered: true,
	}
	if sel, err := p.Selector(); err == nil {
		cfg.UEP = protocol.UniformLayout(sel)
	} else {
		cfg.UEP = protocol.UniformLayout(1)
	}
	if p.Interleaved() {
		cfg.Tile = DefaultTile
	}
	return cfg
}

// Header builds the superframe header describing cfg.
func (c Config) Header() protocol.SuperframeHeader {
	return protocol.SuperframeHeader{
		Magic:       protocol.Magic,
		Version:     protocol.Version,
		Profile:     c.Profile,
		UEP:         c.UEP,
		Tile:        c.Tile,
		Seed:        c.Seed,
		BandMapHash: c.BandMapHash % protocol.SeqModulus,
		FrameSeq:    c.FrameSeq % protocol.SeqModulus,
		Subword:     c.Subword,
		Centered:    c.Centered,
		Coset:       c.Coset,
		Beacon:      c.Beacon,
	}
}

// Validate checks cfg against the header layout. Raw configs only need a
// known profile.
func (c Config) Validate() error {
	if c.Profile == protocol.ProfileRaw {
		return nil
	}
	return c.Header().Validate()
}

// Limits bounds the work accepted by one call.
type Limits struct {
	MaxInputWords int
}

func DefaultLimits() Limits {
	return Limits{
		MaxInputWords: 1 << 20,
	}
}
