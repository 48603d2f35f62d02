package config

import (
	"fmt"
	"strings"

	"github.com/danmuck/t3codec/internal/pipeline"
	"github.com/danmuck/t3codec/internal/protocol"
)

// Pipeline converts c into the codec's runtime configuration.
func (c CodecConfig) Pipeline() (pipeline.Config, pipeline.Limits, error) {
	profile, err := protocol.ParseProfile(c.Profile)
	if err != nil {
		return pipeline.Config{}, pipeline.Limits{}, err
	}
	cfg := pipeline.ForProfile(profile)

	switch {
	case len(c.UEP) == protocol.NumBands:
		for i, sel := range c.UEP {
			if sel < 0 || sel > 3 {
				return pipeline.Config{}, pipeline.Limits{}, fmt.Errorf("%w: band %d selector %d", protocol.ErrUEPSelector, i, sel)
			}
			cfg.UEP[i] = uint8(sel)
		}
	case len(c.UEP) != 0:
		return pipeline.Config{}, pipeline.Limits{}, fmt.Errorf("%w: %d selectors", protocol.ErrUEPSelector, len(c.UEP))
	default:
		switch strings.ToLower(strings.TrimSpace(c.UEPPreset)) {
		case "", PresetProfile, PresetUniform:
		case PresetLuma:
			cfg.UEP = protocol.LumaPriorityLayout()
		default:
			return pipeline.Config{}, pipeline.Limits{}, fmt.Errorf("unknown uep preset %q", c.UEPPreset)
		}
	}

	if c.Subword != "" {
		mode, err := protocol.ParseSubword(c.Subword)
		if err != nil {
			return pipeline.Config{}, pipeline.Limits{}, err
		}
		cfg.Subword = mode
	}
	cfg.Centered = c.Centered
	cfg.Coset = protocol.CosetID(c.Coset)
	cfg.FrameSeq = c.FrameSeq
	cfg.BandMapHash = c.BandMapHash
	cfg.Health = c.Health
	if c.Tile.W != 0 || c.Tile.H != 0 {
		cfg.Tile = protocol.Tile2D{W: c.Tile.W, H: c.Tile.H}
	}
	cfg.Seed = protocol.ScramblerSeed{A: c.Seed.A, B: c.Seed.B, S0: c.Seed.S0}
	cfg.Beacon = protocol.BeaconConfig{Enabled: c.Beacon.Enabled, Slot: c.Beacon.Slot, Period: c.Beacon.Period}

	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, pipeline.Limits{}, err
	}
	limits := pipeline.DefaultLimits()
	if c.Limits.MaxInputWords > 0 {
		limits.MaxInputWords = c.Limits.MaxInputWords
	}
	return cfg, limits, nil
}
