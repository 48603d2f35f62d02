package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// CodecConfig is the on-disk form of a pipeline configuration.
type CodecConfig struct {
	Profile     string       `toml:"profile" json:"profile,omitempty"`
	UEPPreset   string       `toml:"uep_preset" json:"uep_preset,omitempty"`
	UEP         []int        `toml:"uep" json:"uep,omitempty"`
	Subword     string       `toml:"subword" json:"subword,omitempty"`
	Centered    bool         `toml:"centered" json:"centered,omitempty"`
	Coset       uint8        `toml:"coset" json:"coset,omitempty"`
	FrameSeq    uint32       `toml:"frame_seq" json:"frame_seq,omitempty"`
	BandMapHash uint32       `toml:"band_map_hash" json:"band_map_hash,omitempty"`
	Health      uint8        `toml:"health" json:"health,omitempty"`
	Tile        TileConfig   `toml:"tile" json:"tile,omitempty"`
	Seed        SeedConfig   `toml:"seed" json:"seed,omitempty"`
	Beacon      BeaconConfig `toml:"beacon" json:"beacon,omitempty"`
	Limits      LimitsConfig `toml:"limits" json:"limits,omitempty"`
}

type TileConfig struct {
	W uint16 `toml:"w" json:"w,omitempty"`
	H uint16 `toml:"h" json:"h,omitempty"`
}

type SeedConfig struct {
	A  uint8 `toml:"a" json:"a,omitempty"`
	B  uint8 `toml:"b" json:"b,omitempty"`
	S0 uint8 `toml:"s0" json:"s0,omitempty"`
}

type BeaconConfig struct {
	Enabled bool  `toml:"enabled" json:"enabled,omitempty"`
	Slot    uint8 `toml:"slot" json:"slot,omitempty"`
	Period  uint8 `toml:"period" json:"period,omitempty"`
}

type LimitsConfig struct {
	MaxInputWords int `toml:"max_input_words" json:"max_input_words,omitempty"`
}

// UEP presets.
const (
	PresetProfile = "profile"
	PresetUniform = "uniform"
	PresetLuma    = "luma"
)

// DefaultCodecConfig mirrors pipeline.DefaultConfig.
func DefaultCodecConfig() CodecConfig {
	return CodecConfig{
		Profile:   "p2",
		UEPPreset: PresetProfile,
		Subword:   "S27",
		Centered:  true,
		Seed:      SeedConfig{A: 1, B: 1, S0: 1},
		Limits:    LimitsConfig{MaxInputWords: 1 << 20},
	}
}

// LoadCodecConfig reads path over the defaults and validates the result.
func LoadCodecConfig(path string) (CodecConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CodecConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := ParseCodecConfig(data)
	if err != nil {
		return CodecConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

// ParseCodecConfig decodes TOML over the defaults and validates the result.
func ParseCodecConfig(data []byte) (CodecConfig, error) {
	cfg := DefaultCodecConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return CodecConfig{}, err
	}
	if strings.TrimSpace(cfg.UEPPreset) == "" && len(cfg.UEP) == 0 {
		cfg.UEPPreset = PresetProfile
	}
	if err := ValidateCodecConfig(cfg); err != nil {
		return CodecConfig{}, err
	}
	return cfg, nil
}

// Encode renders cfg as TOML.
func (c CodecConfig) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func ValidateCodecConfig(cfg CodecConfig) error {
	if strings.TrimSpace(cfg.Profile) == "" {
		return fmt.Errorf("codec config missing profile")
	}
	if len(cfg.UEP) != 0 && len(cfg.UEP) != 9 {
		return fmt.Errorf("codec config uep must list 9 selectors, got %d", len(cfg.UEP))
	}
	if cfg.Limits.MaxInputWords < 0 {
		return fmt.Errorf("codec config max_input_words must not be negative")
	}
	if _, _, err := cfg.Pipeline(); err != nil {
		return fmt.Errorf("codec config invalid: %w", err)
	}
	return nil
}
