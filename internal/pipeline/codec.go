// Package pipeline orchestrates the protocol stages into whole-frame encode
// and decode.
//
// Encode: words -> 26-trit symbol stream -> tile interleave -> UEP bands with
// RS -> scramble -> beacons, behind the RS-protected header.
// Decode runs the inverse, trusting nothing past the header until it has
// been RS-decoded, CRC-checked and validated.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	logs "github.com/danmuck/t3codec/internal/logging"
	"github.com/danmuck/t3codec/internal/observability"
	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/framing"
	"github.com/danmuck/t3codec/internal/protocol/header"
	"github.com/danmuck/t3codec/internal/protocol/raw"
	"github.com/danmuck/t3codec/internal/protocol/rs"
	"github.com/danmuck/t3codec/internal/protocol/session"
)

// Codec runs frames through the pipeline. It holds only immutable state and
// is safe for concurrent use.
type Codec struct {
	bank   *rs.Bank
	limits Limits
}

// New returns a codec over bank. A nil bank uses rs.DefaultBank.
func New(bank *rs.Bank, limits Limits) *Codec {
	if bank == nil {
		bank = rs.DefaultBank()
	}
	return &Codec{bank: bank, limits: limits}
}

func (c *Codec) Limits() Limits { return c.limits }

func (c *Codec) checkInput(words []protocol.Word27) error {
	if c.limits.MaxInputWords > 0 && len(words) > c.limits.MaxInputWords {
		return stageErr(StageInput, fmt.Errorf("%w: %d > %d", ErrInputTooLarge, len(words), c.limits.MaxInputWords))
	}
	if err := protocol.ValidateWords(words); err != nil {
		return stageErr(StageInput, err)
	}
	return nil
}

// Encode protects rawWords with cfg. A raw profile returns a copy. Protected
// profiles carry 26 trits per word and refuse words whose reserved trit 26 is
// set.
func (c *Codec) Encode(rawWords []protocol.Word27, cfg Config) (out []protocol.Word27, err error) {
	start := time.Now()
	defer func() {
		observability.RecordFrame("encode", cfg.Profile.String(), err == nil, time.Since(start))
		if err != nil {
			logs.Warnf("pipeline.Codec.Encode failed profile=%s err=%v", cfg.Profile, err)
		}
	}()

	if err := c.checkInput(rawWords); err != nil {
		return nil, err
	}
	if !cfg.Profile.Known() {
		return nil, stageErr(StageConfig, fmt.Errorf("%w: %s", protocol.ErrUnknownProfile, cfg.Profile))
	}
	if cfg.Profile == protocol.ProfileRaw {
		return append([]protocol.Word27(nil), rawWords...), nil
	}
	h := cfg.Header()
	if err := h.Validate(); err != nil {
		return nil, stageErr(StageConfig, err)
	}
	for i, w := range rawWords {
		if w.Reserved() != 0 {
			return nil, stageErr(StageInput, fmt.Errorf("%w: word %d", protocol.ErrReservedTrit, i))
		}
	}

	symbols := raw.WordsToSymbols(rawWords)
	if h.Tile.Enabled() {
		symbols = framing.Interleave(framing.PadToTile(symbols, h.Tile), h.Tile)
		logs.Debugf("pipeline.Codec.Encode interleaved tile=%dx%d symbols=%d", h.Tile.W, h.Tile.H, len(symbols))
	}

	body, err := framing.EncodeBands(symbols, h.UEP, c.bank)
	if err != nil {
		return nil, bandStageErr(err)
	}
	body = framing.NewScrambler(h.Seed).Scramble(body)
	body = framing.InsertBeacons(body, h.Beacon, framing.BeaconSymbol(h.Profile, h.FrameSeq, cfg.Health))

	pack, err := header.Pack(h)
	if err != nil {
		return nil, stageErr(StageHeader, err)
	}
	hw, err := header.EncodeWords(pack, c.bank)
	if err != nil {
		return nil, stageErr(StageHeader, err)
	}

	out = make([]protocol.Word27, 0, header.Words+len(body)/protocol.SymbolsPerWord+1)
	out = append(out, hw[:]...)
	out = append(out, protocol.Group(body)...)
	logs.Debugf("pipeline.Codec.Encode complete profile=%s words_in=%d words_out=%d", h.Profile, len(rawWords), len(out))
	return out, nil
}

// Decode recovers the raw words from a protected frame and records the
// validated header in sess. A raw session passes words through. The returned
// words may carry trailing zero words from symbol grouping.
//
// sess may be nil for one-off decodes. It is never updated when any stage
// fails.
func (c *Codec) Decode(words []protocol.Word27, sess *session.Session) (out []protocol.Word27, h protocol.SuperframeHeader, err error) {
	start := time.Now()
	profile := "unknown"
	defer func() {
		observability.RecordFrame("decode", profile, err == nil, time.Since(start))
		if err != nil {
			logs.Warnf("pipeline.Codec.Decode failed words=%d err=%v", len(words), err)
		}
	}()

	if err := c.checkInput(words); err != nil {
		return nil, h, err
	}
	if sess != nil && sess.Raw() {
		profile = protocol.ProfileRaw.String()
		sess.ObserveRaw()
		return append([]protocol.Word27(nil), words...), h, nil
	}

	pack, fixedHeader, err := header.DecodeWords(words, c.bank)
	if err != nil {
		observability.RecordHeaderFailure(headerReason(err))
		return nil, h, stageErr(StageHeader, err)
	}
	h, err = header.Parse(pack)
	if err != nil {
		observability.RecordHeaderFailure(headerReason(err))
		return nil, protocol.SuperframeHeader{}, stageErr(StageHeader, err)
	}
	profile = h.Profile.String()
	logs.Debugf("pipeline.Codec.Decode header profile=%s seq=%d corrected=%d", h.Profile, h.FrameSeq, fixedHeader)

	body := framing.StripBeacons(protocol.Flatten(words[header.Words:]), h.Beacon)
	if extra := len(body) % framing.GroupSymbols; extra > 0 {
		if extra >= protocol.SymbolsPerWord {
			return nil, protocol.SuperframeHeader{}, stageErr(StageBeacon,
				fmt.Errorf("%w: %d symbols past the last band group", protocol.ErrTruncated, extra))
		}
		body = body[:len(body)-extra]
	}
	body = framing.NewScrambler(h.Seed).Descramble(body)

	symbols, stats, err := framing.DecodeBands(body, h.UEP, c.bank)
	recordBands(h.UEP, stats, err)
	logs.Tracef("pipeline.Codec.Decode bands blocks=%d corrected=%v", stats.Blocks, stats.Corrected)
	if err != nil {
		return nil, protocol.SuperframeHeader{}, bandStageErr(err)
	}
	if h.Tile.Enabled() {
		symbols = framing.Deinterleave(symbols, h.Tile)
	}

	out = raw.SymbolsToWords(symbols)
	corrected := fixedHeader + stats.TotalCorrected()
	if sess != nil {
		sess.Observe(h, corrected)
	}
	logs.Debugf("pipeline.Codec.Decode complete profile=%s words_in=%d words_out=%d corrected=%d", h.Profile, len(words), len(out), corrected)
	return out, h, nil
}

func bandStageErr(err error) error {
	var be framing.BandError
	if errors.As(err, &be) {
		return StageError{Stage: StageBands, Band: be.Band, Block: be.Block, Err: err}
	}
	return stageErr(StageBands, err)
}

func headerReason(err error) string {
	switch {
	case errors.Is(err, header.ErrShort):
		return "short"
	case errors.Is(err, header.ErrGroup):
		return "rs"
	case errors.Is(err, header.ErrPadding):
		return "padding"
	case errors.Is(err, header.ErrCRCMismatch):
		return "crc"
	case errors.Is(err, protocol.ErrInvalidSymbol):
		return "symbol"
	default:
		return "invalid"
	}
}

func recordBands(layout protocol.UEPLayout, stats framing.BandStats, err error) {
	failed := -1
	var be framing.BandError
	if errors.As(err, &be) {
		failed = be.Band
	}
	for b, sel := range layout {
		k, kerr := rs.KForSelector(sel)
		if kerr != nil {
			continue
		}
		observability.RecordRSBlocks(k, stats.Blocks, stats.Corrected[b], b != failed)
	}
}
