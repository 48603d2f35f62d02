package header

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
	"github.com/danmuck/t3codec/internal/protocol/rs"
	"github.com/google/go-cmp/cmp"
)

func sampleHeader() protocol.SuperframeHeader {
	h := protocol.DefaultHeader()
	h.Profile = protocol.ProfileP5
	h.UEP = protocol.UEPLayout{1, 2, 3, 1, 2, 3, 3, 2, 1}
	h.Tile = protocol.Tile2D{W: 4, H: 3}
	h.Seed = protocol.ScramblerSeed{A: 2, B: 5, S0: 26}
	h.BandMapHash = 12345
	h.FrameSeq = 19682
	h.Subword = protocol.SubwordS18
	h.Centered = true
	h.Coset = protocol.CosetC2
	h.Beacon = protocol.BeaconConfig{Enabled: true, Slot: 8, Period: 26}
	return h
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, h := range []protocol.SuperframeHeader{protocol.DefaultHeader(), sampleHeader()} {
		s, err := Pack(h)
		if err != nil {
			t.Fatalf("pack: %v", err)
		}
		if !Check(s) {
			t.Fatalf("freshly packed header fails check")
		}
		if diff := cmp.Diff(h, Unpack(s)); diff != "" {
			t.Fatalf("unpack mismatch (-want +got):\n%s", diff)
		}
		if s[0] != 0 || s[1] != 6 || s[2] != 1 {
			t.Fatalf("unexpected magic/version symbols: %v", s[:3])
		}
	}
}

func TestUEPDigitsFirstBandMostSignificant(t *testing.T) {
	h := protocol.DefaultHeader()
	h.UEP = protocol.UEPLayout{2, 0, 1, 0, 0, 0, 0, 0, 0}
	s, err := Pack(h)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if s[posUEP] != 2*9+0*3+1 {
		t.Fatalf("uep symbol = %d", s[posUEP])
	}
	if s[posCoset] != 0 {
		t.Fatalf("offset must be zero without selector 3, got %d", s[posCoset])
	}
}

func TestPackRejectsInvalidHeader(t *testing.T) {
	h := protocol.DefaultHeader()
	h.UEP[0], h.UEP[1] = 0, 3
	if _, err := Pack(h); !errors.Is(err, protocol.ErrUEPSpan) {
		t.Fatalf("expected ErrUEPSpan, got %v", err)
	}
}

func TestSingleTritFlipFailsCheck(t *testing.T) {
	s, err := Pack(sampleHeader())
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	for i := range s {
		for digit := 0; digit < 3; digit++ {
			for delta := gf27.Trit(1); delta <= 2; delta++ {
				flipped := s
				d := gf27.Digits(flipped[i])
				d[digit] = (d[digit] + delta) % 3
				flipped[i] = gf27.FromDigits(d[0], d[1], d[2])
				if Check(flipped) {
					t.Fatalf("flip at symbol %d digit %d (+%d) passed check", i, digit, delta)
				}
			}
		}
	}
}

func TestCheckRejectsOutOfRangeSymbol(t *testing.T) {
	s, _ := Pack(protocol.DefaultHeader())
	s[5] = 27
	if Check(s) {
		t.Fatalf("symbol 27 passed check")
	}
}

func TestParseValidatesAfterCRC(t *testing.T) {
	s, _ := Pack(protocol.DefaultHeader())
	s[posSlot] = 11
	s.writeCRC()
	if _, err := Parse(s); !errors.Is(err, protocol.ErrBeaconRange) {
		t.Fatalf("expected ErrBeaconRange, got %v", err)
	}
	s[posSlot] = 0
	if _, err := Parse(s); !errors.Is(err, ErrCRCMismatch) {
		t.Fatalf("expected ErrCRCMismatch, got %v", err)
	}
}

func TestTransportCorrectsPerGroup(t *testing.T) {
	bank := rs.DefaultBank()
	s, _ := Pack(sampleHeader())
	words, err := EncodeWords(s, bank)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if words[Words-1][7] != 0 || words[Words-1][8] != 0 {
		t.Fatalf("fill symbols not zero: %v", words[Words-1])
	}

	rng := rand.New(rand.NewSource(21))
	for trial := 0; trial < 100; trial++ {
		stream := protocol.Flatten(words[:])
		for g := 0; g < 2; g++ {
			for _, p := range rng.Perm(rs.N)[:4] {
				stream[g*rs.N+p] = gf27.Add(stream[g*rs.N+p], gf27.Element(1+rng.Intn(26)))
			}
		}
		got, corrected, err := DecodeWords(protocol.Group(stream), bank)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if corrected != 8 {
			t.Fatalf("trial %d: corrected=%d want 8", trial, corrected)
		}
		if got != s {
			t.Fatalf("trial %d: symbols mismatch", trial)
		}
	}
}

func TestTransportRejectsNonzeroPad(t *testing.T) {
	bank := rs.DefaultBank()
	s, _ := Pack(protocol.DefaultHeader())
	var b [rs.HeaderK]gf27.Element
	copy(b[:], s[groupA:])
	b[rs.HeaderK-1] = 4

	stream := make([]gf27.Element, 2*rs.N)
	if err := bank.Header().EncodeTo(stream[:rs.N], s[:groupA]); err != nil {
		t.Fatalf("encode a: %v", err)
	}
	if err := bank.Header().EncodeTo(stream[rs.N:], b[:]); err != nil {
		t.Fatalf("encode b: %v", err)
	}
	if _, _, err := DecodeWords(protocol.Group(stream), bank); !errors.Is(err, ErrPadding) {
		t.Fatalf("expected ErrPadding, got %v", err)
	}
}

func TestTransportShortInput(t *testing.T) {
	if _, _, err := DecodeWords(make([]protocol.Word27, Words-1), rs.DefaultBank()); !errors.Is(err, ErrShort) {
		t.Fatalf("expected ErrShort, got %v", err)
	}
}
