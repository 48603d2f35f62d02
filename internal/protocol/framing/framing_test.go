package framing

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
	"github.com/danmuck/t3codec/internal/protocol/rs"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func randomSymbols(rng *rand.Rand, n int) []gf27.Element {
	out := make([]gf27.Element, n)
	for i := range out {
		out[i] = gf27.Element(rng.Intn(gf27.Size))
	}
	return out
}

func TestBandsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bank := rs.DefaultBank()
	layouts := []protocol.UEPLayout{
		protocol.UniformLayout(0),
		protocol.UniformLayout(3),
		protocol.LumaPriorityLayout(),
		{1, 2, 3, 3, 2, 1, 1, 2, 3},
	}
	for _, layout := range layouts {
		for _, n := range []int{1, 8, 9, 10, 197, 500} {
			in := randomSymbols(rng, n)
			body, err := EncodeBands(in, layout, bank)
			if err != nil {
				t.Fatalf("encode n=%d: %v", n, err)
			}
			blocks := BlocksFor(n, layout)
			if len(body) != blocks*GroupSymbols {
				t.Fatalf("body length %d want %d", len(body), blocks*GroupSymbols)
			}
			out, stats, err := DecodeBands(body, layout, bank)
			if err != nil {
				t.Fatalf("decode n=%d: %v", n, err)
			}
			if stats.Blocks != blocks || stats.TotalCorrected() != 0 {
				t.Fatalf("unexpected stats %+v", stats)
			}
			if len(out) < n {
				t.Fatalf("decoded %d symbols, want at least %d", len(out), n)
			}
			if diff := cmp.Diff(in, out[:n]); diff != "" {
				t.Fatalf("layout %v n=%d mismatch (-want +got):\n%s", layout, n, diff)
			}
			for _, e := range out[n:] {
				if e != 0 {
					t.Fatalf("padding not zero")
				}
			}
		}
	}
}

func TestBandsEmptyInput(t *testing.T) {
	body, err := EncodeBands(nil, protocol.UniformLayout(1), rs.DefaultBank())
	if err != nil || len(body) != 0 {
		t.Fatalf("empty encode: %v len=%d", err, len(body))
	}
}

func TestBandsCorrectPerBandCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	bank := rs.DefaultBank()
	layout := protocol.LumaPriorityLayout()
	in := randomSymbols(rng, 300)
	body, _ := EncodeBands(in, layout, bank)

	// A burst of nine consecutive symbols lands one error in each band.
	for i := 40; i < 49; i++ {
		body[i] = gf27.Add(body[i], 1)
	}
	out, stats, err := DecodeBands(body, layout, bank)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalCorrected() != 9 {
		t.Fatalf("corrected %d want 9", stats.TotalCorrected())
	}
	if diff := cmp.Diff(in, out[:len(in)]); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBandsFailureReportsBand(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	bank := rs.DefaultBank()
	layout := protocol.UniformLayout(3)
	body, _ := EncodeBands(randomSymbols(rng, 100), layout, bank)
	// Ten errors in band 4, block 0. A bounded-distance decoder can still land
	// on another codeword, so only a reported failure is inspected.
	for i := 0; i < 10; i++ {
		pos := i*protocol.NumBands + 4
		body[pos] = gf27.Add(body[pos], gf27.Element(1+i%26))
	}
	_, _, err := DecodeBands(body, layout, bank)
	if err == nil {
		return
	}
	var be BandError
	if !errors.As(err, &be) || be.Band != 4 || be.Block != 0 {
		t.Fatalf("expected band 4 block 0 error, got %v", err)
	}
	if !errors.Is(err, rs.ErrUncorrectable) {
		t.Fatalf("expected ErrUncorrectable in chain, got %v", err)
	}
}

func TestBandsRejectMisalignedBody(t *testing.T) {
	_, _, err := DecodeBands(make([]gf27.Element, GroupSymbols+9), protocol.UniformLayout(1), rs.DefaultBank())
	if !errors.Is(err, ErrBodyAlignment) {
		t.Fatalf("expected ErrBodyAlignment, got %v", err)
	}
}

func TestInterleaveInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	tiles := []protocol.Tile2D{{W: 1, H: 1}, {W: 3, H: 2}, {W: 5, H: 4}, {W: 26, H: 26}}
	for _, tile := range tiles {
		for _, n := range []int{0, 1, 7, 24, 100} {
			in := randomSymbols(rng, n)
			mid := Interleave(in, tile)
			if diff := cmp.Diff(in, Deinterleave(mid, tile)); diff != "" {
				t.Fatalf("tile %+v n=%d not inverse (-want +got):\n%s", tile, n, diff)
			}
		}
	}
}

func TestInterleaveBoustrophedonOrder(t *testing.T) {
	in := make([]gf27.Element, 12)
	for i := range in {
		in[i] = gf27.Element(i)
	}
	got := Interleave(in, protocol.Tile2D{W: 3, H: 2})
	want := []gf27.Element{0, 1, 2, 5, 4, 3, 6, 7, 8, 11, 10, 9}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(in, Interleave(in, protocol.Tile2D{})); diff != "" {
		t.Fatalf("disabled tile must be identity:\n%s", diff)
	}
}

func TestPadToTile(t *testing.T) {
	tile := protocol.Tile2D{W: 4, H: 2}
	if got := PadToTile(make([]gf27.Element, 9), tile); len(got) != 16 {
		t.Fatalf("padded length %d want 16", len(got))
	}
	if got := PadToTile(make([]gf27.Element, 16), tile); len(got) != 16 {
		t.Fatalf("aligned length changed to %d", len(got))
	}
}

func TestScramblerStateMatchesRecurrence(t *testing.T) {
	for a := uint8(0); a < 6; a++ {
		for b := uint8(0); b < 6; b++ {
			for s0 := uint8(0); s0 < 27; s0 += 4 {
				s := NewScrambler(protocol.ScramblerSeed{A: a, B: b, S0: s0})
				state := s0 % 3
				for i := 0; i < 40; i++ {
					state = (a%3*state + b%3) % 3
					if got := s.StateAt(i); got != state {
						t.Fatalf("seed (%d,%d,%d) i=%d: state %d want %d", a, b, s0, i, got, state)
					}
				}
			}
		}
	}
}

func TestScrambleDescrambleInverse(t *testing.T) {
	seeds := []protocol.ScramblerSeed{{A: 1, B: 1, S0: 1}, {A: 2, B: 0, S0: 2}, {A: 0, B: 2, S0: 0}, {A: 26, B: 25, S0: 24}}
	for _, seed := range seeds {
		s := NewScrambler(seed)
		for i := 0; i < 12; i++ {
			for v := 0; v < gf27.Size; v++ {
				e := gf27.Element(v)
				if got := s.DescrambleSymbol(s.ScrambleSymbol(e, i), i); got != e {
					t.Fatalf("seed %+v i=%d v=%d: got %d", seed, i, v, got)
				}
			}
		}
		in := randomSymbols(rand.New(rand.NewSource(5)), 60)
		if diff := cmp.Diff(in, s.Descramble(s.Scramble(in))); diff != "" {
			t.Fatalf("slice inverse failed:\n%s", diff)
		}
	}
}

func TestBeaconInsertStrip(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	cfg := protocol.BeaconConfig{Enabled: true, Slot: 4, Period: 3}
	value := BeaconSymbol(protocol.ProfileP2, 7, 1)
	for _, n := range []int{0, 1, 9, 26, 234, 468} {
		in := randomSymbols(rng, n)
		with := InsertBeacons(in, cfg, value)
		if len(with)%protocol.SymbolsPerWord != 0 {
			t.Fatalf("n=%d: output %d not whole words", n, len(with))
		}
		for w := 0; w*protocol.SymbolsPerWord < len(with); w += int(cfg.Period) {
			if with[w*protocol.SymbolsPerWord+int(cfg.Slot)] != value {
				t.Fatalf("n=%d: beacon missing in word %d", n, w)
			}
		}
		stripped := StripBeacons(with, cfg)
		if len(stripped) < n || len(stripped)-n >= protocol.SymbolsPerWord {
			t.Fatalf("n=%d: stripped length %d", n, len(stripped))
		}
		if diff := cmp.Diff(in, stripped[:n]); diff != "" {
			t.Fatalf("n=%d mismatch (-want +got):\n%s", n, diff)
		}
		for _, b := range Beacons(with, cfg) {
			if b != value {
				t.Fatalf("beacon value %d want %d", b, value)
			}
		}
	}
}

func TestBeaconSymbol(t *testing.T) {
	if got := BeaconSymbol(protocol.ProfileP3, 6, 2); got != (2+5*1+15*2)%27 {
		t.Fatalf("beacon symbol = %d", got)
	}
	in := []gf27.Element{1, 2, 3}
	if diff := cmp.Diff(in, InsertBeacons(in, protocol.BeaconConfig{Slot: 1, Period: 2}, 9)); diff != "" {
		t.Fatalf("disabled beacons must be identity:\n%s", diff)
	}
}
