package pipeline

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/framing"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
	"github.com/danmuck/t3codec/internal/protocol/header"
	"github.com/danmuck/t3codec/internal/protocol/rs"
	"github.com/danmuck/t3codec/internal/protocol/session"
	"github.com/danmuck/t3codec/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// randomWords fills the 26 payload trits of each word; trit 26 stays zero.
func randomWords(rng *rand.Rand, n int) []protocol.Word27 {
	out := make([]protocol.Word27, n)
	for i := range out {
		var t [protocol.TritsPerWord]protocol.Trit
		for j := 0; j < protocol.PayloadTritsPerWord; j++ {
			t[j] = protocol.Trit(rng.Intn(3))
		}
		out[i] = protocol.WordFromTrits(t)
	}
	return out
}

func requirePrefix(t *testing.T, want, got []protocol.Word27) {
	t.Helper()
	if len(got) < len(want) {
		t.Fatalf("decoded %d words, want at least %d", len(got), len(want))
	}
	if diff := cmp.Diff(want, got[:len(want)]); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	for i, w := range got[len(want):] {
		if w != (protocol.Word27{}) {
			t.Fatalf("trailing word %d not zero: %v", i, w)
		}
	}
}

func TestRoundTripP2FullConfig(t *testing.T) {
	testlog.Start(t)
	rng := rand.New(rand.NewSource(42))
	codec := New(nil, DefaultLimits())

	cfg := DefaultConfig()
	cfg.UEP = protocol.LumaPriorityLayout()
	cfg.Tile = protocol.Tile2D{W: 5, H: 3}
	cfg.Seed = protocol.ScramblerSeed{A: 2, B: 1, S0: 7}
	cfg.Beacon = protocol.BeaconConfig{Enabled: true, Slot: 3, Period: 4}
	cfg.FrameSeq = 77
	cfg.BandMapHash = 4242
	cfg.Coset = protocol.CosetC1
	cfg.Health = 2

	for _, n := range []int{1, 13, 100, 257} {
		in := randomWords(rng, n)
		protected, err := codec.Encode(in, cfg)
		if err != nil {
			t.Fatalf("n=%d encode: %v", n, err)
		}
		sess := session.New(protocol.ProfileP2)
		out, h, err := codec.Decode(protected, sess)
		if err != nil {
			t.Fatalf("n=%d decode: %v", n, err)
		}
		requirePrefix(t, in, out)
		if diff := cmp.Diff(cfg.Header(), h); diff != "" {
			t.Fatalf("header mismatch (-want +got):\n%s", diff)
		}
		last, ok := sess.LastSeen()
		if !ok || last != h || sess.Frames() != 1 {
			t.Fatalf("session not updated: ok=%v frames=%d", ok, sess.Frames())
		}
	}
}

func TestRoundTripEveryProfile(t *testing.T) {
	testlog.Start(t)
	rng := rand.New(rand.NewSource(7))
	codec := New(rs.DefaultBank(), DefaultLimits())
	in := randomWords(rng, 90)
	for _, p := range []protocol.ProfileID{protocol.ProfileP1, protocol.ProfileP2, protocol.ProfileP3, protocol.ProfileP4, protocol.ProfileP5} {
		cfg := ForProfile(p)
		protected, err := codec.Encode(in, cfg)
		if err != nil {
			t.Fatalf("%s encode: %v", p, err)
		}
		out, h, err := codec.Decode(protected, nil)
		if err != nil {
			t.Fatalf("%s decode: %v", p, err)
		}
		if h.Profile != p {
			t.Fatalf("header profile %s want %s", h.Profile, p)
		}
		requirePrefix(t, in, out)
	}
}

func TestEmptyFrame(t *testing.T) {
	testlog.Start(t)
	codec := New(nil, DefaultLimits())
	protected, err := codec.Encode(nil, DefaultConfig())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(protected) != header.Words {
		t.Fatalf("empty frame has %d words, want header only", len(protected))
	}
	out, _, err := codec.Decode(protected, nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("decode empty: %v len=%d", err, len(out))
	}
}

func TestRawProfileIsIdentity(t *testing.T) {
	testlog.Start(t)
	codec := New(nil, DefaultLimits())
	in := []protocol.Word27{{1, 2, 3, 4, 5, 6, 7, 8, 26}, {9}}
	protected, err := codec.Encode(in, ForProfile(protocol.ProfileRaw))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if diff := cmp.Diff(in, protected); diff != "" {
		t.Fatalf("raw encode changed words:\n%s", diff)
	}
	sess := session.New(protocol.ProfileRaw)
	out, _, err := codec.Decode(protected, sess)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("raw decode changed words:\n%s", diff)
	}
	if sess.Frames() != 1 {
		t.Fatalf("raw frame not counted")
	}
	if _, ok := sess.LastSeen(); ok {
		t.Fatalf("raw frame must not record a header")
	}
}

func TestBurstWithinCapacityIsCorrected(t *testing.T) {
	testlog.Start(t)
	rng := rand.New(rand.NewSource(9))
	codec := New(nil, DefaultLimits())
	cfg := ForProfile(protocol.ProfileP5)
	in := randomWords(rng, 200)
	protected, err := codec.Encode(in, cfg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Two consecutive body words: each band takes two errors, inside t=2.
	for w := header.Words + 3; w < header.Words+5; w++ {
		for s := range protected[w] {
			protected[w][s] = gf27.Add(protected[w][s], gf27.Element(1+rng.Intn(26)))
		}
	}
	// Three header errors in each codeword group.
	for _, pos := range []int{0, 7, 20, 26, 30, 51} {
		w, s := pos/protocol.SymbolsPerWord, pos%protocol.SymbolsPerWord
		protected[w][s] = gf27.Add(protected[w][s], 5)
	}

	sess := session.New(protocol.ProfileP5)
	out, _, err := codec.Decode(protected, sess)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	requirePrefix(t, in, out)
	if sess.Corrected() != 18+6 {
		t.Fatalf("corrected=%d want 24", sess.Corrected())
	}
}

func TestBandFailureAbortsFrame(t *testing.T) {
	testlog.Start(t)
	rng := rand.New(rand.NewSource(10))
	codec := New(nil, DefaultLimits())
	cfg := ForProfile(protocol.ProfileP4)
	protected, _ := codec.Encode(randomWords(rng, 50), cfg)

	// Band 2 of the first block group takes far more than t=4 errors.
	for w := header.Words; w < header.Words+12; w++ {
		protected[w][2] = gf27.Add(protected[w][2], gf27.Element(1+w%26))
	}
	sess := session.New(protocol.ProfileP4)
	_, _, err := codec.Decode(protected, sess)
	if err == nil {
		// A bounded-distance miscorrection is possible; nothing else to check.
		return
	}
	var se StageError
	if !errors.As(err, &se) || se.Stage != StageBands {
		t.Fatalf("expected bands stage error, got %v", err)
	}
	if !errors.Is(err, rs.ErrUncorrectable) {
		t.Fatalf("expected ErrUncorrectable in chain, got %v", err)
	}
	if _, ok := sess.LastSeen(); ok {
		t.Fatalf("failed decode updated the session")
	}
}

func TestHeaderCRCFailureLeavesSessionUntouched(t *testing.T) {
	testlog.Start(t)
	rng := rand.New(rand.NewSource(11))
	codec := New(nil, DefaultLimits())
	in := randomWords(rng, 20)
	sess := session.New(protocol.ProfileP2)

	good := DefaultConfig()
	good.FrameSeq = 1
	protected, _ := codec.Encode(in, good)
	if _, _, err := codec.Decode(protected, sess); err != nil {
		t.Fatalf("decode good frame: %v", err)
	}

	// Re-encode a pack with a field changed after the CRC was computed: the
	// RS layer is clean, so only the CRC can catch it.
	next := good
	next.FrameSeq = 2
	bad, _ := codec.Encode(in, next)
	pack, err := header.Pack(next.Header())
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	pack[17] = gf27.Add(pack[17], 1)
	hw, err := header.EncodeWords(pack, rs.DefaultBank())
	if err != nil {
		t.Fatalf("encode header: %v", err)
	}
	copy(bad, hw[:])

	_, _, err = codec.Decode(bad, sess)
	if !errors.Is(err, header.ErrCRCMismatch) {
		t.Fatalf("expected ErrCRCMismatch, got %v", err)
	}
	var se StageError
	if !errors.As(err, &se) || se.Stage != StageHeader {
		t.Fatalf("expected header stage error, got %v", err)
	}
	last, _ := sess.LastSeen()
	if last.FrameSeq != 1 || sess.Frames() != 1 {
		t.Fatalf("session changed after header failure: seq=%d frames=%d", last.FrameSeq, sess.Frames())
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	testlog.Start(t)
	rng := rand.New(rand.NewSource(12))
	codec := New(nil, Limits{MaxInputWords: 64})
	in := randomWords(rng, 30)
	protected, err := codec.Encode(in, DefaultConfig())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, _, err := codec.Decode(protected[:header.Words-1], nil); !errors.Is(err, header.ErrShort) {
		t.Fatalf("expected header.ErrShort, got %v", err)
	}
	if _, _, err := codec.Decode(protected[:len(protected)-1], nil); !errors.Is(err, protocol.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}

	bad := append([]protocol.Word27(nil), protected...)
	bad[header.Words][0] = 30
	if _, _, err := codec.Decode(bad, nil); !errors.Is(err, protocol.ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}

	if _, err := codec.Encode(randomWords(rng, 65), DefaultConfig()); !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("expected ErrInputTooLarge, got %v", err)
	}
}

func TestEncodeRefusesReservedTrit(t *testing.T) {
	testlog.Start(t)
	rng := rand.New(rand.NewSource(31))
	codec := New(nil, DefaultLimits())
	in := randomWords(rng, 12)
	tr := in[5].Trits()
	tr[protocol.TritsPerWord-1] = 2
	in[5] = protocol.WordFromTrits(tr)
	if in[5].Reserved() != 2 {
		t.Fatalf("reserved trit not set: %v", in[5])
	}

	_, err := codec.Encode(in, DefaultConfig())
	if !errors.Is(err, protocol.ErrReservedTrit) {
		t.Fatalf("expected ErrReservedTrit, got %v", err)
	}
	var se StageError
	if !errors.As(err, &se) || se.Stage != StageInput {
		t.Fatalf("expected input stage error, got %v", err)
	}

	rawCfg := ForProfile(protocol.ProfileRaw)
	out, err := codec.Encode(in, rawCfg)
	if err != nil {
		t.Fatalf("raw encode: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("raw copy changed (-want +got):\n%s", diff)
	}
}

func TestEncodeRejectsInvalidConfig(t *testing.T) {
	testlog.Start(t)
	codec := New(nil, DefaultLimits())
	cfg := ForProfile(protocol.ProfileP5)
	cfg.Tile = protocol.Tile2D{}
	if _, err := codec.Encode(nil, cfg); !errors.Is(err, protocol.ErrTileRequired) {
		t.Fatalf("expected ErrTileRequired, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Profile = 9
	if _, err := codec.Encode(nil, cfg); !errors.Is(err, protocol.ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestBeaconsCarryProfileAndHealth(t *testing.T) {
	testlog.Start(t)
	codec := New(nil, DefaultLimits())
	cfg := DefaultConfig()
	cfg.Beacon = protocol.BeaconConfig{Enabled: true, Slot: 0, Period: 2}
	cfg.FrameSeq = 3
	cfg.Health = 1
	protected, err := codec.Encode(randomWords(rand.New(rand.NewSource(13)), 40), cfg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := framing.BeaconSymbol(cfg.Profile, cfg.FrameSeq, cfg.Health)
	pilots := framing.Beacons(protocol.Flatten(protected[header.Words:]), cfg.Beacon)
	if len(pilots) == 0 {
		t.Fatalf("no beacons found")
	}
	for _, p := range pilots {
		if p != want {
			t.Fatalf("beacon %d want %d", p, want)
		}
	}
}
