package main

import (
	"fmt"
	"math/rand"

	"github.com/danmuck/t3codec/internal/pipeline"
	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/gf27"
	"github.com/danmuck/t3codec/internal/protocol/header"
	"github.com/danmuck/t3codec/internal/protocol/rs"
	"github.com/spf13/cobra"
)

var selftestProfiles = []protocol.ProfileID{
	protocol.ProfileP1,
	protocol.ProfileP2,
	protocol.ProfileP3,
	protocol.ProfileP4,
	protocol.ProfileP5,
}

func newSelftestCmd() *cobra.Command {
	var (
		words  int
		trials int
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Round-trip random frames through every profile with injected symbol errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelftest(cmd, words, trials, seed)
		},
	}
	cmd.Flags().IntVar(&words, "words", 64, "Raw words per frame")
	cmd.Flags().IntVar(&trials, "trials", 8, "Frames per profile")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	return cmd
}

func runSelftest(cmd *cobra.Command, words, trials int, seed int64) error {
	if err := checkKnownBlock(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "rs known block ok")

	rng := rand.New(rand.NewSource(seed))
	codec := pipeline.New(nil, pipeline.DefaultLimits())
	for _, p := range selftestProfiles {
		k, err := p.K()
		if err != nil {
			return err
		}
		capacity := (rs.N - k) / 2
		for trial := 0; trial < trials; trial++ {
			cfg := pipeline.ForProfile(p)
			cfg.FrameSeq = uint32(trial)
			cfg.Seed = protocol.ScramblerSeed{A: uint8(rng.Intn(3)), B: uint8(rng.Intn(3)), S0: uint8(rng.Intn(3))}

			in := randomWords(rng, words)
			frame, err := codec.Encode(in, cfg)
			if err != nil {
				return fmt.Errorf("%s trial %d: encode: %w", p, trial, err)
			}
			injected := injectBodyErrors(rng, frame, capacity)
			out, _, err := codec.Decode(frame, nil)
			if err != nil {
				return fmt.Errorf("%s trial %d: decode with %d errors: %w", p, trial, injected, err)
			}
			for i := range in {
				if out[i] != in[i] {
					return fmt.Errorf("%s trial %d: word %d mismatch", p, trial, i)
				}
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ok (k=%d, %d trials)\n", p, k, trials)
	}
	return nil
}

// checkKnownBlock corrects two symbol errors at positions 3 and 17 of an
// RS(26,22) block with a fixed payload.
func checkKnownBlock() error {
	c, err := rs.DefaultBank().Coder(1)
	if err != nil {
		return err
	}
	data := make([]gf27.Element, c.Params().K)
	for i := range data {
		data[i] = gf27.Element((i*5 + 7) % gf27.Size)
	}
	code, err := c.Encode(data)
	if err != nil {
		return err
	}
	code[3] = gf27.Add(code[3], 5)
	code[17] = gf27.Add(code[17], 19)
	got, corrected, err := c.Decode(code)
	if err != nil {
		return fmt.Errorf("rs known block: %w", err)
	}
	if corrected != 2 {
		return fmt.Errorf("rs known block: corrected %d symbols, want 2", corrected)
	}
	for i := range data {
		if got[i] != data[i] {
			return fmt.Errorf("rs known block: symbol %d mismatch", i)
		}
	}
	return nil
}

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

// injectBodyErrors corrupts one symbol in each of the first capacity body
// words. No codeword sees more than capacity errors.
func injectBodyErrors(rng *rand.Rand, frame []protocol.Word27, capacity int) int {
	body := frame[header.Words:]
	if len(body) == 0 {
		return 0
	}
	n := 0
	for e := 0; e < capacity && e < len(body); e++ {
		slot := rng.Intn(protocol.SymbolsPerWord)
		body[e][slot] = gf27.Add(body[e][slot], gf27.Element(1+rng.Intn(gf27.Size-1)))
		n++
	}
	return n
}
