package main

import (
	"strings"

	"github.com/danmuck/t3codec/internal/config"
	logs "github.com/danmuck/t3codec/internal/logging"
	"github.com/danmuck/t3codec/internal/pipeline"
	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/session"
	"github.com/spf13/cobra"
)

type streamFlags struct {
	in     string
	out    string
	format string
}

func (f *streamFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.in, "in", "i", "-", "Input stream path (- for stdin)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "-", "Output stream path (- for stdout)")
	cmd.Flags().StringVar(&f.format, "format", formatSymbols, "Stream format: symbols|base243")
}

// loadCodec resolves the codec config file, then applies profile on top.
func loadCodec(path, profile string) (pipeline.Config, pipeline.Limits, error) {
	cc := config.DefaultCodecConfig()
	if strings.TrimSpace(path) != "" {
		loaded, err := config.LoadCodecConfig(path)
		if err != nil {
			return pipeline.Config{}, pipeline.Limits{}, err
		}
		cc = loaded
	}
	if strings.TrimSpace(profile) != "" {
		cc.Profile = profile
	}
	return cc.Pipeline()
}

func newEncodeCmd() *cobra.Command {
	var (
		stream     streamFlags
		configPath string
		profile    string
		frameSeq   uint32
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Protect a raw word stream as one superframe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, limits, err := loadCodec(configPath, profile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("frame-seq") {
				cfg.FrameSeq = frameSeq
			}
			words, err := readStream(stream.in, stream.format, limits.MaxInputWords)
			if err != nil {
				return err
			}
			out, err := pipeline.New(nil, limits).Encode(words, cfg)
			if err != nil {
				return err
			}
			logs.Infof("encode profile=%s words_in=%d words_out=%d", cfg.Profile, len(words), len(out))
			return writeStream(stream.out, stream.format, out)
		},
	}
	stream.bind(cmd)
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Codec config TOML")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile override: raw|p1..p5")
	cmd.Flags().Uint32Var(&frameSeq, "frame-seq", 0, "Frame sequence number")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var (
		stream   streamFlags
		profile  string
		maxWords int
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Recover the raw word stream from a superframe",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := protocol.ParseProfile(profile)
			if err != nil {
				return err
			}
			limits := pipeline.DefaultLimits()
			if maxWords > 0 {
				limits.MaxInputWords = maxWords
			}
			words, err := readStream(stream.in, stream.format, limits.MaxInputWords)
			if err != nil {
				return err
			}
			sess := session.New(p)
			out, h, err := pipeline.New(nil, limits).Decode(words, sess)
			if err != nil {
				return err
			}
			if !sess.Raw() {
				logs.Infof("decode profile=%s seq=%d subword=%s corrected=%d", h.Profile, h.FrameSeq, h.Subword, sess.Corrected())
			}
			return writeStream(stream.out, stream.format, out)
		},
	}
	stream.bind(cmd)
	cmd.Flags().StringVarP(&profile, "profile", "p", "p2", "Expected stream profile; raw passes words through")
	cmd.Flags().IntVar(&maxWords, "max-words", 0, "Refuse inputs longer than this many words")
	return cmd
}
