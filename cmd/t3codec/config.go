package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/t3codec/internal/config"
	"github.com/danmuck/t3codec/internal/pipeline"
	"github.com/danmuck/t3codec/internal/server"
)

type fileConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	MaxSessions int      `toml:"max_sessions"`
	LogLevel    string   `toml:"log_level"`
	CodecConfig string   `toml:"codec_config"`
}

type serviceConfig struct {
	Addr        string
	CorsOrigins []string
	MaxSessions int
	LogLevel    string
	CodecConfig string
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		Addr:        ":9300",
		CorsOrigins: []string{"http://localhost:3000"},
		MaxSessions: 64,
		LogLevel:    "info",
	}
}

func loadServiceConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serviceConfig{}, fmt.Errorf("load service config: %w", err)
	}

	if meta.IsDefined("addr") {
		if addr := strings.TrimSpace(raw.Addr); addr != "" {
			cfg.Addr = addr
		}
	}

	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}

	if meta.IsDefined("max_sessions") {
		if raw.MaxSessions < 0 {
			return serviceConfig{}, fmt.Errorf("max_sessions must not be negative")
		}
		cfg.MaxSessions = raw.MaxSessions
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("codec_config") {
		cfg.CodecConfig = strings.TrimSpace(raw.CodecConfig)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return serviceConfig{}, fmt.Errorf("load service config: unknown key %q", undecoded[0].String())
	}
	return cfg, nil
}

// serverOptions resolves the codec defaults the service config points at.
func (c serviceConfig) serverOptions() (server.Options, error) {
	opts := server.Options{
		Name:        "t3codec",
		Addr:        c.Addr,
		CorsOrigins: c.CorsOrigins,
		MaxSessions: c.MaxSessions,
		Defaults:    pipeline.DefaultConfig(),
		Limits:      pipeline.DefaultLimits(),
	}
	if c.CodecConfig == "" {
		return opts, nil
	}
	cc, err := config.LoadCodecConfig(c.CodecConfig)
	if err != nil {
		return server.Options{}, err
	}
	opts.Defaults, opts.Limits, err = cc.Pipeline()
	if err != nil {
		return server.Options{}, err
	}
	return opts, nil
}

func normalizeOrigins(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
