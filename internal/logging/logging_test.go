package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":       zerolog.TraceLevel,
		"diagnostics": zerolog.TraceLevel,
		" DEBUG ":     zerolog.DebugLevel,
		"warning":     zerolog.WarnLevel,
		"off":         zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := parseLevel(raw)
		if !ok || got != want {
			t.Fatalf("parseLevel(%q) = %v,%v want %v", raw, got, ok, want)
		}
	}
	if _, ok := parseLevel("loud"); ok {
		t.Fatalf("unknown level accepted")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "true")
	t.Setenv(EnvLogBypass, "1")
	t.Setenv(EnvLogNoColor, "nope")
	cfg := defaultConfig(ProfileTest)
	applyEnvOverrides(&cfg)
	if cfg.Level != zerolog.ErrorLevel || !cfg.Timestamp || !cfg.Bypass || cfg.NoColor {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestSetLevel(t *testing.T) {
	ConfigureTests()
	if !SetLevel("warn") {
		t.Fatalf("warn rejected")
	}
	if got := Logger().GetLevel(); got != zerolog.WarnLevel {
		t.Fatalf("level %v want warn", got)
	}
	if got := zerolog.GlobalLevel(); got != zerolog.WarnLevel {
		t.Fatalf("global level %v want warn", got)
	}
	if SetLevel("loud") {
		t.Fatalf("unknown level accepted")
	}
	if got := zerolog.GlobalLevel(); got != zerolog.WarnLevel {
		t.Fatalf("rejected level moved global to %v", got)
	}
	Errf("logging test errf level=%s", Logger().GetLevel())
	SetLevel("debug")
	Tracef("logging test trace suppressed at debug")
	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Fatalf("global level %v want debug", got)
	}
	Debugf("logging test level=%s", Logger().GetLevel())
}
