package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).Level(zerolog.InfoLevel)
)

func apply(cfg Config) {
	var out io.Writer = os.Stderr
	if !cfg.Bypass {
		out = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg.NoColor, TimeFormat: time.RFC3339}
	}
	ctx := zerolog.New(out).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	mu.Lock()
	logger = ctx.Logger().Level(cfg.Level)
	zerolog.SetGlobalLevel(cfg.Level)
	mu.Unlock()
}

// setLevel also moves the zerolog global level so loggers built elsewhere,
// such as the request logger, follow the configured level.
func setLevel(lvl zerolog.Level) {
	mu.Lock()
	logger = logger.Level(lvl)
	zerolog.SetGlobalLevel(lvl)
	mu.Unlock()
}

// Logger returns the shared logger for structured call sites.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Tracef(format string, args ...any) { emit(zerolog.TraceLevel, format, args...) }
func Debug(msg string)                  { emit(zerolog.DebugLevel, "%s", msg) }
func Debugf(format string, args ...any) { emit(zerolog.DebugLevel, format, args...) }
func Infof(format string, args ...any)  { emit(zerolog.InfoLevel, format, args...) }
func Warnf(format string, args ...any)  { emit(zerolog.WarnLevel, format, args...) }
func Errf(format string, args ...any)   { emit(zerolog.ErrorLevel, format, args...) }

// Log and Logf write regardless of level; tests use them for report output.
func Log(msg string)                  { emit(zerolog.NoLevel, "%s", msg) }
func Logf(format string, args ...any) { emit(zerolog.NoLevel, format, args...) }

func emit(lvl zerolog.Level, format string, args ...any) {
	l := Logger()
	l.WithLevel(lvl).Msg(fmt.Sprintf(format, args...))
}
