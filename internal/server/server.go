// Package server exposes the codec over HTTP.
package server

import (
	"time"

	logs "github.com/danmuck/t3codec/internal/logging"
	"github.com/danmuck/t3codec/internal/observability"
	"github.com/danmuck/t3codec/internal/pipeline"
	"github.com/danmuck/t3codec/internal/protocol/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const Version = "0.1.0"

// Options configures a Server. Zero values fall back to the codec defaults.
type Options struct {
	Name        string
	Addr        string
	CorsOrigins []string
	MaxSessions int
	Defaults    pipeline.Config
	Limits      pipeline.Limits
}

// Server owns the gin engine, one shared codec and the named decode sessions.
type Server struct {
	Name     string
	Addr     string
	Appeared time.Time

	codec    *pipeline.Codec
	defaults pipeline.Config
	sessions *session.Store
	router   *gin.Engine
}

func Appear(opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "t3codec"
	}
	if opts.Defaults == (pipeline.Config{}) {
		opts.Defaults = pipeline.DefaultConfig()
	}
	if opts.Limits == (pipeline.Limits{}) {
		opts.Limits = pipeline.DefaultLimits()
	}

	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(opts.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(opts.CorsOrigins),
		AllowMethods: []string{"GET", "POST", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		Name:     opts.Name,
		Addr:     opts.Addr,
		Appeared: time.Now(),
		codec:    pipeline.New(nil, opts.Limits),
		defaults: opts.Defaults,
		sessions: session.NewStore(opts.MaxSessions),
		router:   r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Sessions exposes the decode session store.
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	logger := logs.Logger()
	logger.Info().Str("service", s.Name).Str("addr", s.Addr).Msg("codec server listening")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "" {
			continue
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return []string{"http://localhost:3000"}
	}
	return out
}
