package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/t3codec/internal/config"
	logs "github.com/danmuck/t3codec/internal/logging"
	"github.com/danmuck/t3codec/internal/observability"
	"github.com/danmuck/t3codec/internal/pipeline"
	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/raw"
	"github.com/danmuck/t3codec/internal/protocol/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Words travel in the one-byte-per-symbol form of raw.WordsToBytes, which
// encoding/json carries as base64.
type encodeRequest struct {
	Words  []byte          `json:"words"`
	Config json.RawMessage `json:"config,omitempty"`
}

type encodeResponse struct {
	Words []byte `json:"words"`
	Count int    `json:"count"`
}

type decodeRequest struct {
	Words   []byte `json:"words"`
	Stream  string `json:"stream,omitempty"`
	Profile string `json:"profile,omitempty"`
}

type decodeResponse struct {
	Words     []byte      `json:"words"`
	Count     int         `json:"count"`
	Corrected uint64      `json:"corrected"`
	Header    *headerView `json:"header,omitempty"`
}

type headerView struct {
	Profile     string   `json:"profile"`
	UEP         [9]uint8 `json:"uep"`
	Tile        [2]int   `json:"tile"`
	Seed        [3]uint8 `json:"seed"`
	BandMapHash uint32   `json:"band_map_hash"`
	FrameSeq    uint32   `json:"frame_seq"`
	Subword     string   `json:"subword"`
	Centered    bool     `json:"centered"`
	Coset       uint8    `json:"coset"`
	Beacon      bool     `json:"beacon"`
}

type sessionView struct {
	Stream    string      `json:"stream"`
	Profile   string      `json:"profile"`
	Frames    uint64      `json:"frames"`
	Corrected uint64      `json:"corrected"`
	Last      *headerView `json:"last,omitempty"`
}

func viewHeader(h protocol.SuperframeHeader) *headerView {
	return &headerView{
		Profile:     h.Profile.String(),
		UEP:         h.UEP,
		Tile:        [2]int{int(h.Tile.W), int(h.Tile.H)},
		Seed:        [3]uint8{h.Seed.A, h.Seed.B, h.Seed.S0},
		BandMapHash: h.BandMapHash,
		FrameSeq:    h.FrameSeq,
		Subword:     h.Subword.String(),
		Centered:    h.Centered,
		Coset:       uint8(h.Coset),
		Beacon:      h.Beacon.Active(),
	}
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(s.Appeared).String(),
			"service":  s.Name,
			"version":  Version,
			"sessions": s.sessions.Len(),
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/encode", s.handleEncode)
	v1.POST("/decode", s.handleDecode)
	v1.GET("/sessions", s.handleListSessions)
	v1.GET("/sessions/:stream", s.handleGetSession)
	v1.DELETE("/sessions/:stream", s.handleRemoveSession)
}

func (s *Server) handleEncode(c *gin.Context) {
	var req encodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	words, err := raw.BytesToWords(req.Words)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := s.requestConfig(req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	observability.AnnotateFrame(c, "", cfg.Profile.String(), len(words))

	out, err := s.codec.Encode(words, cfg)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, encodeResponse{Words: raw.WordsToBytes(out), Count: len(out)})
}

// requestConfig overlays a JSON codec config on the defaults. An absent
// config uses the server's defaults.
func (s *Server) requestConfig(body json.RawMessage) (pipeline.Config, error) {
	if len(body) == 0 || string(body) == "null" {
		return s.defaults, nil
	}
	cc := config.DefaultCodecConfig()
	if err := json.Unmarshal(body, &cc); err != nil {
		return pipeline.Config{}, err
	}
	cfg, _, err := cc.Pipeline()
	return cfg, err
}

func (s *Server) handleDecode(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	words, err := raw.BytesToWords(req.Words)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile := s.defaults.Profile
	if strings.TrimSpace(req.Profile) != "" {
		profile, err = protocol.ParseProfile(req.Profile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	observability.AnnotateFrame(c, strings.TrimSpace(req.Stream), profile.String(), len(words))

	sess := session.New(profile)
	if strings.TrimSpace(req.Stream) != "" {
		sess, err = s.sessions.Open(req.Stream, profile)
		if err != nil {
			s.fail(c, err)
			return
		}
	}

	before := sess.Corrected()
	out, h, err := s.codec.Decode(words, sess)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := decodeResponse{
		Words:     raw.WordsToBytes(out),
		Count:     len(out),
		Corrected: sess.Corrected() - before,
	}
	if !sess.Raw() {
		resp.Header = viewHeader(h)
	}
	c.JSON(http.StatusOK, resp)
}

func viewSession(snap session.Snapshot) sessionView {
	v := sessionView{
		Stream:    snap.Stream,
		Profile:   snap.Profile.String(),
		Frames:    snap.Frames,
		Corrected: snap.Corrected,
	}
	if snap.Seen {
		v.Last = viewHeader(snap.Last)
	}
	return v
}

func (s *Server) handleListSessions(c *gin.Context) {
	snaps := s.sessions.List()
	out := make([]sessionView, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, viewSession(snap))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (s *Server) handleGetSession(c *gin.Context) {
	stream := c.Param("stream")
	sess, ok := s.sessions.Get(stream)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, viewSession(sess.Snapshot(stream)))
}

func (s *Server) handleRemoveSession(c *gin.Context) {
	stream := c.Param("stream")
	if !s.sessions.Remove(stream) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "stream": stream})
}

// fail maps err to a status, records it on the request for the request log
// and writes the error body.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		logs.Errf("server.%s %s failed status=%d err=%v", s.Name, c.FullPath(), status, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrStoreFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrProfileChange):
		return http.StatusConflict
	case errors.Is(err, session.ErrEmptyStream), errors.Is(err, pipeline.ErrInputTooLarge):
		return http.StatusBadRequest
	}
	var stageErr pipeline.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case pipeline.StageInput, pipeline.StageConfig:
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
