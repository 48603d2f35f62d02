package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys handlers set so the request log line names the frame.
const (
	keyStream  = "t3codec.stream"
	keyProfile = "t3codec.profile"
	keyWords   = "t3codec.words"
)

// AnnotateFrame tags the request with the stream, profile and input word
// count it carried. Empty values are skipped.
func AnnotateFrame(c *gin.Context, stream, profile string, words int) {
	if stream != "" {
		c.Set(keyStream, stream)
	}
	if profile != "" {
		c.Set(keyProfile, profile)
	}
	c.Set(keyWords, words)
}

func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

// RequestLogger writes one line per request; codec routes add their frame
// annotations.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Int("status", status).
			Dur("duration", time.Since(start))
		if v := c.GetString(keyStream); v != "" {
			event = event.Str("stream", v)
		}
		if v := c.GetString(keyProfile); v != "" {
			event = event.Str("profile", v)
		}
		if _, ok := c.Get(keyWords); ok {
			event = event.Int("words", c.GetInt(keyWords))
		}
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.Last().Error())
		}
		event.Int("bytes", c.Writer.Size()).Msg("codec_request")
	}
}

func RequestMetricsMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		RecordHTTPRequest(service, c.Request.Method, routePath(c), c.Writer.Status(), time.Since(start))
	}
}
