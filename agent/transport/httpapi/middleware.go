package httpapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	logx "github.com/tanpawarit/Chative-Airline-Assistant/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

// RequestID echoes or mints a request id and attaches it, with the session
// id when the route has one, to the request logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		fields := map[string]any{"request_id": id}
		if sid := c.Param("session_id"); sid != "" {
			fields["session_id"] = sid
		}
		c.Request = c.Request.WithContext(logx.Into(c.Request.Context(), fields))
		c.Next()
	}
}

// AccessLog writes one line per request through zerolog.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		ev := log.Ctx(c.Request.Context()).Debug()
		if c.Writer.Status() >= 500 {
			ev = log.Ctx(c.Request.Context()).Error()
		}
		ev.Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(started)).
			Msg("http request")
	}
}
