package braintest

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
)

// Rejection markers the service reports for deprecated access keys.
// Clients that see one in an auth failure retry once with a federated
// token.
const (
	SentinelLegacyAuthDeprecated  = "LegacyAuthDeprecated"
	SentinelInvalidUseOfAccessKey = "InvalidUseOfAccessKey"
)

// Credentials controls how the fixture checks the Authorization header.
// The zero value accepts any non-empty credential.
type Credentials struct {
	// AccessKey is the access key accepted on requests.
	AccessKey string

	// LegacySentinel, when set, marks AccessKey as deprecated. Requests
	// presenting the key are rejected with a 401 whose message carries
	// the sentinel, steering clients to the token exchange.
	LegacySentinel string

	// Token is the federated token accepted alongside the access key.
	Token string
}

// auth returns middleware enforcing the configured credential checks.
func auth(creds Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader("Authorization")

		switch {
		case presented == "":
			writeError(c, http.StatusUnauthorized, codeUnauthorized, "Authorization header is missing")
		case creds.AccessKey == "" && creds.Token == "":
			c.Next()
		case creds.Token != "" && presented == creds.Token:
			c.Next()
		case presented == creds.AccessKey && creds.LegacySentinel != "":
			writeError(c, http.StatusUnauthorized, codeUnauthorized,
				creds.LegacySentinel+": access keys are deprecated for this tenant, use a federated token")
		case presented == creds.AccessKey:
			c.Next()
		default:
			writeError(c, http.StatusUnauthorized, codeUnauthorized, "invalid credentials")
		}
	}
}

// timingWriter injects the response time header just before the status
// line is committed, so the measured value covers handler work.
type timingWriter struct {
	gin.ResponseWriter
	start time.Time
}

func (w *timingWriter) WriteHeader(code int) {
	w.Header().Set(clients.HeaderResponseTime, time.Since(w.start).String())
	w.ResponseWriter.WriteHeader(code)
}

// stamp returns middleware that decorates every response with the headers
// clients read back: a span id, the echoed request id, and the measured
// response time.
func stamp() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: time.Now()}

		c.Header(clients.HeaderSpanID, uuid.NewString())
		if id := c.GetHeader(clients.HeaderRequestID); id != "" {
			c.Header(clients.HeaderRequestID, id)
		}

		c.Next()
	}
}

// recovery returns middleware that converts panics into the error
// envelope instead of a dropped connection.
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					slog.Any("error", r),
					slog.String("stack", string(debug.Stack())),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
				)

				if !c.Writer.Written() {
					writeError(c, http.StatusInternalServerError, codeInternal, "an internal error occurred")
				} else {
					c.Abort()
				}
			}
		}()

		c.Next()
	}
}

// requestLogging returns middleware that logs completed requests. Health
// paths are skipped, and successful exchanges log at debug so the fixture
// stays quiet under test runners.
func requestLogging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/-/") {
			c.Next()
			return
		}

		start := time.Now()

		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		status := c.Writer.Status()

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		logger.Log(c.Request.Context(), level, "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
		)
	}
}
