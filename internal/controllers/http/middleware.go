package http

import (
	"net/http"
	"strings"
	"time"

	"dealer-portal/internal/auth"
	"dealer-portal/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	ctxRequestID = "request_id"
	ctxSession   = "session"

	headerRequestID = "X-Request-ID"
	headerNonce     = "X-Dealer-Nonce"
	sessionCookie   = "dealer_session"
)

// RequestLogger tags every request with an ID and logs it once served.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)

		c.Next()

		status := c.Writer.Status()
		evt := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			evt = log.Error()
		case status >= http.StatusBadRequest:
			evt = log.Warn()
		}
		if sess, ok := sessionFrom(c); ok {
			evt = evt.Uint64("user_id", sess.User.ID)
		}
		evt.Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().
			Interface("panic", recovered).
			Str("request_id", c.GetString(ctxRequestID)).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		respondMessage(c, http.StatusInternalServerError, genericErrorMessage)
	})
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Authenticate resolves the caller's session or aborts with 401.
func Authenticate(authn auth.Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := authn.Authenticate(c.Request.Context(), bearerToken(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.Set(ctxSession, *sess)
		c.Next()
	}
}

// RequireRole aborts unless the caller's role passes allowed.
func RequireRole(allowed func(domain.Role) bool, reason string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok || !allowed(sess.User.Role) {
			respondMessage(c, http.StatusForbidden, reason)
			return
		}
		c.Next()
	}
}

// RequireNonce checks the action nonce before the handler runs.
func RequireNonce(nonces *auth.Nonces, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		nonce := c.GetHeader(headerNonce)
		if nonce == "" {
			nonce = c.PostForm("nonce")
		}
		if !ok || !nonces.Verify(action, sess, nonce) {
			respondMessage(c, http.StatusForbidden, domain.UserMessage(domain.ErrInvalidNonce))
			return
		}
		c.Next()
	}
}

func sessionFrom(c *gin.Context) (domain.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return domain.Session{}, false
	}
	sess, ok := v.(domain.Session)
	return sess, ok
}
