package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/http/api/handlers"
	"github.com/router-for-me/AppSubscriptions/internal/store"
	log "github.com/sirupsen/logrus"
)

const (
	msgMissingCredentials = "Authentication credentials were not provided."
	msgInvalidToken       = "Invalid token."
	msgInactiveUser       = "User inactive or deleted."
)

// tokenAuthMiddleware resolves "Authorization: Token <key>" (or Bearer) to an
// active user and stores its ID in the gin context.
func tokenAuthMiddleware(tokens store.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := parseAuthorization(c.GetHeader("Authorization"))
		if !ok {
			handlers.WriteError(c, apperr.Permission(msgMissingCredentials))
			return
		}

		user, errUser := tokens.UserForKey(c.Request.Context(), key)
		if errUser != nil {
			if apperr.Is(errUser, apperr.KindNotFound) {
				handlers.WriteError(c, apperr.Permission(msgInvalidToken))
				return
			}
			handlers.WriteError(c, errUser)
			return
		}
		if !user.IsActive {
			handlers.WriteError(c, apperr.Permission(msgInactiveUser))
			return
		}

		c.Set(handlers.ContextUserIDKey, user.ID)
		c.Next()
	}
}

func parseAuthorization(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1], true
	default:
		return "", false
	}
}

// requestLogger emits one entry per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if userID, ok := c.Get(handlers.ContextUserIDKey); ok {
			entry = entry.WithField("user_id", userID)
		}
		switch {
		case status >= 500:
			entry.Error("http request")
		case status >= 400:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}
