package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coursegen/internal/pkg/jwtutil"
	"coursegen/internal/transport/http/response"
)

const (
	ContextUserIDKey    = "user_id"
	ContextUsernameKey  = "username"
	ContextAuthErrorKey = "auth_error"
)

// AuthJWT rejects the request before any handler runs unless it carries a
// valid bearer token. The scheme is matched case-insensitively.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, reason := bearerToken(c.GetHeader("Authorization"))
		if reason != "" {
			reject(c, reason, reason)
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			reject(c, "invalid or expired token", err.Error())
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

// UserID returns the authenticated caller set by AuthJWT.
func UserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := raw.(uint)
	return userID, ok && userID != 0
}

func bearerToken(header string) (string, string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization scheme"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}

// reject answers 401 and keeps the cause for RequestLogger.
func reject(c *gin.Context, message, cause string) {
	c.Set(ContextAuthErrorKey, cause)
	response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, message)
	c.Abort()
}
