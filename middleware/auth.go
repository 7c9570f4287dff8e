package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stocks-trader/session"
)

const (
	authorizationHeader = "Authorization"

	UserIDKey  = "user_id"
	SessionKey = "session"
)

// SessionAuth accepts the session cookie or an "Authorization: Bearer" token
// and aborts with 401 before any protected handler runs.
func SessionAuth(sessions *session.Manager, cookieName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := sessions.Parse(c.Request.Context(), token)
		if err != nil {
			log.Debug("auth middleware: rejected session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			log.Warn("auth middleware: invalid session payload", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(SessionKey, claims)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// UserID returns the authenticated user id set by SessionAuth.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}

	id, ok := v.(uint)
	return id, ok
}

func Session(c *gin.Context) (*session.Claims, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}

	claims, ok := v.(*session.Claims)
	return claims, ok
}
