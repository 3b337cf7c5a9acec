package httphandler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

const (
	tokenCookie = "token"
	claimsKey   = "claims"
)

// AllowJSON rejects bodies other than JSON or multipart forms.
func AllowJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		switch c.ContentType() {
		case gin.MIMEJSON, gin.MIMEMultipartPOSTForm:
			c.Next()
		default:
			c.AbortWithStatusJSON(
				http.StatusUnsupportedMediaType, "unsupported media type",
			)
		}
	}
}

// RequestLogger writes one record per request to the default slog logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(
			c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"clientIP", c.ClientIP(),
		)
	}
}

// IsLoggedIn reads the session token from the cookie or the bearer header.
func IsLoggedIn(tokens port.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "IsLoggedIn"
		log := slog.With("op", op)

		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			writeError(c, log, err, nil)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CheckRole must follow IsLoggedIn.
func CheckRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, "unauthorized")
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(tokenCookie); err == nil && token != "" {
		return token
	}
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func claimsFrom(c *gin.Context) (domain.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return domain.Claims{}, false
	}
	claims, ok := v.(domain.Claims)
	return claims, ok
}
