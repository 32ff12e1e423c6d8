package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/grokmeetu/meetu-backend/internal/logger"
)

// AdminAuthMiddleware guards the training and model-management routes. Tokens
// are HS256 bearer tokens with an optional "role" claim that must be "admin"
// when present.
type AdminAuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAdminAuthMiddleware(log *logger.Logger, secret string) *AdminAuthMiddleware {
	middlewareLogger := log.With("Middleware", "AdminAuthMiddleware")
	return &AdminAuthMiddleware{log: middlewareLogger, secret: []byte(secret)}
}

func (am *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return am.secret, nil
		})
		if err != nil || !token.Valid {
			am.log.Debug("Rejected admin token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		if role, ok := claims["role"].(string); ok && role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Set("admin_subject", sub)
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
