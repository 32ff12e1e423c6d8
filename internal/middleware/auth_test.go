package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/grokmeetu/meetu-backend/internal/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func adminRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	am := NewAdminAuthMiddleware(log, testSecret)
	router := gin.New()
	router.POST("/train", am.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	return router
}

func TestRequireAdmin(t *testing.T) {
	router := adminRouter(t)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{
			name: "missing token",
			want: http.StatusUnauthorized,
		},
		{
			name:   "malformed token",
			header: "Bearer not-a-jwt",
			want:   http.StatusUnauthorized,
		},
		{
			name:   "wrong secret",
			header: "Bearer " + signToken(t, "other-secret", jwt.MapClaims{"sub": "ops"}),
			want:   http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "ops", "exp": time.Now().Add(-time.Hour).Unix()}),
			want:   http.StatusUnauthorized,
		},
		{
			name:   "non-admin role",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "ops", "role": "viewer"}),
			want:   http.StatusForbidden,
		},
		{
			name:   "valid bearer token",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "ops", "role": "admin"}),
			want:   http.StatusAccepted,
		},
		{
			name:  "valid query token",
			query: signToken(t, testSecret, jwt.MapClaims{"sub": "ops"}),
			want:  http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/train"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodPost, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status=%d, want %d", rec.Code, tt.want)
			}
		})
	}
}
