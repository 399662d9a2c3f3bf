package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/chachabrian/rideflow-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

const secret = "middleware-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":    c.GetUint("userId"),
			"userType":  c.GetString("userType"),
			"requestId": GetRequestID(c),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()
	token, err := utils.GenerateToken(&models.User{ID: 3, Email: "d@x.com", UserType: models.UserTypeDriver}, secret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	foreign, _ := utils.GenerateToken(&models.User{ID: 3}, "other-secret")

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"bearer header", "/me", "Bearer " + token, http.StatusOK},
		{"query token", "/me?token=" + token, "", http.StatusOK},
		{"missing token", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Token " + token, http.StatusUnauthorized},
		{"wrong secret", "/me", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "/me", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id even on rejected requests")
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected propagated id, got %q", got)
	}
}
