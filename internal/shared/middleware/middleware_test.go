package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newEngine(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/book", RequireAPIToken(token), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})
	return engine
}

func TestRequireAPIToken(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"disabled", "", "", http.StatusOK},
		{"missing", "secret", "", http.StatusUnauthorized},
		{"wrong scheme", "secret", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "secret", "Bearer nope", http.StatusUnauthorized},
		{"valid", "secret", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/book", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newEngine(tt.token).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	engine := newEngine("")

	req := httptest.NewRequest(http.MethodGet, "/book", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("request id not propagated: header=%q body=%q", w.Header().Get(RequestIDHeader), w.Body.String())
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/book", nil))
	if len(w.Header().Get(RequestIDHeader)) != 36 {
		t.Errorf("generated id = %q, want a uuid", w.Header().Get(RequestIDHeader))
	}
}
