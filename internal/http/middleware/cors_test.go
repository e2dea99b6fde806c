package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		origins []string
		origin  string
		allowed bool
	}{
		{origins: nil, origin: "http://localhost:3000", allowed: true},
		{origins: nil, origin: "http://localhost:3001", allowed: true},
		{origins: []string{"https://recipes.example.com/"}, origin: "https://recipes.example.com", allowed: true},
		{origins: []string{"https://recipes.example.com"}, origin: "http://localhost:3000", allowed: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.origin, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tc.origins))
			r.OPTIONS("/api/users/login", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/users/login", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed {
				if rec.Code != http.StatusNoContent {
					t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
				}
				if got != tc.origin {
					t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, tc.origin)
				}
				return
			}
			if got != "" {
				t.Fatalf("origin %q should not be allowed, got allow-origin %q", tc.origin, got)
			}
		})
	}
}
