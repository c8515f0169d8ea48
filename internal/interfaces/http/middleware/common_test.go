package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serveThrough runs one request through mw in front of a handler that echoes
// the request id seen in the context.
func serveThrough(mw gin.HandlerFunc, method string, headers map[string]string) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.Use(mw)
	engine.Handle(method, "/bookings", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logger.RequestIDKey))
	})

	req := httptest.NewRequest(method, "/bookings", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCORSWithConfig(t *testing.T) {
	const office = "https://office.estatebook.test"
	withOrigins := func(origins ...string) CORSConfig {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = origins
		return cfg
	}

	tests := []struct {
		name            string
		cfg             CORSConfig
		method          string
		origin          string
		wantStatus      int
		wantOrigin      string
		wantCredentials string
	}{
		{"default config grants nothing", DefaultCORSConfig(), http.MethodGet, office, http.StatusOK, "", ""},
		{"default config still ends preflight", DefaultCORSConfig(), http.MethodOptions, office, http.StatusNoContent, "", ""},
		{"listed origin is echoed", withOrigins(office), http.MethodGet, office, http.StatusOK, office, "true"},
		{"unlisted origin gets no grant", withOrigins(office), http.MethodGet, "https://elsewhere.test", http.StatusOK, "", ""},
		{"missing origin gets no grant", withOrigins(office), http.MethodGet, "", http.StatusOK, "", ""},
		{"wildcard drops credentials", withOrigins("*"), http.MethodGet, office, http.StatusOK, "*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.origin != "" {
				headers["Origin"] = tt.origin
			}
			rec := serveThrough(CORSWithConfig(tt.cfg), tt.method, headers)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}

	t.Run("granted preflight lists booking headers", func(t *testing.T) {
		rec := serveThrough(CORSWithConfig(withOrigins(office)), http.MethodOptions, map[string]string{"Origin": office})

		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), IdempotencyKeyHeader)
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
		assert.Equal(t, "43200", rec.Header().Get("Access-Control-Max-Age"))
	})
}

func TestRequestID(t *testing.T) {
	t.Run("generated when absent", func(t *testing.T) {
		rec := serveThrough(RequestID(), http.MethodGet, nil)

		id := rec.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("caller id is propagated", func(t *testing.T) {
		rec := serveThrough(RequestID(), http.MethodGet, map[string]string{RequestIDHeader: "booking-import-7"})

		assert.Equal(t, "booking-import-7", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "booking-import-7", rec.Body.String())
	})

	t.Run("oversized id is replaced", func(t *testing.T) {
		long := strings.Repeat("x", MaxRequestIDLength+1)
		rec := serveThrough(RequestID(), http.MethodGet, map[string]string{RequestIDHeader: long})

		assert.NotEqual(t, long, rec.Body.String())
		assert.NotEmpty(t, rec.Body.String())
	})
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		h := serveThrough(Secure(), http.MethodGet, nil).Header()

		assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
		assert.Contains(t, h.Get("Content-Security-Policy"), "frame-ancestors 'none'")
		assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
		assert.Empty(t, h.Get("Strict-Transport-Security"))
	})

	t.Run("production turns on HSTS", func(t *testing.T) {
		cfg := ProductionSecurityConfig()
		cfg.HSTSPreload = true
		h := serveThrough(SecureWithConfig(cfg), http.MethodGet, nil).Header()

		assert.Equal(t, "max-age=31536000; includeSubDomains; preload", h.Get("Strict-Transport-Security"))
	})

	t.Run("empty policies are not sent", func(t *testing.T) {
		h := serveThrough(SecureWithConfig(SecurityConfig{}), http.MethodGet, nil).Header()

		_, hasCSP := h["Content-Security-Policy"]
		assert.False(t, hasCSP)
		assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	})
}

func TestAbortInternal(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID(), logger.Recovery(zap.NewNop(), AbortInternal))
	engine.GET("/bookings", func(c *gin.Context) { panic("schedule corrupted") })

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set(RequestIDHeader, "req-panic")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), dto.ErrCodeInternal)
	assert.Contains(t, rec.Body.String(), "req-panic")
}
