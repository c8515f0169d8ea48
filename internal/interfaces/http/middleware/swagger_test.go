package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveSwagger(cfg SwaggerConfig, remoteAddr string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	tests := []struct {
		name       string
		cfg        SwaggerConfig
		remoteAddr string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "disabled hides the docs",
			cfg:        SwaggerConfig{Enabled: false},
			wantStatus: http.StatusNotFound,
			wantCode:   "ERR_NOT_FOUND",
		},
		{
			name:       "enabled without allow list",
			cfg:        SwaggerConfig{Enabled: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "listed address",
			cfg:        SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}},
			remoteAddr: "127.0.0.1:12345",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unlisted address",
			cfg:        SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}},
			remoteAddr: "192.168.1.1:12345",
			wantStatus: http.StatusForbidden,
			wantCode:   "ERR_FORBIDDEN",
		},
		{
			name:       "inside office range",
			cfg:        SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}},
			remoteAddr: "10.50.100.200:12345",
			wantStatus: http.StatusOK,
		},
		{
			name:       "outside office range",
			cfg:        SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}},
			remoteAddr: "192.168.1.1:12345",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "garbage entries deny everyone",
			cfg:        SwaggerConfig{Enabled: true, AllowedIPs: []string{"not-an-ip"}},
			remoteAddr: "127.0.0.1:12345",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveSwagger(tt.cfg, tt.remoteAddr)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestAllowList_Contains(t *testing.T) {
	list := parseAllowList([]string{"192.168.1.1", " ::1 ", "10.0.0.0/8", "bad/cidr"})
	assert.Len(t, list, 3)

	tests := []struct {
		addr string
		want bool
	}{
		{"192.168.1.1", true},
		{"192.168.1.2", false},
		{"10.0.0.5", true},
		{"11.0.0.5", false},
		{"::1", true},
		{"::ffff:10.1.2.3", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, list.contains(netip.MustParseAddr(tt.addr)))
		})
	}

	assert.False(t, list.contains(netip.Addr{}))
}
