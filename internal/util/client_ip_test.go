package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name           string
		remoteAddr     string
		forwardedFor   string
		trustForwarded bool
		want           string
	}{
		{
			name:       "direct peer",
			remoteAddr: "203.0.113.7:52100",
			want:       "203.0.113.7",
		},
		{
			name:           "forwarded header ignored when untrusted",
			remoteAddr:     "10.0.0.2:4000",
			forwardedFor:   "198.51.100.9",
			trustForwarded: false,
			want:           "10.0.0.2",
		},
		{
			name:           "forwarded header used when trusted",
			remoteAddr:     "10.0.0.2:4000",
			forwardedFor:   "198.51.100.9, 10.0.0.2",
			trustForwarded: true,
			want:           "198.51.100.9",
		},
		{
			name:           "garbage forwarded falls back to peer",
			remoteAddr:     "10.0.0.2:4000",
			forwardedFor:   "not-an-ip",
			trustForwarded: true,
			want:           "10.0.0.2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}
			if got := ClientIP(req, tt.trustForwarded); got != tt.want {
				t.Fatalf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
