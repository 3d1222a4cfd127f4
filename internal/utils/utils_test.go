package utils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "198.51.100.7:1234", nil, false, "198.51.100.7"},
		{"proxy ignored when untrusted", "198.51.100.7:1234", map[string]string{"X-Forwarded-For": "1.2.3.4"}, false, "198.51.100.7"},
		{"cloudflare header first", "127.0.0.1:1", map[string]string{"CF-Connecting-IP": "5.6.7.8", "X-Forwarded-For": "1.2.3.4"}, true, "5.6.7.8"},
		{"left-most forwarded", "127.0.0.1:1", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 10.0.0.1"}, true, "1.2.3.4"},
		{"real ip", "127.0.0.1:1", map[string]string{"X-Real-IP": "9.9.9.9"}, true, "9.9.9.9"},
		{"ipv6 remote", "[2001:db8::1]:443", nil, false, "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.5 ", "2001:db8::/32", "garbage", ""})
	if m.IsEmpty() {
		t.Fatal("matcher should not be empty")
	}

	tests := map[string]bool{
		"10.20.30.40":     true,
		"192.168.1.5":     true,
		"192.168.1.6":     false,
		"not-an-ip":       false,
		"::ffff:10.1.1.1": true,
		"2001:db8::42":    true,
		"2001:db9::1":     false,
	}
	for ip, want := range tests {
		if got := m.Allow(ip); got != want {
			t.Errorf("Allow(%q) = %v, want %v", ip, got, want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("nil list should give an empty matcher")
	}
}

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestCloseLogged(t *testing.T) {
	ok := &closer{}
	CloseLogged(ok, "ok", logger.NewNop())
	if !ok.closed {
		t.Error("CloseLogged() did not close")
	}

	failing := &closer{err: errors.New("boom")}
	CloseLogged(failing, "failing", logger.NewNop())
	if !failing.closed {
		t.Error("CloseLogged() did not close failing closer")
	}

	CloseLogged(nil, "nil", logger.NewNop())
}
