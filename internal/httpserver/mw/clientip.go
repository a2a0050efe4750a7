package mw

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// hostNoPort returns the host part (no port) from strings like "ip:port", "[v6]:port", or "ip".
func hostNoPort(s string) string {
	if s == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return strings.Trim(s, "[]")
}

// firstForwardedFor returns the left-most entry of X-Forwarded-For.
func firstForwardedFor(xff string) string {
	if i := strings.IndexByte(xff, ','); i >= 0 {
		xff = xff[:i]
	}
	return strings.TrimSpace(xff)
}

// ClientIP resolves the real client IP.
// If trustProxy is true, prefers CF-Connecting-IP, X-Forwarded-For (first), then X-Real-IP.
// Otherwise only RemoteAddr is used.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, v := range []string{
			strings.TrimSpace(r.Header.Get("CF-Connecting-IP")),
			firstForwardedFor(r.Header.Get("X-Forwarded-For")),
			strings.TrimSpace(r.Header.Get("X-Real-IP")),
		} {
			if ip := hostNoPort(v); ip != "" {
				return ip
			}
		}
	}
	return hostNoPort(r.RemoteAddr)
}

// cidrMatcher matches addresses against a list of prefixes.
// Bare IPs are stored as single-address prefixes.
type cidrMatcher struct {
	prefixes []netip.Prefix
}

func newCIDRMatcher(list []string) *cidrMatcher {
	m := &cidrMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			a = a.Unmap()
			m.prefixes = append(m.prefixes, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return m
}

func (m *cidrMatcher) empty() bool { return len(m.prefixes) == 0 }

func (m *cidrMatcher) allow(ip string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range m.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
