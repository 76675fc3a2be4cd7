package v1

import (
	"log/slog"
	"net/netip"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// getClientIP extracts the visitor's public address for geo lookup. The
// deployment sits behind a single reverse proxy, so only the headers that
// proxy sets are consulted before falling back to the socket address.
func getClientIP(c *fiber.Ctx) string {
	if ip := selectPreferredIP(strings.Split(c.Get("X-Forwarded-For"), ",")); ip != "" {
		return ip
	}
	if ip := selectPreferredIP([]string{c.Get("X-Real-IP")}); ip != "" {
		return ip
	}

	if addr, ok := parseClientAddr(c.Context().RemoteAddr().String()); ok && isPublicAddr(addr) {
		return addr.String()
	}
	if addr, ok := parseClientAddr(c.IP()); ok && isPublicAddr(addr) {
		return addr.String()
	}

	// No public address anywhere; country resolution will report unknown.
	slog.Default().Info("Fallback to loopback IP for request", slog.String("path", c.Path()))
	return "127.0.0.1"
}

// selectPreferredIP picks the first public IPv4 candidate, falling back to
// the first public IPv6 when the chain carries no IPv4.
func selectPreferredIP(values []string) string {
	var ipv6Fallback string

	for _, raw := range values {
		addr, ok := parseClientAddr(raw)
		if !ok || !isPublicAddr(addr) {
			continue
		}
		if addr.Is4() {
			return addr.String()
		}
		if ipv6Fallback == "" {
			ipv6Fallback = addr.String()
		}
	}

	return ipv6Fallback
}

func isPublicAddr(addr netip.Addr) bool {
	return !addr.IsPrivate() && !addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast() && !addr.IsUnspecified()
}

// parseClientAddr normalizes one header candidate: surrounding whitespace and
// quotes, brackets, an optional port, a zone identifier, and IPv4-mapped IPv6
// forms all reduce to a bare address.
func parseClientAddr(raw string) (netip.Addr, bool) {
	clean := strings.Trim(strings.TrimSpace(raw), `"`)
	if clean == "" {
		return netip.Addr{}, false
	}

	if percent := strings.Index(clean, "%"); percent != -1 {
		clean = clean[:percent]
	}

	if addrPort, err := netip.ParseAddrPort(clean); err == nil {
		return addrPort.Addr().Unmap(), true
	}

	clean = strings.TrimSuffix(strings.TrimPrefix(clean, "["), "]")
	if addr, err := netip.ParseAddr(clean); err == nil {
		return addr.Unmap(), true
	}

	return netip.Addr{}, false
}
