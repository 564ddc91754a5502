package middleware

import (
	"log/slog"
	"net"
	"net/http"
)

// IPAllowlist restricts a route group to clients inside the given CIDRs.
// Invalid CIDRs are logged and skipped; an empty list allows everyone.
func IPAllowlist(cidrs []string, l *slog.Logger) func(http.Handler) http.Handler {
	nets := parseCIDRs(cidrs, "allowlist", l)

	return func(next http.Handler) http.Handler {
		if len(cidrs) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := peerHost(r)
			if ip := net.ParseIP(host); ip != nil && containsIP(nets, ip) {
				next.ServeHTTP(w, r)
				return
			}
			l.WarnContext(r.Context(), "access denied by IP allowlist",
				slog.String("ip", host),
				slog.String("path", r.URL.Path),
			)
			writeError(w, http.StatusForbidden, "FORBIDDEN", "access restricted by IP allowlist")
		})
	}
}

func parseCIDRs(cidrs []string, purpose string, l *slog.Logger) []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range cidrs {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			l.Warn("invalid "+purpose+" CIDR, skipping",
				slog.String("cidr", cidr),
				slog.String("error", err.Error()),
			)
			continue
		}
		nets = append(nets, ipNet)
	}
	return nets
}

func containsIP(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// peerHost is the host part of the connection address.
func peerHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
