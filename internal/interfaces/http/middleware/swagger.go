package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// SwaggerConfig holds configuration for the documentation endpoint guard
type SwaggerConfig struct {
	Enabled     bool     // serve the swagger UI at all
	RequireAuth bool     // demand a valid JWT before serving docs
	AllowedIPs  []string // optional allowlist, single IPs or CIDR ranges
}

// ipAllowlist holds pre-parsed allowlist entries so per-request checks
// avoid re-parsing config strings.
type ipAllowlist struct {
	ips  []net.IP
	nets []*net.IPNet
}

func newIPAllowlist(entries []string) *ipAllowlist {
	al := &ipAllowlist{}
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				al.nets = append(al.nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			al.ips = append(al.ips, ip)
		}
	}
	return al
}

func (al *ipAllowlist) empty() bool {
	return len(al.ips) == 0 && len(al.nets) == 0
}

func (al *ipAllowlist) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range al.ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range al.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SwaggerProtection guards the swagger UI. Disabled docs answer 404 so the
// endpoint is indistinguishable from an unknown route; an allowlist and the
// JWT guard can be layered on top of each other.
func SwaggerProtection(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	allowlist := newIPAllowlist(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(
				"NOT_FOUND", "API documentation is not available"))
			return
		}

		if len(cfg.AllowedIPs) > 0 {
			if allowlist.empty() || !allowlist.contains(requestIP(c)) {
				c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
					"FORBIDDEN", "Access to API documentation is restricted"))
				return
			}
		}

		if cfg.RequireAuth && jwtMiddleware != nil {
			jwtMiddleware(c)
			if c.IsAborted() {
				return
			}
		}

		c.Next()
	}
}

// requestIP resolves the caller address, preferring gin's trusted-proxy
// aware ClientIP over the raw socket address.
func requestIP(c *gin.Context) net.IP {
	if clientIP := c.ClientIP(); clientIP != "" {
		if ip := net.ParseIP(clientIP); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}
