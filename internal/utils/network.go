package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

var privateRanges = func() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		_, subnet, _ := net.ParseCIDR(cidr)
		nets = append(nets, subnet)
	}
	return nets
}()

// GetRealIP extracts the client IP address from the request.
//
// Priority order:
// 1. X-Real-IP header when it holds a public address (set by reverse proxies like Nginx)
// 2. the first public address in X-Forwarded-For, else its first valid entry
// 3. Gin's ClientIP()
func GetRealIP(c *gin.Context) string {
	realIP := strings.TrimSpace(c.Request.Header.Get("X-Real-IP"))
	if ip := net.ParseIP(realIP); ip != nil && !isPrivateIP(ip) {
		return realIP
	}

	if forwarded := c.Request.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		for _, entry := range ips {
			candidate := strings.TrimSpace(entry)
			if ip := net.ParseIP(candidate); ip != nil && !isPrivateIP(ip) && !IsLocalhost(candidate) {
				return candidate
			}
		}
		if first := strings.TrimSpace(ips[0]); net.ParseIP(first) != nil {
			return first
		}
	}

	return c.ClientIP()
}

// GetUserAgent extracts the User-Agent header from the request
func GetUserAgent(c *gin.Context) string {
	ua := c.Request.UserAgent()
	if ua == "" {
		return "Unknown"
	}
	return ua
}

// IsLocalhost checks if an IP address is localhost
func IsLocalhost(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1" || ip == "localhost"
}

func isPrivateIP(ip net.IP) bool {
	for _, subnet := range privateRanges {
		if subnet.Contains(ip) {
			return true
		}
	}
	return false
}
