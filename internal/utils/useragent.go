package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	BrowserVer string `json:"browser_ver"`
	IsBot      bool   `json:"is_bot"`
	Platform   string `json:"platform"` // android, ios, windows, mac, linux
}

var tabletIndicators = []string{"ipad", "tablet", "kindle", "playbook", "nexus 7", "nexus 9", "nexus 10", "sm-t"}

// platform prefixes checked in order; "ios" must precede the generic matches
var platforms = []struct{ key, platform string }{
	{"android", "android"},
	{"iphone os", "ios"},
	{"ios", "ios"},
	{"windows", "windows"},
	{"mac os x", "mac"},
	{"macos", "mac"},
	{"chrome os", "chromeos"},
	{"cros", "chromeos"},
	{"ubuntu", "linux"},
	{"linux", "linux"},
}

// ParseUserAgent parses a User-Agent string and extracts device information
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Platform:   "unknown",
		}
	}

	parser := ua.New(userAgent)
	name, version := parser.Browser()
	if name == "" {
		name = "Unknown"
	}

	return DeviceInfo{
		DeviceType: deviceType(parser),
		OS:         osName(parser),
		Browser:    name,
		BrowserVer: version,
		IsBot:      parser.Bot(),
		Platform:   platform(parser),
	}
}

func deviceType(parser *ua.UserAgent) string {
	lower := strings.ToLower(parser.UA())
	for _, indicator := range tabletIndicators {
		if strings.Contains(lower, indicator) {
			return "tablet"
		}
	}
	if parser.Mobile() {
		return "mobile"
	}
	return "desktop"
}

func osName(parser *ua.UserAgent) string {
	info := parser.OSInfo()
	if info.Name == "" {
		return "Unknown"
	}
	if info.Version != "" {
		return info.Name + " " + info.Version
	}
	return info.Name
}

func platform(parser *ua.UserAgent) string {
	name := strings.ToLower(parser.OSInfo().Name)
	for _, p := range platforms {
		if strings.Contains(name, p.key) {
			return p.platform
		}
	}
	return "unknown"
}
