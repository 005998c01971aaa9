package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop
	Browser    string `json:"browser"`
	Platform   string `json:"platform"` // android, ios, windows, mac, linux
	IsBot      bool   `json:"is_bot"`
	Raw        string `json:"raw"`
}

// ParseUserAgent parses a User-Agent string and extracts device information
// for login session audit rows.
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{
			DeviceType: "unknown",
			Browser:    "Unknown",
			Platform:   "unknown",
		}
	}

	parser := ua.New(userAgent)
	browser, _ := parser.Browser()

	info := DeviceInfo{
		Browser:  browser,
		IsBot:    parser.Bot(),
		Platform: normalizePlatform(parser),
		Raw:      userAgent,
	}

	switch {
	case parser.Mobile() && isTablet(userAgent):
		info.DeviceType = "tablet"
	case parser.Mobile():
		info.DeviceType = "mobile"
	default:
		info.DeviceType = "desktop"
	}

	return info
}

func normalizePlatform(parser *ua.UserAgent) string {
	os := strings.ToLower(parser.OS())
	switch {
	case strings.Contains(os, "android"):
		return "android"
	case strings.Contains(os, "iphone"), strings.Contains(os, "ipad"), strings.Contains(os, "ios"):
		return "ios"
	case strings.Contains(os, "windows"):
		return "windows"
	case strings.Contains(os, "mac"):
		return "mac"
	case strings.Contains(os, "linux"):
		return "linux"
	default:
		return "unknown"
	}
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	return strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet")
}
