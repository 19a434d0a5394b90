package identity

import (
	"strings"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// Classify maps a raw user-agent string to device, OS, and browser
// categories using substring rules. It is not a full UA parser: unmatched
// strings fall into the unknown/Other buckets instead of erroring.
func Classify(userAgent string) domain.DeviceInfo {
	ua := strings.ToLower(userAgent)

	return domain.DeviceInfo{
		DeviceType: deviceType(ua),
		OS:         operatingSystem(ua),
		Browser:    browser(ua),
	}
}

func deviceType(ua string) string {
	switch {
	case strings.Contains(ua, "ipad"):
		return "tablet"
	case strings.Contains(ua, "iphone"):
		return "mobile"
	case strings.Contains(ua, "android") && strings.Contains(ua, "mobile"):
		return "mobile"
	case strings.Contains(ua, "android"):
		return "tablet"
	case strings.Contains(ua, "mobile"):
		return "mobile"
	case strings.Contains(ua, "windows"), strings.Contains(ua, "macintosh"), strings.Contains(ua, "x11"):
		return "desktop"
	default:
		return "unknown"
	}
}

func operatingSystem(ua string) string {
	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		return "iOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "windows nt"):
		return "Windows"
	case strings.Contains(ua, "mac os x"):
		return "MacOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Other"
	}
}

func browser(ua string) string {
	// Order matters: iOS browser tokens and Edge must match before the
	// generic chrome/safari checks.
	switch {
	case strings.Contains(ua, "crios"):
		return "Chrome (iOS)"
	case strings.Contains(ua, "fxios"):
		return "Firefox (iOS)"
	case strings.Contains(ua, "edgios"):
		return "Edge (iOS)"
	case strings.Contains(ua, "edg"):
		return "Edge"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	default:
		return "Other"
	}
}
