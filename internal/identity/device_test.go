package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		want      domain.DeviceInfo
	}{
		{
			name:      "iphone safari",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
			want:      domain.DeviceInfo{DeviceType: "mobile", OS: "iOS", Browser: "Safari"},
		},
		{
			name:      "ipad chrome ios",
			userAgent: "Mozilla/5.0 (iPad; CPU OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/125.0 Mobile/15E148 Safari/604.1",
			want:      domain.DeviceInfo{DeviceType: "tablet", OS: "iOS", Browser: "Chrome (iOS)"},
		},
		{
			name:      "android phone chrome",
			userAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Mobile Safari/537.36",
			want:      domain.DeviceInfo{DeviceType: "mobile", OS: "Android", Browser: "Chrome"},
		},
		{
			name:      "android tablet",
			userAgent: "Mozilla/5.0 (Linux; Android 14; SM-X910) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36",
			want:      domain.DeviceInfo{DeviceType: "tablet", OS: "Android", Browser: "Chrome"},
		},
		{
			name:      "windows edge",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36 Edg/125.0",
			want:      domain.DeviceInfo{DeviceType: "desktop", OS: "Windows", Browser: "Edge"},
		},
		{
			name:      "mac safari",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
			want:      domain.DeviceInfo{DeviceType: "desktop", OS: "MacOS", Browser: "Safari"},
		},
		{
			name:      "linux firefox",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:126.0) Gecko/20100101 Firefox/126.0",
			want:      domain.DeviceInfo{DeviceType: "desktop", OS: "Linux", Browser: "Firefox"},
		},
		{
			name:      "firefox ios",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) FxiOS/126.0 Mobile/15E148 Safari/605.1.15",
			want:      domain.DeviceInfo{DeviceType: "mobile", OS: "iOS", Browser: "Firefox (iOS)"},
		},
		{
			name:      "empty user agent",
			userAgent: "",
			want:      domain.DeviceInfo{DeviceType: "unknown", OS: "Other", Browser: "Other"},
		},
		{
			name:      "bot",
			userAgent: "curl/8.5.0",
			want:      domain.DeviceInfo{DeviceType: "unknown", OS: "Other", Browser: "Other"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.userAgent))
		})
	}
}
