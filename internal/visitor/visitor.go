// Package visitor derives best-effort metadata about the browser behind a
// request: address, user agent family and coarse geography.
package visitor

import (
	"net/http"
	"net/url"
	"strings"
)

const Unknown = "unknown"

// Info is what the server can learn about a visitor without asking.
type Info struct {
	IPAddress     string
	UserAgent     string
	Browser       string
	OS            string
	TrafficSource string
	Geo           Geo
}

// Geo is nil-able per field; an unresolved place is stored as NULL.
type Geo struct {
	City    *string
	Region  *string
	Country *string
}

func (g Geo) Empty() bool {
	return g.City == nil && g.Region == nil && g.Country == nil
}

// FromRequest reads everything derivable from headers alone.
func FromRequest(r *http.Request) Info {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = Unknown
	}
	return Info{
		IPAddress:     ClientIP(r),
		UserAgent:     ua,
		Browser:       DetectBrowser(ua),
		OS:            DetectOS(ua),
		TrafficSource: DetectTrafficSource(ua),
		Geo:           GeoFromHeaders(r.Header),
	}
}

// ClientIP takes the first hop of X-Forwarded-For, then X-Real-IP.
func ClientIP(r *http.Request) string {
	raw := r.Header.Get("X-Forwarded-For")
	if raw == "" {
		raw = r.Header.Get("X-Real-IP")
	}
	first, _, _ := strings.Cut(raw, ",")
	if ip := strings.TrimSpace(first); ip != "" {
		return ip
	}
	return Unknown
}

// DetectBrowser checks tokens in priority order; Chrome UAs also carry
// "Safari" and Edge UAs also carry "Chrome".
func DetectBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "Edg"):
		return "Edge"
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	}
	return "Unknown"
}

func DetectOS(ua string) string {
	switch {
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		return "iOS"
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac OS"):
		return "Mac"
	}
	return "Unknown"
}

var trafficTokens = []struct {
	tokens []string
	source string
}{
	{[]string{"whatsapp"}, "whatsapp"},
	{[]string{"instagram"}, "instagram"},
	{[]string{"fban", "fbav"}, "facebook"},
	{[]string{"twitter"}, "twitter"},
	{[]string{"telegram"}, "telegram"},
	{[]string{"wv"}, "android-webview"},
}

// DetectTrafficSource recognises in-app browsers of messaging and social apps.
func DetectTrafficSource(ua string) string {
	lower := strings.ToLower(ua)
	for _, t := range trafficTokens {
		for _, tok := range t.tokens {
			if strings.Contains(lower, tok) {
				return t.source
			}
		}
	}
	return "direct"
}

// GeoFromHeaders reads edge-provided geography. Vercel URL-encodes the city.
func GeoFromHeaders(h http.Header) Geo {
	var g Geo
	if c := h.Get("X-Vercel-IP-Country"); c != "" {
		g.Country = &c
	} else if c := h.Get("CF-IPCountry"); c != "" && c != "XX" {
		g.Country = &c
	}
	if reg := h.Get("X-Vercel-IP-Country-Region"); reg != "" {
		g.Region = &reg
	}
	if city := h.Get("X-Vercel-IP-City"); city != "" {
		if decoded, err := url.QueryUnescape(city); err == nil {
			city = decoded
		}
		g.City = &city
	}
	return g
}
