package visitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeoLocator resolves an IP address to a place. Implementations must return
// promptly; callers treat every error as "unknown".
type GeoLocator interface {
	Locate(ctx context.Context, ip string) (Geo, error)
}

// HTTPGeoLocator calls a JSON IP-geolocation endpoint. URLTemplate contains
// the literal "{ip}", e.g. "http://ip-api.com/json/{ip}".
type HTTPGeoLocator struct {
	URLTemplate string
	HTTPClient  *http.Client
}

func NewHTTPGeoLocator(urlTemplate string, timeout time.Duration) *HTTPGeoLocator {
	return &HTTPGeoLocator{
		URLTemplate: urlTemplate,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

// geoResponse covers the field names used by ip-api.com and ipapi.co.
type geoResponse struct {
	Status      string `json:"status"`
	City        string `json:"city"`
	RegionName  string `json:"regionName"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	CountryName string `json:"country_name"`
	Error       bool   `json:"error"`
}

func (l *HTTPGeoLocator) Locate(ctx context.Context, ip string) (Geo, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Geo{}, fmt.Errorf("not an ip address: %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return Geo{}, fmt.Errorf("non-public ip address: %s", ip)
	}

	endpoint := strings.ReplaceAll(l.URLTemplate, "{ip}", url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Geo{}, fmt.Errorf("request creation error: %w", err)
	}

	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return Geo{}, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Geo{}, fmt.Errorf("geo lookup rejected request (status %d)", resp.StatusCode)
	}

	var body geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Geo{}, fmt.Errorf("response decoding error: %w", err)
	}
	if body.Error || (body.Status != "" && body.Status != "success") {
		return Geo{}, fmt.Errorf("geo lookup failed for %s", ip)
	}

	return Geo{
		City:    nonEmpty(body.City),
		Region:  nonEmpty(firstOf(body.RegionName, body.Region)),
		Country: nonEmpty(firstOf(body.Country, body.CountryName)),
	}, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
