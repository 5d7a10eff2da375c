package analytics

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Locator resolves an IP address to a coarse location. Unresolvable inputs
// come back as ("Unknown", "Unknown") rather than an error, because a failed
// lookup must never break click capture.
type Locator interface {
	Lookup(ip string) (country, city string)
}

const unknownLocation = "Unknown"

type geoCacheItem struct {
	country string
	city    string
	expires time.Time
}

// HTTPLocator queries an ipwho.is-style endpoint, caching answers in memory
// with a TTL so repeat visitors don't trigger repeat lookups.
type HTTPLocator struct {
	baseURL string
	client  *http.Client
	ttl     time.Duration

	mu    sync.Mutex
	cache map[string]geoCacheItem
}

// NewHTTPLocator creates a locator against the given lookup endpoint.
func NewHTTPLocator(baseURL string, ttl time.Duration) *HTTPLocator {
	return &HTTPLocator{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		client:  &http.Client{Timeout: 2 * time.Second},
		ttl:     ttl,
		cache:   make(map[string]geoCacheItem),
	}
}

func (g *HTTPLocator) Lookup(ip string) (string, string) {
	if ip == "" || IsPrivateIP(ip) {
		return unknownLocation, unknownLocation
	}

	now := time.Now()
	g.mu.Lock()
	if item, ok := g.cache[ip]; ok && now.Before(item.expires) {
		g.mu.Unlock()
		return item.country, item.city
	}
	g.mu.Unlock()

	country, city := g.fetch(ip)

	g.mu.Lock()
	g.cache[ip] = geoCacheItem{country: country, city: city, expires: now.Add(g.ttl)}
	g.mu.Unlock()

	return country, city
}

func (g *HTTPLocator) fetch(ip string) (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+ip, nil)
	if err != nil {
		return unknownLocation, unknownLocation
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return unknownLocation, unknownLocation
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unknownLocation, unknownLocation
	}

	var out struct {
		Success     bool   `json:"success"`
		CountryCode string `json:"country_code"`
		City        string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || !out.Success {
		return unknownLocation, unknownLocation
	}

	country := strings.ToUpper(strings.TrimSpace(out.CountryCode))
	if len(country) != 2 {
		return unknownLocation, unknownLocation
	}

	city := strings.TrimSpace(out.City)
	if city == "" {
		city = unknownLocation
	}
	return country, city
}

// IsPrivateIP reports whether ip is loopback, link-local or RFC 1918 space.
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast()
}
