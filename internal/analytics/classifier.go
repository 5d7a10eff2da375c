package analytics

import (
	"math/rand"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"linklytics-be/internal/entities"

	"github.com/mileusna/useragent"
)

// VisitorCookieName identifies returning visitors. The cookie value is the
// short code itself: a visit counts as unique when the cookie is absent or
// holds a different code, and the cookie is then (re)issued for a year.
const (
	VisitorCookieName   = "_visitor_id"
	VisitorCookieMaxAge = 365 * 24 * 60 * 60 // seconds
)

var botPattern = regexp.MustCompile(`(?i)bot|crawler|spider|crawling`)

// mockPublicIPs stands in for loopback/private addresses in demo setups so
// local clicks still land somewhere on the map. The pool is the fixed set
// test fixtures rely on; it is only consulted when the mock flag is on.
var mockPublicIPs = []string{"8.8.8.8", "49.36.15.255", "146.196.44.17"}

// RequestMeta is the raw inbound-request material the classifier works from.
type RequestMeta struct {
	UserAgent     string
	Referrer      string
	ForwardedFor  string // X-Forwarded-For header, possibly a comma chain
	RemoteAddr    string // socket peer, host or host:port
	VisitorCookie string // current _visitor_id cookie value, empty if absent
}

// Classifier derives structured click metadata from raw request material.
// It does no I/O: the geo lookup for the recorded ClientIP happens later,
// in the background writer, so classification never delays a redirect.
type Classifier struct {
	mockPrivateIPs bool
}

// NewClassifier creates a classifier. mockPrivateIPs enables the
// loopback-to-mock-IP fallback.
func NewClassifier(mockPrivateIPs bool) *Classifier {
	return &Classifier{mockPrivateIPs: mockPrivateIPs}
}

// Classify builds a click event for one visit. The second return value
// reports whether the visitor cookie should be (re)issued.
func (c *Classifier) Classify(meta RequestMeta, destination *url.URL, shortCode, urlID string) (*entities.ClickEvent, bool) {
	ua := useragent.Parse(meta.UserAgent)

	referrer := meta.Referrer
	if referrer == "" {
		referrer = "Direct"
	}

	ip := clientIP(meta)
	if c.mockPrivateIPs && IsPrivateIP(ip) {
		ip = mockPublicIPs[rand.Intn(len(mockPublicIPs))]
	}

	isUnique := meta.VisitorCookie == "" || meta.VisitorCookie != shortCode

	evt := &entities.ClickEvent{
		ShortCode:  shortCode,
		URLID:      urlID,
		Timestamp:  time.Now().UTC(),
		Referrer:   referrer,
		Browser:    orUnknown(ua.Name),
		OS:         orUnknown(ua.OS),
		DeviceType: deviceType(ua),
		Country:    unknownLocation,
		City:       unknownLocation,
		IsBot:      botPattern.MatchString(meta.UserAgent),
		IsUnique:   isUnique,
		VisitorID:  shortCode,
		ClientIP:   ip,
	}

	query := destination.Query()
	evt.UTMSource = utmValue(query, "utm_source")
	evt.UTMMedium = utmValue(query, "utm_medium")
	evt.UTMCampaign = utmValue(query, "utm_campaign")
	evt.UTMTerm = utmValue(query, "utm_term")
	evt.UTMContent = utmValue(query, "utm_content")

	return evt, isUnique
}

// DeviceHint returns "ios" or "android" for per-device URL overrides, or ""
// when neither applies.
func DeviceHint(userAgent string) string {
	ua := useragent.Parse(userAgent)
	switch ua.OS {
	case useragent.IOS:
		return "ios"
	case useragent.Android:
		return "android"
	}
	return ""
}

// clientIP takes the first X-Forwarded-For entry when present, otherwise the
// socket peer address with any port stripped.
func clientIP(meta RequestMeta) string {
	if meta.ForwardedFor != "" {
		first := strings.TrimSpace(strings.Split(meta.ForwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(meta.RemoteAddr); err == nil {
		return host
	}
	return meta.RemoteAddr
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	default:
		return "desktop"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// utmValue returns nil when the parameter is absent; an empty present value
// stays an empty string, which is deliberately distinct.
func utmValue(query url.Values, name string) *string {
	if !query.Has(name) {
		return nil
	}
	v := query.Get(name)
	return &v
}
