package entities

import "time"

// ClickEvent is one observed visit to a link, recorded after the redirect
// response is sent. Rows are append-only.
type ClickEvent struct {
	ID         int64     `json:"id"`
	ShortCode  string    `json:"short_code"`
	URLID      string    `json:"url_id"` // Back-reference to urls.id, no cascade
	Timestamp  time.Time `json:"timestamp"`
	Referrer   string    `json:"referrer"` // "Direct" when the header was absent
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	DeviceType string    `json:"device_type"`
	Country    string    `json:"country"`
	City       string    `json:"city"`
	IsBot      bool      `json:"is_bot"`
	IsUnique   bool      `json:"is_unique"`
	VisitorID  string    `json:"visitor_id"`

	// ClientIP is carried only until the background writer resolves it to
	// Country/City; it is never persisted.
	ClientIP string `json:"-"`

	// UTM tags extracted from the destination URL. Nil means the parameter
	// was absent, which is distinct from an empty value.
	UTMSource   *string `json:"utm_source,omitempty"`
	UTMMedium   *string `json:"utm_medium,omitempty"`
	UTMCampaign *string `json:"utm_campaign,omitempty"`
	UTMTerm     *string `json:"utm_term,omitempty"`
	UTMContent  *string `json:"utm_content,omitempty"`
}
