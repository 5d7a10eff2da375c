package models

import "time"

// GenerateURLResponse is returned after creating (or reusing) a short URL.
type GenerateURLResponse struct {
	ShortCode   string `json:"short_code"`
	ShortURL    string `json:"short_url"` // Base URL + short code
	OriginalURL string `json:"original_url"`
	Reused      bool   `json:"reused"` // True when an existing plain link was returned
}

// URLSummary is the restricted projection returned by GET /api/v1/urls.
// It never carries the password hash.
type URLSummary struct {
	ShortCode   string  `json:"short_code"`
	CustomAlias *string `json:"custom_alias,omitempty"`
	OriginalURL string  `json:"original_url"`
	TotalClicks int64   `json:"total_clicks"`
	IsActive    bool    `json:"is_active"`
}

// URLDetails is the owner-facing view of a single link.
type URLDetails struct {
	ShortCode   string      `json:"short_code"`
	CustomAlias *string     `json:"custom_alias,omitempty"`
	OriginalURL string      `json:"original_url"`
	IsActive    bool        `json:"is_active"`
	HasPassword bool        `json:"has_password"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	ActivatesAt *time.Time  `json:"activates_at,omitempty"`
	DeviceURLs  *DeviceURLs `json:"device_urls,omitempty"`
	TotalClicks int64       `json:"total_clicks"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
