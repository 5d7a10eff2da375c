package entities

import "time"

// URL represents one shortening mapping in the database.
type URL struct {
	ID           string     `json:"id"` // UUID
	ShortCode    string     `json:"short_code"`
	CustomAlias  *string    `json:"custom_alias,omitempty"` // Optional second public lookup key
	OriginalURL  string     `json:"original_url"`
	UserID       string     `json:"user_id"` // Owner, UUID
	PasswordHash string     `json:"-"`       // Empty string means no password
	IsActive     bool       `json:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ActivatesAt  *time.Time `json:"activates_at,omitempty"`
	IOSURL       *string    `json:"ios_url,omitempty"`
	AndroidURL   *string    `json:"android_url,omitempty"`
	TotalClicks  int64      `json:"total_clicks"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicKeys returns the lookup keys this link answers to.
func (u *URL) PublicKeys() []string {
	keys := []string{u.ShortCode}
	if u.CustomAlias != nil && *u.CustomAlias != "" {
		keys = append(keys, *u.CustomAlias)
	}
	return keys
}
