package models

import "time"

// DeviceURLs holds optional per-device destination overrides.
type DeviceURLs struct {
	IOS     *string `json:"ios,omitempty" binding:"omitempty,url"`
	Android *string `json:"android,omitempty" binding:"omitempty,url"`
}

// GenerateURLRequest is the body of POST /api/v1/generate.
// Everything beyond the original URL is a premium feature.
type GenerateURLRequest struct {
	OriginalURL string      `json:"original_url" binding:"required,url"`
	CustomAlias *string     `json:"custom_alias,omitempty" binding:"omitempty,min=3,max=30,alphanum"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	ActivatesAt *time.Time  `json:"activates_at,omitempty"`
	Password    *string     `json:"password,omitempty"`
	DeviceURLs  *DeviceURLs `json:"device_urls,omitempty"`
}

// RequestsPremiumFeatures reports whether any entitlement-gated field is set.
func (r *GenerateURLRequest) RequestsPremiumFeatures() bool {
	if r.CustomAlias != nil || r.ExpiresAt != nil || r.ActivatesAt != nil || r.Password != nil {
		return true
	}
	return r.DeviceURLs != nil && (r.DeviceURLs.IOS != nil || r.DeviceURLs.Android != nil)
}

// UpdateURLRequest is the body of PATCH /api/v1/update/:shortCode.
// Nil fields are left unchanged. An explicit empty Password clears the
// password rather than keeping it.
type UpdateURLRequest struct {
	OriginalURL *string     `json:"original_url,omitempty" binding:"omitempty,url"`
	CustomAlias *string     `json:"custom_alias,omitempty" binding:"omitempty,min=3,max=30,alphanum"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	ActivatesAt *time.Time  `json:"activates_at,omitempty"`
	Password    *string     `json:"password,omitempty"`
	IsActive    *bool       `json:"is_active,omitempty"`
	DeviceURLs  *DeviceURLs `json:"device_urls,omitempty"`
}

// RequestsPremiumFeatures reports whether any entitlement-gated field is set.
func (r *UpdateURLRequest) RequestsPremiumFeatures() bool {
	if r.CustomAlias != nil || r.ExpiresAt != nil || r.ActivatesAt != nil || r.Password != nil || r.IsActive != nil {
		return true
	}
	return r.DeviceURLs != nil && (r.DeviceURLs.IOS != nil || r.DeviceURLs.Android != nil)
}
