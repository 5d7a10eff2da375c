package entities

import "time"

// User represents a registered account.
type User struct {
	ID               string    `json:"id"` // UUID
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // Don't expose password hash in JSON
	Name             *string   `json:"name,omitempty"`
	SubscriptionPlan string    `json:"subscription_plan"` // FREE | PRO | ENTERPRISE
	AvailableCredits int       `json:"available_credits"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
