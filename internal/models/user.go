package models

import (
	"time"
)

// DefaultStoreNumber is used until a user picks a store
const DefaultStoreNumber = 86

// AuthUser is the identity resolved for a request, signed in or anonymous
type AuthUser struct {
	ID          string  `json:"id"`
	Email       *string `json:"email,omitempty"`
	IsAnonymous bool    `json:"is_anonymous"`
}

// User is the persisted user row
type User struct {
	ID          string    `json:"id"`
	Email       *string   `json:"email,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	StoreNumber int       `json:"store_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpdateStoreRequest is the API request body for switching stores
type UpdateStoreRequest struct {
	StoreNumber int `json:"store_number"`
}

// AnonymousUserStats summarizes anonymous accounts for maintenance
type AnonymousUserStats struct {
	TotalAnonymous int `json:"total_anonymous" yaml:"total_anonymous"`
	Active7d       int `json:"active_7d" yaml:"active_7d"`
	Active30d      int `json:"active_30d" yaml:"active_30d"`
	Stale30d       int `json:"stale_30d" yaml:"stale_30d"`
}
