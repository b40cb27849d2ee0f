package models

import "time"

// User is the owner identity created by login-by-email. ListIDs is derived
// from the lists whose OwnerID points at the user; it is never stored.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
	ListIDs     []string  `json:"listIds"`
}
