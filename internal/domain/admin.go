package domain

import "time"

// Admin is the domain model for administrator accounts.
// The ID is assigned at creation and stable for the account's lifetime.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
