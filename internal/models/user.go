package models

import "time"

// User is the authenticated account as the API reports it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// PendingUser is an account still on a temporary password, surfaced on the
// admin tab so an owner can chase the onboarding along.
type PendingUser struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	TempPasswordAt time.Time `json:"tempPasswordAt"`
	CreatedAt      time.Time `json:"createdAt"`
}
