package models

import "time"

// Team is the roster the dashboard revolves around. A user without a team
// sees creation/join flows instead; that state is modeled as a nil Team.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId"`
	Members     []Member  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// HasMember reports whether the roster contains the given member id.
func (t *Team) HasMember(id string) bool {
	if t == nil {
		return false
	}
	for _, m := range t.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}
