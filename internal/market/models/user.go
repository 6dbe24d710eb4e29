package models

import (
	"time"

	id "fantasy/pkg/domain"
)

// User is a registered manager. TeamID stays nil until provisioning commits.
type User struct {
	ID        id.UserID  `json:"id"`
	Email     string     `json:"email"`
	TeamID    *id.TeamID `json:"team_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (u User) HasTeam() bool { return u.TeamID != nil }

func (u User) Clone() User {
	if u.TeamID != nil {
		teamID := *u.TeamID
		u.TeamID = &teamID
	}
	return u
}
