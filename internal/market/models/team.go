package models

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
)

const (
	TeamNameMinLength = 3
	TeamNameMaxLength = 30
)

// Team is the aggregate root for a manager's squad.
//
// Invariants:
//   - Name is 3-30 characters after trimming and unique case-insensitively
//   - OwnerID is immutable and owns no other team
//   - Budget is never negative
//   - PlayerIDs holds each owned player exactly once
type Team struct {
	ID        id.TeamID     `json:"id"`
	Name      string        `json:"name"`
	OwnerID   id.UserID     `json:"owner_id"`
	Budget    int64         `json:"budget"`
	PlayerIDs []id.PlayerID `json:"player_ids"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NormalizeTeamName trims the name and validates its length.
func NormalizeTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < TeamNameMinLength || n > TeamNameMaxLength {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "team name must be between 3 and 30 characters")
	}
	return name, nil
}

func NewTeam(teamID id.TeamID, ownerID id.UserID, name string, budget int64, now time.Time) (*Team, error) {
	name, err := NormalizeTeamName(name)
	if err != nil {
		return nil, err
	}
	if budget < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "budget cannot be negative")
	}
	return &Team{
		ID:        teamID,
		Name:      name,
		OwnerID:   ownerID,
		Budget:    budget,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (t *Team) RosterSize() int { return len(t.PlayerIDs) }

func (t *Team) HasPlayer(playerID id.PlayerID) bool {
	return slices.Contains(t.PlayerIDs, playerID)
}

// AddPlayer appends the player unless it is already on the roster.
func (t *Team) AddPlayer(playerID id.PlayerID) {
	if !t.HasPlayer(playerID) {
		t.PlayerIDs = append(t.PlayerIDs, playerID)
	}
}

// RemovePlayer reports whether the player was on the roster.
func (t *Team) RemovePlayer(playerID id.PlayerID) bool {
	i := slices.Index(t.PlayerIDs, playerID)
	if i < 0 {
		return false
	}
	t.PlayerIDs = slices.Delete(t.PlayerIDs, i, i+1)
	return true
}

func (t *Team) Debit(amount int64, now time.Time) error {
	if amount > t.Budget {
		return dErrors.New(dErrors.CodeInvariantViolation, "budget cannot go negative")
	}
	t.Budget -= amount
	t.UpdatedAt = now
	return nil
}

func (t *Team) Credit(amount int64, now time.Time) {
	t.Budget += amount
	t.UpdatedAt = now
}

// Clone returns a copy that shares no memory with t.
func (t Team) Clone() Team {
	t.PlayerIDs = slices.Clone(t.PlayerIDs)
	return t
}
