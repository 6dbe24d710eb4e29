// Package domain holds typed identifiers shared across the market, provisioning
// and notification packages. Each id wraps a UUID so a TeamID can never be passed
// where a PlayerID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "fantasy/pkg/domain-errors"
)

type (
	UserID         uuid.UUID
	TeamID         uuid.UUID
	PlayerID       uuid.UUID
	NotificationID uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id TeamID) String() string         { return uuid.UUID(id).String() }
func (id PlayerID) String() string       { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id TeamID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id PlayerID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewTeamID() TeamID                 { return TeamID(uuid.New()) }
func NewPlayerID() PlayerID             { return PlayerID(uuid.New()) }
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

// ParseUserID parses a user id at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseTeamID parses a team id at a trust boundary.
func ParseTeamID(s string) (TeamID, error) {
	u, err := parseUUID(s, "team_id")
	return TeamID(u), err
}

// ParsePlayerID parses a player id at a trust boundary.
func ParsePlayerID(s string) (PlayerID, error) {
	u, err := parseUUID(s, "player_id")
	return PlayerID(u), err
}

// ParseNotificationID parses a notification id at a trust boundary.
func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification_id")
	return NotificationID(u), err
}

// parseUUID rejects empty, malformed and nil UUIDs with CodeInvalidInput.
func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be nil")
	}
	return u, nil
}

func (id UserID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id TeamID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id PlayerID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id NotificationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TeamID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PlayerID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *NotificationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
