package provisioning

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fantasy/internal/platform/broker"
	id "fantasy/pkg/domain"
)

// Topic carries one TeamCreation message per registered user.
const Topic = "team.creation"

// ErrPoison marks a message that can never be processed and must not be retried.
var ErrPoison = errors.New("provisioning: poison message")

// TeamCreation asks the worker to provision a team for a user.
type TeamCreation struct {
	UserID   id.UserID `json:"userId"`
	Email    string    `json:"email"`
	TeamName string    `json:"teamName,omitempty"`
}

// NewMessage encodes req keyed by user id so redeliveries share a partition.
func NewMessage(req TeamCreation) (broker.Message, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return broker.Message{}, fmt.Errorf("encode team creation: %w", err)
	}
	return broker.Message{
		Key:     req.UserID.String(),
		Body:    body,
		Headers: map[string]string{"content-type": "application/json"},
	}, nil
}

// Decode parses a message body. Failures wrap ErrPoison.
func Decode(body []byte) (TeamCreation, error) {
	var raw struct {
		UserID   string `json:"userId"`
		Email    string `json:"email"`
		TeamName string `json:"teamName"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return TeamCreation{}, fmt.Errorf("%w: decode: %v", ErrPoison, err)
	}
	userID, err := id.ParseUserID(raw.UserID)
	if err != nil {
		return TeamCreation{}, fmt.Errorf("%w: %v", ErrPoison, err)
	}
	return TeamCreation{
		UserID:   userID,
		Email:    strings.ToLower(strings.TrimSpace(raw.Email)),
		TeamName: raw.TeamName,
	}, nil
}
