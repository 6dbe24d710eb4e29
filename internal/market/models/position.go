package models

import (
	"strings"

	dErrors "fantasy/pkg/domain-errors"
)

// Position is fixed when a player is created.
type Position string

const (
	PositionGoalkeeper Position = "goalkeeper"
	PositionDefender   Position = "defender"
	PositionMidfielder Position = "midfielder"
	PositionAttacker   Position = "attacker"
)

// Positions lists every position in squad order.
var Positions = []Position{
	PositionGoalkeeper,
	PositionDefender,
	PositionMidfielder,
	PositionAttacker,
}

var positionAliases = map[string]Position{
	"goalkeeper": PositionGoalkeeper,
	"keeper":     PositionGoalkeeper,
	"gk":         PositionGoalkeeper,
	"defender":   PositionDefender,
	"def":        PositionDefender,
	"midfielder": PositionMidfielder,
	"mid":        PositionMidfielder,
	"attacker":   PositionAttacker,
	"forward":    PositionAttacker,
	"striker":    PositionAttacker,
}

func (p Position) IsValid() bool {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionAttacker:
		return true
	}
	return false
}

func (p Position) String() string { return string(p) }

// ParsePosition accepts canonical names and common aliases, case-insensitively.
func ParsePosition(s string) (Position, error) {
	if p, ok := positionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidArgument, "unknown position: "+s)
}
