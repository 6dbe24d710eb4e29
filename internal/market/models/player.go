package models

import (
	"time"

	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
)

// Player belongs to exactly one team at a time.
//
// Invariants:
//   - OnTransferList is true iff AskingPrice is non-nil
//   - AskingPrice, when set, is positive
//   - Position never changes
//
// The listing pair is only mutated through List, Unlist and Reprice.
type Player struct {
	ID             id.PlayerID `json:"id"`
	Name           string      `json:"name"`
	Position       Position    `json:"position"`
	TeamID         id.TeamID   `json:"team_id"`
	MarketValue    int64       `json:"market_value"`
	OnTransferList bool        `json:"on_transfer_list"`
	AskingPrice    *int64      `json:"asking_price,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// List marks the player sellable at price.
func (p *Player) List(price int64, now time.Time) error {
	if price <= 0 {
		return dErrors.New(dErrors.CodeInvalidArgument, "asking price must be greater than zero")
	}
	p.AskingPrice = &price
	p.OnTransferList = true
	p.UpdatedAt = now
	return nil
}

// Unlist clears the flag and the price together.
func (p *Player) Unlist(now time.Time) {
	p.OnTransferList = false
	p.AskingPrice = nil
	p.UpdatedAt = now
}

// Reprice replaces the asking price of a listed player.
func (p *Player) Reprice(price int64, now time.Time) error {
	if price <= 0 {
		return dErrors.New(dErrors.CodeInvalidArgument, "asking price must be greater than zero")
	}
	if !p.OnTransferList {
		return dErrors.New(dErrors.CodeNotFound, "player is not on the transfer list")
	}
	p.AskingPrice = &price
	p.UpdatedAt = now
	return nil
}

// Price returns the asking price and whether the player is listed.
func (p Player) Price() (int64, bool) {
	if !p.OnTransferList || p.AskingPrice == nil {
		return 0, false
	}
	return *p.AskingPrice, true
}

func (p Player) Clone() Player {
	if p.AskingPrice != nil {
		price := *p.AskingPrice
		p.AskingPrice = &price
	}
	return p
}
