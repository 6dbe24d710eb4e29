package models

import (
	"cmp"
	"slices"
	"strings"

	id "fantasy/pkg/domain"
)

// Listing is the market view of a listed player.
type Listing struct {
	PlayerID    id.PlayerID `json:"playerId"`
	PlayerName  string      `json:"playerName"`
	Position    Position    `json:"position"`
	AskingPrice int64       `json:"askingPrice"`
	MarketValue int64       `json:"marketValue"`
	TeamID      id.TeamID   `json:"teamId"`
	TeamName    string      `json:"teamName"`
	IsOwnPlayer bool        `json:"isOwnPlayer"`
}

// ListingFilter narrows a listings query. All set fields are ANDed and price
// bounds are inclusive.
type ListingFilter struct {
	Position         *Position
	MinPrice         *int64
	MaxPrice         *int64
	NameContains     string
	TeamNameContains string
	ViewerID         id.UserID
}

// Matches applies the filter to a listed player and its owning team.
func (f ListingFilter) Matches(p Player, t Team) bool {
	price, listed := p.Price()
	if !listed {
		return false
	}
	if f.Position != nil && p.Position != *f.Position {
		return false
	}
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}
	if f.NameContains != "" && !containsFold(p.Name, f.NameContains) {
		return false
	}
	if f.TeamNameContains != "" && !containsFold(t.Name, f.TeamNameContains) {
		return false
	}
	return true
}

// NewListing builds the view of p for the filter's viewer.
func (f ListingFilter) NewListing(p Player, t Team) Listing {
	price, _ := p.Price()
	return Listing{
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		Position:    p.Position,
		AskingPrice: price,
		MarketValue: p.MarketValue,
		TeamID:      t.ID,
		TeamName:    t.Name,
		IsOwnPlayer: !f.ViewerID.IsNil() && t.OwnerID == f.ViewerID,
	}
}

// SortListings orders by asking price ascending, then player name, then id.
func SortListings(listings []Listing) {
	slices.SortFunc(listings, func(a, b Listing) int {
		return cmp.Or(
			cmp.Compare(a.AskingPrice, b.AskingPrice),
			cmp.Compare(a.PlayerName, b.PlayerName),
			cmp.Compare(a.PlayerID.String(), b.PlayerID.String()),
		)
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
