package models

import id "fantasy/pkg/domain"

type ListResult struct {
	PlayerID    id.PlayerID `json:"playerId"`
	Name        string      `json:"name"`
	Position    Position    `json:"position"`
	AskingPrice int64       `json:"askingPrice"`
}

type UnlistResult struct {
	PlayerID id.PlayerID `json:"playerId"`
	Name     string      `json:"name"`
}

type PriceUpdateResult struct {
	PlayerID    id.PlayerID `json:"playerId"`
	Name        string      `json:"name"`
	AskingPrice int64       `json:"askingPrice"`
}

type BuyResult struct {
	PlayerID     id.PlayerID `json:"playerId"`
	PlayerName   string      `json:"playerName"`
	NewTeamID    id.TeamID   `json:"newTeamId"`
	PricePaid    int64       `json:"pricePaid"`
	BuyerBudget  int64       `json:"buyerBudget"`
	SellerBudget int64       `json:"sellerBudget"`
}

type PlayerView struct {
	ID             id.PlayerID `json:"id"`
	Name           string      `json:"name"`
	Position       Position    `json:"position"`
	MarketValue    int64       `json:"marketValue"`
	OnTransferList bool        `json:"onTransferList"`
	AskingPrice    *int64      `json:"askingPrice,omitempty"`
}

type TeamView struct {
	ID      id.TeamID    `json:"id"`
	Name    string       `json:"name"`
	Budget  int64        `json:"budget"`
	Players []PlayerView `json:"players"`
}

func NewPlayerView(p Player) PlayerView {
	p = p.Clone()
	return PlayerView{
		ID:             p.ID,
		Name:           p.Name,
		Position:       p.Position,
		MarketValue:    p.MarketValue,
		OnTransferList: p.OnTransferList,
		AskingPrice:    p.AskingPrice,
	}
}

type RenameResult struct {
	TeamID id.TeamID `json:"teamId"`
	Name   string    `json:"name"`
}
