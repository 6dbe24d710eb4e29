package models

import (
	"time"

	id "fantasy/pkg/domain"
)

// PlayerSold is handed to the notification sink after a purchase commits.
// RecipientUserID is the seller's owner.
type PlayerSold struct {
	RecipientUserID id.UserID   `json:"recipientUserId"`
	PlayerID        id.PlayerID `json:"playerId"`
	PlayerName      string      `json:"playerName"`
	BuyerTeamID     id.TeamID   `json:"buyerTeamId"`
	BuyerTeamName   string      `json:"buyerTeamName"`
	Amount          int64       `json:"amount"`
	SellerNewBudget int64       `json:"sellerNewBudget"`
	OccurredAt      time.Time   `json:"occurredAt"`
}
