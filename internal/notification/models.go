package notification

import (
	"fmt"
	"time"

	"fantasy/internal/market/models"
	id "fantasy/pkg/domain"
)

type Type string

const TypeTransfer Type = "transfer"

// Notification is one inbox entry for a user.
type Notification struct {
	ID        id.NotificationID `json:"id"`
	UserID    id.UserID         `json:"userId"`
	Type      Type              `json:"type"`
	Message   string            `json:"message"`
	Read      bool              `json:"read"`
	Metadata  Metadata          `json:"metadata"`
	CreatedAt time.Time         `json:"createdAt"`
}

type Metadata struct {
	PlayerID        id.PlayerID `json:"playerId"`
	PlayerName      string      `json:"playerName"`
	BuyerTeamID     id.TeamID   `json:"buyerTeamId"`
	BuyerTeamName   string      `json:"buyerTeamName"`
	Amount          int64       `json:"amount"`
	SellerNewBudget int64       `json:"sellerNewBudget"`
}

// FromPlayerSold builds the seller's notification for a committed purchase.
func FromPlayerSold(event models.PlayerSold) Notification {
	return Notification{
		ID:     id.NewNotificationID(),
		UserID: event.RecipientUserID,
		Type:   TypeTransfer,
		Message: fmt.Sprintf("Your player %s was sold to %s for $%d",
			event.PlayerName, event.BuyerTeamName, event.Amount),
		Metadata: Metadata{
			PlayerID:        event.PlayerID,
			PlayerName:      event.PlayerName,
			BuyerTeamID:     event.BuyerTeamID,
			BuyerTeamName:   event.BuyerTeamName,
			Amount:          event.Amount,
			SellerNewBudget: event.SellerNewBudget,
		},
		CreatedAt: event.OccurredAt,
	}
}
