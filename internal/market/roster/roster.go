// Package roster holds the pure squad rules shared by the market engine and
// team provisioning. Nothing here touches storage.
package roster

import (
	"fmt"

	"fantasy/internal/market/models"
	dErrors "fantasy/pkg/domain-errors"
)

const (
	MinSize         = 15
	MaxSize         = 25
	ProvisionedSize = 20

	// SettlementDiscountPercent is taken off the asking price on every purchase.
	SettlementDiscountPercent = 5
)

// SettlementPrice is floor(asking * 0.95) in integer arithmetic.
func SettlementPrice(asking int64) int64 {
	keep := int64(100 - SettlementDiscountPercent)
	return asking/100*keep + (asking%100)*keep/100
}

// CheckListable rejects listing when the squad is already at the floor. A listed
// player still counts toward the roster, so the size before listing is used.
func CheckListable(team *models.Team) error {
	if team.RosterSize() <= MinSize {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("team must keep at least %d players; listing is allowed only above that", MinSize))
	}
	return nil
}

// CheckPurchase validates a transfer of a player priced at settlement from
// seller to buyer. Checks run in a fixed order so callers see a stable error.
func CheckPurchase(buyer, seller *models.Team, settlement int64) error {
	if buyer.Budget < settlement {
		return dErrors.New(dErrors.CodeInsufficientFunds,
			fmt.Sprintf("Insufficient funds. Need $%d, have $%d", settlement, buyer.Budget))
	}
	if buyer.RosterSize() >= MaxSize {
		return dErrors.New(dErrors.CodeRosterFull,
			fmt.Sprintf("team already has the maximum of %d players", MaxSize))
	}
	if buyer.ID == seller.ID {
		return dErrors.New(dErrors.CodeSelfTrade, "cannot buy your own player")
	}
	if seller.RosterSize() <= MinSize {
		return dErrors.New(dErrors.CodeRosterFloor,
			fmt.Sprintf("selling team must keep at least %d players", MinSize))
	}
	return nil
}

// CheckBounds verifies a provisioned squad size.
func CheckBounds(team *models.Team) error {
	if n := team.RosterSize(); n < MinSize || n > MaxSize {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("team has %d players; must be between %d and %d", n, MinSize, MaxSize))
	}
	return nil
}
