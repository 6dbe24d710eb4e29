package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"fantasy/internal/market/models"
	"fantasy/internal/market/roster"
	"fantasy/internal/storage"
	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/requestcontext"
)

// Buy transfers a listed player to the buyer's team at the settlement price.
//
// The player row is locked first and then both teams in id order. A buyer that
// lost a race re-reads the player after the winner commits and sees it unlisted,
// so exactly one concurrent purchase succeeds.
func (s *Service) Buy(ctx context.Context, buyerID id.UserID, playerID id.PlayerID) (*models.BuyResult, error) {
	ctx, span := s.tracer.Start(ctx, "market.Buy")
	defer span.End()
	span.SetAttributes(
		attribute.String("buyer_id", buyerID.String()),
		attribute.String("player_id", playerID.String()),
	)

	var (
		result *models.BuyResult
		sold   models.PlayerSold
	)
	err := s.run(ctx, "buy", func(ctx context.Context, st storage.Stores) error {
		player, err := st.Players.FindByID(ctx, playerID)
		if err != nil {
			return notFound(err, "player not found")
		}
		asking, listed := player.Price()
		if !listed {
			return dErrors.New(dErrors.CodeNotAvailable, "player is not on the transfer list")
		}
		settlement := roster.SettlementPrice(asking)

		buyerTeam, err := st.Teams.FindByOwner(ctx, buyerID)
		if err != nil {
			return notFound(err, "team not found; it may still be provisioning")
		}
		teams, err := st.Teams.LockByIDs(ctx, buyerTeam.ID, player.TeamID)
		if err != nil {
			return err
		}
		buyer, seller := teams[buyerTeam.ID], teams[player.TeamID]

		if err := roster.CheckPurchase(buyer, seller, settlement); err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		if err := buyer.Debit(settlement, now); err != nil {
			return err
		}
		seller.Credit(settlement, now)
		if !seller.RemovePlayer(player.ID) {
			return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("player %s missing from seller roster", player.ID))
		}
		buyer.AddPlayer(player.ID)
		player.TeamID = buyer.ID
		player.Unlist(now)

		if err := st.Players.Update(ctx, player); err != nil {
			return err
		}
		if err := st.Teams.Update(ctx, buyer); err != nil {
			return err
		}
		if err := st.Teams.Update(ctx, seller); err != nil {
			return err
		}

		result = &models.BuyResult{
			PlayerID:     player.ID,
			PlayerName:   player.Name,
			NewTeamID:    buyer.ID,
			PricePaid:    settlement,
			BuyerBudget:  buyer.Budget,
			SellerBudget: seller.Budget,
		}
		sold = models.PlayerSold{
			RecipientUserID: seller.OwnerID,
			PlayerID:        player.ID,
			PlayerName:      player.Name,
			BuyerTeamID:     buyer.ID,
			BuyerTeamName:   buyer.Name,
			Amount:          settlement,
			SellerNewBudget: seller.Budget,
			OccurredAt:      now,
		}
		return nil
	})
	if err != nil {
		// a lost serialization race means someone else bought the player
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			err = dErrors.Wrap(err, dErrors.CodeNotAvailable, "player is no longer available")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, dErrors.Message(err))
		return nil, err
	}

	s.metrics.AddSettlement(result.PricePaid)
	s.logger.InfoContext(ctx, "player transferred",
		"player_id", result.PlayerID.String(),
		"buyer_team_id", result.NewTeamID.String(),
		"price_paid", result.PricePaid,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.notifySold(ctx, sold)
	return result, nil
}

// notifySold hands the event to the sink. The trade is already committed, so a
// failure here is only logged.
func (s *Service) notifySold(ctx context.Context, event models.PlayerSold) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyPlayerSold(ctx, event); err != nil {
		s.metrics.IncrementNotificationFailures()
		s.logger.WarnContext(ctx, "failed to deliver player sold notification",
			"error", err,
			"recipient_id", event.RecipientUserID.String(),
			"player_id", event.PlayerID.String(),
		)
	}
}
