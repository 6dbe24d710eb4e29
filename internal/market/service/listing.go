package service

import (
	"context"

	"fantasy/internal/market/models"
	"fantasy/internal/market/roster"
	"fantasy/internal/storage"
	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/requestcontext"
)

// List puts one of the owner's players on the transfer list.
func (s *Service) List(ctx context.Context, ownerID id.UserID, playerID id.PlayerID, askingPrice int64) (*models.ListResult, error) {
	if askingPrice <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "asking price must be greater than zero")
	}
	var result *models.ListResult
	err := s.run(ctx, "list", func(ctx context.Context, st storage.Stores) error {
		team, player, err := ownedPlayer(ctx, st, ownerID, playerID)
		if err != nil {
			return err
		}
		// re-read the roster under lock so a concurrent sale cannot slip under the floor
		locked, err := st.Teams.LockByIDs(ctx, team.ID)
		if err != nil {
			return err
		}
		if err := roster.CheckListable(locked[team.ID]); err != nil {
			return err
		}
		if err := player.List(askingPrice, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := st.Players.Update(ctx, player); err != nil {
			return err
		}
		result = &models.ListResult{
			PlayerID:    player.ID,
			Name:        player.Name,
			Position:    player.Position,
			AskingPrice: askingPrice,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Unlist removes the listing flag and the asking price together.
func (s *Service) Unlist(ctx context.Context, ownerID id.UserID, playerID id.PlayerID) (*models.UnlistResult, error) {
	var result *models.UnlistResult
	err := s.run(ctx, "unlist", func(ctx context.Context, st storage.Stores) error {
		_, player, err := ownedPlayer(ctx, st, ownerID, playerID)
		if err != nil {
			return err
		}
		player.Unlist(requestcontext.Now(ctx))
		if err := st.Players.Update(ctx, player); err != nil {
			return err
		}
		result = &models.UnlistResult{PlayerID: player.ID, Name: player.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateAskingPrice replaces the price of a listed player.
func (s *Service) UpdateAskingPrice(ctx context.Context, ownerID id.UserID, playerID id.PlayerID, newPrice int64) (*models.PriceUpdateResult, error) {
	if newPrice <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "asking price must be greater than zero")
	}
	var result *models.PriceUpdateResult
	err := s.run(ctx, "update_price", func(ctx context.Context, st storage.Stores) error {
		_, player, err := ownedPlayer(ctx, st, ownerID, playerID)
		if err != nil {
			return err
		}
		if err := player.Reprice(newPrice, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := st.Players.Update(ctx, player); err != nil {
			return err
		}
		result = &models.PriceUpdateResult{PlayerID: player.ID, Name: player.Name, AskingPrice: newPrice}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryListings returns listed players matching filter, cheapest first.
func (s *Service) QueryListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.run(ctx, "query_listings", func(ctx context.Context, st storage.Stores) error {
		var err error
		listings, err = st.Players.QueryListings(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// ownedPlayer loads the caller's team and one of its players. A player owned by
// someone else is reported exactly like a missing one.
func ownedPlayer(ctx context.Context, st storage.Stores, ownerID id.UserID, playerID id.PlayerID) (*models.Team, *models.Player, error) {
	team, err := st.Teams.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, notFound(err, "team not found")
	}
	player, err := st.Players.FindByID(ctx, playerID)
	if err != nil {
		return nil, nil, notFound(err, "player not found in your team")
	}
	if player.TeamID != team.ID {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "player not found in your team")
	}
	return team, player, nil
}
