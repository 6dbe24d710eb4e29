package service

import (
	"context"

	"fantasy/internal/market/models"
	"fantasy/internal/storage"
	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/requestcontext"
)

// MyTeam returns the owner's team with its full roster.
func (s *Service) MyTeam(ctx context.Context, ownerID id.UserID) (*models.TeamView, error) {
	var view *models.TeamView
	err := s.run(ctx, "my_team", func(ctx context.Context, st storage.Stores) error {
		team, err := st.Teams.FindByOwner(ctx, ownerID)
		if err != nil {
			return notFound(err, "team not found; it may still be provisioning")
		}
		players, err := st.Players.ListByTeam(ctx, team.ID)
		if err != nil {
			return err
		}
		view = &models.TeamView{
			ID:      team.ID,
			Name:    team.Name,
			Budget:  team.Budget,
			Players: make([]models.PlayerView, 0, len(players)),
		}
		for _, p := range players {
			view.Players = append(view.Players, models.NewPlayerView(*p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// MyListedPlayers returns the owner's players currently on the transfer list.
func (s *Service) MyListedPlayers(ctx context.Context, ownerID id.UserID) ([]models.PlayerView, error) {
	var listed []models.PlayerView
	err := s.run(ctx, "my_listings", func(ctx context.Context, st storage.Stores) error {
		team, err := st.Teams.FindByOwner(ctx, ownerID)
		if err != nil {
			return notFound(err, "team not found; it may still be provisioning")
		}
		players, err := st.Players.ListByTeam(ctx, team.ID)
		if err != nil {
			return err
		}
		listed = make([]models.PlayerView, 0)
		for _, p := range players {
			if p.OnTransferList {
				listed = append(listed, models.NewPlayerView(*p))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listed, nil
}

// RenameTeam changes the display name, keeping names unique case-insensitively.
func (s *Service) RenameTeam(ctx context.Context, ownerID id.UserID, name string) (*models.RenameResult, error) {
	name, err := models.NormalizeTeamName(name)
	if err != nil {
		return nil, err
	}
	var result *models.RenameResult
	err = s.run(ctx, "rename_team", func(ctx context.Context, st storage.Stores) error {
		team, err := st.Teams.FindByOwner(ctx, ownerID)
		if err != nil {
			return notFound(err, "team not found")
		}
		taken, err := st.Teams.NameTaken(ctx, name, team.ID)
		if err != nil {
			return err
		}
		if taken {
			return dErrors.New(dErrors.CodeConflict, "team name already taken")
		}
		team.Name = name
		team.UpdatedAt = requestcontext.Now(ctx)
		if err := st.Teams.Update(ctx, team); err != nil {
			return err
		}
		result = &models.RenameResult{TeamID: team.ID, Name: team.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
