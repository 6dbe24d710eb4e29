package postgres

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fantasy/internal/market/models"
	id "fantasy/pkg/domain"
	"fantasy/pkg/platform/sentinel"
)

type teamStore struct {
	tx pgx.Tx
}

const teamColumns = `id, name, owner_id, budget, created_at, updated_at`

func (s *teamStore) Create(ctx context.Context, team *models.Team) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO teams (`+teamColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(team.ID), team.Name, uuid.UUID(team.OwnerID), team.Budget, team.CreatedAt, team.UpdatedAt)
	return translate(ctx, err, "insert team")
}

func (s *teamStore) FindByID(ctx context.Context, teamID id.TeamID) (*models.Team, error) {
	return s.findOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, uuid.UUID(teamID))
}

func (s *teamStore) FindByOwner(ctx context.Context, ownerID id.UserID) (*models.Team, error) {
	return s.findOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE owner_id = $1`, uuid.UUID(ownerID))
}

func (s *teamStore) LockByIDs(ctx context.Context, teamIDs ...id.TeamID) (map[id.TeamID]*models.Team, error) {
	keys := make([]string, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		keys = append(keys, teamID.String())
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	rows, err := s.tx.Query(ctx, `
		SELECT `+teamColumns+`
		FROM teams
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE
	`, keys)
	if err != nil {
		return nil, translate(ctx, err, "lock teams")
	}
	teams, err := pgx.CollectRows(rows, scanTeam)
	if err != nil {
		return nil, translate(ctx, err, "lock teams")
	}
	if len(teams) != len(keys) {
		return nil, sentinel.ErrNotFound
	}

	out := make(map[id.TeamID]*models.Team, len(teams))
	for _, team := range teams {
		if err := s.loadRoster(ctx, team); err != nil {
			return nil, err
		}
		out[team.ID] = team
	}
	return out, nil
}

func (s *teamStore) NameTaken(ctx context.Context, name string, exclude id.TeamID) (bool, error) {
	var taken bool
	err := s.tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM teams WHERE lower(name) = lower($1) AND id <> $2)
	`, name, uuid.UUID(exclude)).Scan(&taken)
	if err != nil {
		return false, translate(ctx, err, "check team name")
	}
	return taken, nil
}

func (s *teamStore) Update(ctx context.Context, team *models.Team) error {
	tag, err := s.tx.Exec(ctx, `
		UPDATE teams SET name = $2, budget = $3, updated_at = $4 WHERE id = $1
	`, uuid.UUID(team.ID), team.Name, team.Budget, team.UpdatedAt)
	if err != nil {
		return translate(ctx, err, "update team")
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *teamStore) findOne(ctx context.Context, query string, args ...any) (*models.Team, error) {
	rows, err := s.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(ctx, err, "select team")
	}
	team, err := pgx.CollectExactlyOneRow(rows, scanTeam)
	if err != nil {
		return nil, translate(ctx, err, "select team")
	}
	if err := s.loadRoster(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamStore) loadRoster(ctx context.Context, team *models.Team) error {
	rows, err := s.tx.Query(ctx, `
		SELECT id FROM players WHERE team_id = $1 ORDER BY created_at, id
	`, uuid.UUID(team.ID))
	if err != nil {
		return translate(ctx, err, "select roster")
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (id.PlayerID, error) {
		var u uuid.UUID
		err := row.Scan(&u)
		return id.PlayerID(u), err
	})
	if err != nil {
		return translate(ctx, err, "select roster")
	}
	team.PlayerIDs = ids
	return nil
}

func scanTeam(row pgx.CollectableRow) (*models.Team, error) {
	var (
		team            models.Team
		teamID, ownerID uuid.UUID
	)
	if err := row.Scan(&teamID, &team.Name, &ownerID, &team.Budget, &team.CreatedAt, &team.UpdatedAt); err != nil {
		return nil, err
	}
	team.ID = id.TeamID(teamID)
	team.OwnerID = id.UserID(ownerID)
	return &team, nil
}
