package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fantasy/internal/market/models"
	id "fantasy/pkg/domain"
	"fantasy/pkg/platform/sentinel"
)

type playerStore struct {
	tx pgx.Tx
}

const playerColumns = `id, team_id, name, position, market_value, on_transfer_list, asking_price, created_at, updated_at`

func (s *playerStore) CreateMany(ctx context.Context, players []*models.Player) error {
	_, err := s.tx.CopyFrom(ctx,
		pgx.Identifier{"players"},
		[]string{"id", "team_id", "name", "position", "market_value", "on_transfer_list", "asking_price", "created_at", "updated_at"},
		pgx.CopyFromSlice(len(players), func(i int) ([]any, error) {
			p := players[i]
			return []any{
				uuid.UUID(p.ID), uuid.UUID(p.TeamID), p.Name, string(p.Position), p.MarketValue,
				p.OnTransferList, p.AskingPrice, p.CreatedAt, p.UpdatedAt,
			}, nil
		}),
	)
	return translate(ctx, err, "copy players")
}

func (s *playerStore) FindByID(ctx context.Context, playerID id.PlayerID) (*models.Player, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT `+playerColumns+` FROM players WHERE id = $1 FOR UPDATE
	`, uuid.UUID(playerID))
	if err != nil {
		return nil, translate(ctx, err, "select player")
	}
	player, err := pgx.CollectExactlyOneRow(rows, scanPlayer)
	if err != nil {
		return nil, translate(ctx, err, "select player")
	}
	return player, nil
}

func (s *playerStore) ListByTeam(ctx context.Context, teamID id.TeamID) ([]*models.Player, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT `+playerColumns+` FROM players WHERE team_id = $1 ORDER BY created_at, id
	`, uuid.UUID(teamID))
	if err != nil {
		return nil, translate(ctx, err, "select players")
	}
	players, err := pgx.CollectRows(rows, scanPlayer)
	if err != nil {
		return nil, translate(ctx, err, "select players")
	}
	return players, nil
}

func (s *playerStore) Update(ctx context.Context, player *models.Player) error {
	tag, err := s.tx.Exec(ctx, `
		UPDATE players
		SET team_id = $2, on_transfer_list = $3, asking_price = $4, updated_at = $5
		WHERE id = $1
	`, uuid.UUID(player.ID), uuid.UUID(player.TeamID), player.OnTransferList, player.AskingPrice, player.UpdatedAt)
	if err != nil {
		return translate(ctx, err, "update player")
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *playerStore) QueryListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	var (
		where = []string{"p.on_transfer_list"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Position != nil {
		where = append(where, "p.position = "+arg(string(*filter.Position)))
	}
	if filter.MinPrice != nil {
		where = append(where, "p.asking_price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		where = append(where, "p.asking_price <= "+arg(*filter.MaxPrice))
	}
	if filter.NameContains != "" {
		where = append(where, `p.name ILIKE `+arg(likePattern(filter.NameContains))+` ESCAPE '\'`)
	}
	if filter.TeamNameContains != "" {
		where = append(where, `t.name ILIKE `+arg(likePattern(filter.TeamNameContains))+` ESCAPE '\'`)
	}

	rows, err := s.tx.Query(ctx, `
		SELECT p.id, p.name, p.position, p.asking_price, p.market_value, t.id, t.name, t.owner_id
		FROM players p
		JOIN teams t ON t.id = p.team_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY p.asking_price, p.name, p.id
	`, args...)
	if err != nil {
		return nil, translate(ctx, err, "query listings")
	}
	listings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Listing, error) {
		var (
			l                         models.Listing
			playerID, teamID, ownerID uuid.UUID
			position                  string
		)
		if err := row.Scan(&playerID, &l.PlayerName, &position, &l.AskingPrice, &l.MarketValue, &teamID, &l.TeamName, &ownerID); err != nil {
			return l, err
		}
		l.PlayerID = id.PlayerID(playerID)
		l.Position = models.Position(position)
		l.TeamID = id.TeamID(teamID)
		l.IsOwnPlayer = !filter.ViewerID.IsNil() && id.UserID(ownerID) == filter.ViewerID
		return l, nil
	})
	if err != nil {
		return nil, translate(ctx, err, "query listings")
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func scanPlayer(row pgx.CollectableRow) (*models.Player, error) {
	var (
		p                models.Player
		playerID, teamID uuid.UUID
		position         string
	)
	if err := row.Scan(&playerID, &teamID, &p.Name, &position, &p.MarketValue, &p.OnTransferList, &p.AskingPrice, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.PlayerID(playerID)
	p.TeamID = id.TeamID(teamID)
	p.Position = models.Position(position)
	return &p, nil
}
