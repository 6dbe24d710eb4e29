package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fantasy/internal/market/models"
	id "fantasy/pkg/domain"
	"fantasy/pkg/platform/sentinel"
)

type userStore struct {
	tx pgx.Tx
}

func (s *userStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO users (id, email, team_id, created_at) VALUES ($1, $2, $3, $4)
	`, uuid.UUID(user.ID), user.Email, nullTeam(user.TeamID), user.CreatedAt)
	return translate(ctx, err, "insert user")
}

func (s *userStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	var (
		u      models.User
		uid    uuid.UUID
		teamID uuid.NullUUID
	)
	err := s.tx.QueryRow(ctx, `
		SELECT id, email, team_id, created_at FROM users WHERE id = $1
	`, uuid.UUID(userID)).Scan(&uid, &u.Email, &teamID, &u.CreatedAt)
	if err != nil {
		return nil, translate(ctx, err, "select user")
	}
	u.ID = id.UserID(uid)
	if teamID.Valid {
		t := id.TeamID(teamID.UUID)
		u.TeamID = &t
	}
	return &u, nil
}

func (s *userStore) Update(ctx context.Context, user *models.User) error {
	tag, err := s.tx.Exec(ctx, `
		UPDATE users SET email = $2, team_id = $3 WHERE id = $1
	`, uuid.UUID(user.ID), user.Email, nullTeam(user.TeamID))
	if err != nil {
		return translate(ctx, err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullTeam(teamID *id.TeamID) uuid.NullUUID {
	if teamID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*teamID), Valid: true}
}
