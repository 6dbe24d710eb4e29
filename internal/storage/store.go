package storage

import (
	"context"

	"fantasy/internal/market/models"
	id "fantasy/pkg/domain"
)

// Stores are interface-driven so the market engine and provisioning run
// unchanged against the in-memory and Postgres backends. Implementations return
// sentinel errors; services translate them into domain codes.
type TeamStore interface {
	// Create fails with sentinel.ErrAlreadyUsed when the owner already has a
	// team or the name is taken case-insensitively.
	Create(ctx context.Context, team *models.Team) error
	FindByID(ctx context.Context, teamID id.TeamID) (*models.Team, error)
	FindByOwner(ctx context.Context, ownerID id.UserID) (*models.Team, error)
	// LockByIDs loads the teams for update in a stable order.
	LockByIDs(ctx context.Context, teamIDs ...id.TeamID) (map[id.TeamID]*models.Team, error)
	NameTaken(ctx context.Context, name string, exclude id.TeamID) (bool, error)
	// Update persists name and budget. Roster membership follows Player.TeamID.
	Update(ctx context.Context, team *models.Team) error
}

type PlayerStore interface {
	CreateMany(ctx context.Context, players []*models.Player) error
	// FindByID loads the player for update.
	FindByID(ctx context.Context, playerID id.PlayerID) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID id.TeamID) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	QueryListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
}

type UserStore interface {
	// Create fails with sentinel.ErrAlreadyUsed on a duplicate id or email.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// Stores is the transactional handle passed to a unit of work.
type Stores struct {
	Teams   TeamStore
	Players PlayerStore
	Users   UserStore
}

// UnitOfWork runs fn atomically. All reads and writes made through the stores
// handed to fn commit together when fn returns nil and are discarded otherwise.
// The ctx passed to fn carries the transaction deadline.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
