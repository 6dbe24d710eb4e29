//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fantasy/internal/market/models"
	"fantasy/internal/storage"
	"fantasy/internal/storage/postgres"
	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/platform/sentinel"
	"fantasy/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(postgres.Migrate(s.ctx, s.pg.Pool))
	s.store = postgres.New(s.pg.Pool, postgres.WithTxTimeout(2*time.Second))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *PostgresStoreSuite) seed(name string, players int) (*models.Team, []*models.Player) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	team := &models.Team{ID: id.NewTeamID(), OwnerID: id.NewUserID(), Name: name, Budget: 1_000_000, CreatedAt: now, UpdatedAt: now}
	var roster []*models.Player
	for i := range players {
		roster = append(roster, &models.Player{
			ID:          id.NewPlayerID(),
			TeamID:      team.ID,
			Name:        name + " player",
			Position:    models.Positions[i%len(models.Positions)],
			MarketValue: 500_000,
			CreatedAt:   now.Add(time.Duration(i) * time.Microsecond),
			UpdatedAt:   now,
		})
	}
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		if err := st.Teams.Create(ctx, team); err != nil {
			return err
		}
		return st.Players.CreateMany(ctx, roster)
	})
	s.Require().NoError(err)
	return team, roster
}

// =============================================================================
// Unit of work
// =============================================================================

func (s *PostgresStoreSuite) TestRosterFollowsPlayerRows() {
	team, roster := s.seed("Rovers", 16)

	_ = s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		got, err := st.Teams.FindByOwner(ctx, team.OwnerID)
		s.Require().NoError(err)
		s.Len(got.PlayerIDs, 16)
		s.Equal(roster[0].ID, got.PlayerIDs[0])
		return nil
	})
}

func (s *PostgresStoreSuite) TestRollbackOnError() {
	team, roster := s.seed("Rovers", 16)
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		p, err := st.Players.FindByID(ctx, roster[0].ID)
		s.Require().NoError(err)
		s.Require().NoError(p.List(10, time.Now()))
		s.Require().NoError(st.Players.Update(ctx, p))
		return boom
	})
	s.ErrorIs(err, boom)

	_ = s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		p, err := st.Players.FindByID(ctx, roster[0].ID)
		s.Require().NoError(err)
		s.False(p.OnTransferList)
		s.Nil(p.AskingPrice)
		t, err := st.Teams.FindByID(ctx, team.ID)
		s.Require().NoError(err)
		s.Equal(int64(1_000_000), t.Budget)
		return nil
	})
}

func (s *PostgresStoreSuite) TestNestedUnitOfWorkJoinsOuter() {
	_, roster := s.seed("Rovers", 16)
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, _ storage.Stores) error {
		inner := s.store.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
			p, err := st.Players.FindByID(ctx, roster[0].ID)
			s.Require().NoError(err)
			s.Require().NoError(p.List(10, time.Now()))
			return st.Players.Update(ctx, p)
		})
		s.Require().NoError(inner)
		return boom
	})
	s.ErrorIs(err, boom)

	_ = s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		p, _ := st.Players.FindByID(ctx, roster[0].ID)
		s.False(p.OnTransferList)
		return nil
	})
}

func (s *PostgresStoreSuite) TestPlayerRowLockBlocksSecondWriter() {
	_, roster := s.seed("Rovers", 16)
	short := postgres.New(s.pg.Pool, postgres.WithTxTimeout(300*time.Millisecond))

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
			if _, err := st.Players.FindByID(ctx, roster[0].ID); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := short.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		_, err := st.Players.FindByID(ctx, roster[0].ID)
		return err
	})
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable), "got %v", err)

	close(release)
	s.NoError(<-done)
}

// =============================================================================
// Constraints
// =============================================================================

func (s *PostgresStoreSuite) TestUniqueTeamNameAndOwner() {
	team, _ := s.seed("Rovers", 0)

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		now := time.Now()
		return st.Teams.Create(ctx, &models.Team{ID: id.NewTeamID(), OwnerID: id.NewUserID(), Name: "rOVERS", CreatedAt: now, UpdatedAt: now})
	})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	err = s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		now := time.Now()
		return st.Teams.Create(ctx, &models.Team{ID: id.NewTeamID(), OwnerID: team.OwnerID, Name: "Other", CreatedAt: now, UpdatedAt: now})
	})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestUsers() {
	userID := id.NewUserID()
	teamID := id.NewTeamID()
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		return st.Users.Create(ctx, &models.User{ID: userID, Email: "a@example.com", CreatedAt: time.Now()})
	})
	s.Require().NoError(err)

	err = s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		return st.Users.Create(ctx, &models.User{ID: id.NewUserID(), Email: "A@EXAMPLE.com", CreatedAt: time.Now()})
	})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	err = s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		u, err := st.Users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		s.Nil(u.TeamID)
		u.TeamID = &teamID
		return st.Users.Update(ctx, u)
	})
	s.Require().NoError(err)

	_ = s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		u, err := st.Users.FindByID(ctx, userID)
		s.Require().NoError(err)
		s.Require().NotNil(u.TeamID)
		s.Equal(teamID, *u.TeamID)

		_, err = st.Users.FindByID(ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		return nil
	})
}

// =============================================================================
// Listings
// =============================================================================

func (s *PostgresStoreSuite) TestQueryListings() {
	seller, roster := s.seed("City_Rovers", 16)
	viewer := id.NewUserID()
	prices := map[int]int64{0: 50_000, 3: 100_000, 7: 500_000, 11: 600_000, 15: 250_000}

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		for i, price := range prices {
			p, err := st.Players.FindByID(ctx, roster[i].ID)
			if err != nil {
				return err
			}
			if err := p.List(price, time.Now()); err != nil {
				return err
			}
			if err := st.Players.Update(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)

	attacker := models.PositionAttacker
	minPrice, maxPrice := int64(100_000), int64(500_000)
	_ = s.store.RunInTx(s.ctx, func(ctx context.Context, st storage.Stores) error {
		listings, err := st.Players.QueryListings(ctx, models.ListingFilter{
			Position: &attacker,
			MinPrice: &minPrice,
			MaxPrice: &maxPrice,
			ViewerID: viewer,
		})
		s.Require().NoError(err)
		// positions cycle GK, DEF, MID, ATT so indexes 3, 7 and 15 are attackers
		s.Require().Len(listings, 3)
		s.Equal([]int64{100_000, 250_000, 500_000},
			[]int64{listings[0].AskingPrice, listings[1].AskingPrice, listings[2].AskingPrice})
		for _, l := range listings {
			s.Equal(models.PositionAttacker, l.Position)
			s.False(l.IsOwnPlayer)
		}

		own, err := st.Players.QueryListings(ctx, models.ListingFilter{TeamNameContains: "y_r", ViewerID: seller.OwnerID})
		s.Require().NoError(err)
		s.Len(own, len(prices))
		s.True(own[0].IsOwnPlayer)

		none, err := st.Players.QueryListings(ctx, models.ListingFilter{TeamNameContains: "%"})
		s.Require().NoError(err)
		s.Empty(none)
		return nil
	})
}
