package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fantasy/internal/market/models"
	"fantasy/internal/storage"
	id "fantasy/pkg/domain"
	"fantasy/pkg/platform/sentinel"
)

const DefaultStartingBudget int64 = 5_000_000

type Outcome int

const (
	OutcomeProvisioned Outcome = iota + 1
	// OutcomeSkipped means the user already owned a team and nothing was written.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProvisioned:
		return "provisioned"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// Provisioner creates a user's team, roster and user link in one unit of work.
// Running it twice for the same user creates one team.
type Provisioner struct {
	uow       storage.UnitOfWork
	generator *Generator
	budget    int64
	logger    *slog.Logger
	now       func() time.Time
}

type ProvisionerOption func(*Provisioner)

func WithStartingBudget(budget int64) ProvisionerOption {
	return func(p *Provisioner) {
		if budget >= 0 {
			p.budget = budget
		}
	}
}

func WithGenerator(g *Generator) ProvisionerOption {
	return func(p *Provisioner) { p.generator = g }
}

func WithProvisionerLogger(logger *slog.Logger) ProvisionerOption {
	return func(p *Provisioner) { p.logger = logger }
}

func WithClock(now func() time.Time) ProvisionerOption {
	return func(p *Provisioner) { p.now = now }
}

func NewProvisioner(uow storage.UnitOfWork, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		uow:       uow,
		generator: NewGenerator(nil),
		budget:    DefaultStartingBudget,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision runs the idempotency guard and, when the user has no team yet,
// creates it. Errors wrapping ErrPoison will fail the same way on every retry.
func (p *Provisioner) Provision(ctx context.Context, req TeamCreation) (Outcome, error) {
	var outcome Outcome
	err := p.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		existing, err := st.Teams.FindByOwner(ctx, req.UserID)
		switch {
		case err == nil:
			p.logger.InfoContext(ctx, "team already provisioned",
				"user_id", req.UserID,
				"team_id", existing.ID,
			)
			outcome = OutcomeSkipped
			return nil
		case !errors.Is(err, sentinel.ErrNotFound):
			return fmt.Errorf("find team by owner: %w", err)
		}

		now := p.now()
		user, err := p.ensureUser(ctx, st, req, now)
		if err != nil {
			return err
		}

		name, err := p.teamName(ctx, st, req)
		if err != nil {
			return err
		}
		team, err := models.NewTeam(id.NewTeamID(), req.UserID, name, p.budget, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPoison, err)
		}
		players := p.generator.Players(team.ID, now)
		for _, pl := range players {
			team.AddPlayer(pl.ID)
		}

		if err := st.Teams.Create(ctx, team); err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		if err := st.Players.CreateMany(ctx, players); err != nil {
			return fmt.Errorf("create players: %w", err)
		}
		user.TeamID = &team.ID
		if err := st.Users.Update(ctx, user); err != nil {
			return fmt.Errorf("link user to team: %w", err)
		}

		p.logger.InfoContext(ctx, "team provisioned",
			"user_id", req.UserID,
			"team_id", team.ID,
			"team_name", team.Name,
			"players", len(players),
		)
		outcome = OutcomeProvisioned
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// ensureUser loads the user or creates it from the message when registration
// and provisioning run against different stores.
func (p *Provisioner) ensureUser(ctx context.Context, st storage.Stores, req TeamCreation, now time.Time) (*models.User, error) {
	user, err := st.Users.FindByID(ctx, req.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: unknown user %s without email", ErrPoison, req.UserID)
	}
	user = &models.User{ID: req.UserID, Email: req.Email, CreatedAt: now}
	if err := st.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// teamName returns the requested name when valid and free, else the fallback.
func (p *Provisioner) teamName(ctx context.Context, st storage.Stores, req TeamCreation) (string, error) {
	if name, err := models.NormalizeTeamName(req.TeamName); err == nil {
		taken, err := st.Teams.NameTaken(ctx, name, id.TeamID{})
		if err != nil {
			return "", fmt.Errorf("check team name: %w", err)
		}
		if !taken {
			return name, nil
		}
	}
	return FallbackTeamName(req.UserID), nil
}

// FallbackTeamName is "Team " followed by the first 8 hex digits of the user id.
func FallbackTeamName(userID id.UserID) string {
	return "Team " + userID.String()[:8]
}
