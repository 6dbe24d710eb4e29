package storage

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"fantasy/internal/market/models"
	id "fantasy/pkg/domain"
	"fantasy/pkg/platform/sentinel"
)

// Memory is an in-process store. Units of work are serialised by a single
// lock; writes are staged and applied only when fn succeeds.
type Memory struct {
	lock    chan struct{}
	timeout time.Duration

	teams   map[id.TeamID]models.Team
	players map[id.PlayerID]models.Player
	users   map[id.UserID]models.User
}

// Option configures a Memory store.
type Option func(*Memory)

// WithTxTimeout bounds each unit of work, lock wait included.
func WithTxTimeout(d time.Duration) Option {
	return func(m *Memory) { m.timeout = d }
}

func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		lock:    make(chan struct{}, 1),
		timeout: DefaultTxTimeout,
		teams:   make(map[id.TeamID]models.Team),
		players: make(map[id.PlayerID]models.Player),
		users:   make(map[id.UserID]models.User),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	if err := Aborted(ctx.Err()); err != nil {
		return err
	}
	ctx, cancel := WithTxDeadline(ctx, m.timeout)
	defer cancel()

	select {
	case m.lock <- struct{}{}:
	case <-ctx.Done():
		return Aborted(ctx.Err())
	}
	defer func() { <-m.lock }()

	tx := &memoryTx{
		m:       m,
		teams:   make(map[id.TeamID]models.Team),
		players: make(map[id.PlayerID]models.Player),
		users:   make(map[id.UserID]models.User),
	}
	if err := fn(ctx, Stores{
		Teams:   memoryTeams{tx},
		Players: memoryPlayers{tx},
		Users:   memoryUsers{tx},
	}); err != nil {
		return err
	}
	if err := Aborted(ctx.Err()); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memoryTx overlays staged writes on the committed maps.
type memoryTx struct {
	m       *Memory
	teams   map[id.TeamID]models.Team
	players map[id.PlayerID]models.Player
	users   map[id.UserID]models.User
}

func (tx *memoryTx) commit() {
	maps.Copy(tx.m.teams, tx.teams)
	maps.Copy(tx.m.players, tx.players)
	maps.Copy(tx.m.users, tx.users)
}

func (tx *memoryTx) team(teamID id.TeamID) (models.Team, bool) {
	if t, ok := tx.teams[teamID]; ok {
		return t, true
	}
	t, ok := tx.m.teams[teamID]
	return t, ok
}

func (tx *memoryTx) player(playerID id.PlayerID) (models.Player, bool) {
	if p, ok := tx.players[playerID]; ok {
		return p, true
	}
	p, ok := tx.m.players[playerID]
	return p, ok
}

func (tx *memoryTx) user(userID id.UserID) (models.User, bool) {
	if u, ok := tx.users[userID]; ok {
		return u, true
	}
	u, ok := tx.m.users[userID]
	return u, ok
}

func (tx *memoryTx) eachTeam(fn func(models.Team) bool) {
	for teamID := range tx.teams {
		if !fn(tx.teams[teamID]) {
			return
		}
	}
	for teamID, t := range tx.m.teams {
		if _, staged := tx.teams[teamID]; staged {
			continue
		}
		if !fn(t) {
			return
		}
	}
}

func (tx *memoryTx) eachPlayer(fn func(models.Player)) {
	for _, p := range tx.players {
		fn(p)
	}
	for playerID, p := range tx.m.players {
		if _, staged := tx.players[playerID]; !staged {
			fn(p)
		}
	}
}

type memoryTeams struct{ tx *memoryTx }

func (s memoryTeams) Create(_ context.Context, team *models.Team) error {
	if _, exists := s.tx.team(team.ID); exists {
		return sentinel.ErrAlreadyUsed
	}
	conflict := false
	s.tx.eachTeam(func(t models.Team) bool {
		conflict = t.OwnerID == team.OwnerID || strings.EqualFold(t.Name, team.Name)
		return !conflict
	})
	if conflict {
		return sentinel.ErrAlreadyUsed
	}
	s.tx.teams[team.ID] = team.Clone()
	return nil
}

func (s memoryTeams) FindByID(_ context.Context, teamID id.TeamID) (*models.Team, error) {
	t, ok := s.tx.team(teamID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	t = t.Clone()
	return &t, nil
}

func (s memoryTeams) FindByOwner(_ context.Context, ownerID id.UserID) (*models.Team, error) {
	var found *models.Team
	s.tx.eachTeam(func(t models.Team) bool {
		if t.OwnerID == ownerID {
			t = t.Clone()
			found = &t
			return false
		}
		return true
	})
	if found == nil {
		return nil, sentinel.ErrNotFound
	}
	return found, nil
}

func (s memoryTeams) LockByIDs(ctx context.Context, teamIDs ...id.TeamID) (map[id.TeamID]*models.Team, error) {
	out := make(map[id.TeamID]*models.Team, len(teamIDs))
	for _, teamID := range teamIDs {
		t, err := s.FindByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		out[teamID] = t
	}
	return out, nil
}

func (s memoryTeams) NameTaken(_ context.Context, name string, exclude id.TeamID) (bool, error) {
	taken := false
	s.tx.eachTeam(func(t models.Team) bool {
		taken = t.ID != exclude && strings.EqualFold(t.Name, name)
		return !taken
	})
	return taken, nil
}

func (s memoryTeams) Update(_ context.Context, team *models.Team) error {
	if _, ok := s.tx.team(team.ID); !ok {
		return sentinel.ErrNotFound
	}
	taken := false
	s.tx.eachTeam(func(t models.Team) bool {
		taken = t.ID != team.ID && strings.EqualFold(t.Name, team.Name)
		return !taken
	})
	if taken {
		return sentinel.ErrAlreadyUsed
	}
	s.tx.teams[team.ID] = team.Clone()
	return nil
}

type memoryPlayers struct{ tx *memoryTx }

func (s memoryPlayers) CreateMany(_ context.Context, players []*models.Player) error {
	for _, p := range players {
		if _, exists := s.tx.player(p.ID); exists {
			return sentinel.ErrAlreadyUsed
		}
	}
	for _, p := range players {
		s.tx.players[p.ID] = p.Clone()
	}
	return nil
}

func (s memoryPlayers) FindByID(_ context.Context, playerID id.PlayerID) (*models.Player, error) {
	p, ok := s.tx.player(playerID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p = p.Clone()
	return &p, nil
}

func (s memoryPlayers) ListByTeam(_ context.Context, teamID id.TeamID) ([]*models.Player, error) {
	var out []*models.Player
	s.tx.eachPlayer(func(p models.Player) {
		if p.TeamID == teamID {
			p = p.Clone()
			out = append(out, &p)
		}
	})
	slices.SortFunc(out, func(a, b *models.Player) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s memoryPlayers) Update(_ context.Context, player *models.Player) error {
	if _, ok := s.tx.player(player.ID); !ok {
		return sentinel.ErrNotFound
	}
	s.tx.players[player.ID] = player.Clone()
	return nil
}

func (s memoryPlayers) QueryListings(_ context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	listings := []models.Listing{}
	s.tx.eachPlayer(func(p models.Player) {
		if !p.OnTransferList {
			return
		}
		t, ok := s.tx.team(p.TeamID)
		if !ok || !filter.Matches(p, t) {
			return
		}
		listings = append(listings, filter.NewListing(p, t))
	})
	models.SortListings(listings)
	return listings, nil
}

type memoryUsers struct{ tx *memoryTx }

func (s memoryUsers) Create(_ context.Context, user *models.User) error {
	if _, exists := s.tx.user(user.ID); exists {
		return sentinel.ErrAlreadyUsed
	}
	for _, u := range s.allUsers() {
		if strings.EqualFold(u.Email, user.Email) {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.tx.users[user.ID] = user.Clone()
	return nil
}

func (s memoryUsers) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	u, ok := s.tx.user(userID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u = u.Clone()
	return &u, nil
}

func (s memoryUsers) Update(_ context.Context, user *models.User) error {
	if _, ok := s.tx.user(user.ID); !ok {
		return sentinel.ErrNotFound
	}
	s.tx.users[user.ID] = user.Clone()
	return nil
}

func (s memoryUsers) allUsers() []models.User {
	out := slices.Collect(maps.Values(s.tx.users))
	for userID, u := range s.tx.m.users {
		if _, staged := s.tx.users[userID]; !staged {
			out = append(out, u)
		}
	}
	return out
}
