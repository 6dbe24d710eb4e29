package provisioning

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy/internal/market/models"
	"fantasy/internal/market/roster"
	id "fantasy/pkg/domain"
)

func TestGeneratorBuildsFullSquad(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(1, 2)))
	teamID := id.NewTeamID()
	now := time.Now()

	players := g.Players(teamID, now)
	require.Len(t, players, roster.ProvisionedSize)

	counts := map[models.Position]int{}
	names := map[models.Position]map[string]bool{}
	for _, p := range players {
		counts[p.Position]++
		if names[p.Position] == nil {
			names[p.Position] = map[string]bool{}
		}
		assert.False(t, names[p.Position][p.Name], "duplicate name %q", p.Name)
		names[p.Position][p.Name] = true

		assert.Equal(t, teamID, p.TeamID)
		assert.False(t, p.OnTransferList)
		assert.Nil(t, p.AskingPrice)
		assert.Equal(t, now, p.CreatedAt)
	}
	assert.Equal(t, map[models.Position]int{
		models.PositionGoalkeeper: 3,
		models.PositionDefender:   6,
		models.PositionMidfielder: 6,
		models.PositionAttacker:   5,
	}, counts)
}

func TestGeneratorMarketValuesStayInBand(t *testing.T) {
	bases := map[models.Position]int64{
		models.PositionGoalkeeper: 500_000,
		models.PositionDefender:   400_000,
		models.PositionMidfielder: 600_000,
		models.PositionAttacker:   800_000,
	}
	g := NewGenerator(rand.New(rand.NewPCG(7, 7)))
	for range 50 {
		for _, p := range g.Players(id.NewTeamID(), time.Now()) {
			base := bases[p.Position]
			assert.GreaterOrEqual(t, p.MarketValue, base*8/10)
			assert.LessOrEqual(t, p.MarketValue, base*12/10)
		}
	}
}

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	a := NewGenerator(rand.New(rand.NewPCG(3, 4))).Players(id.NewTeamID(), time.Now())
	b := NewGenerator(rand.New(rand.NewPCG(3, 4))).Players(id.NewTeamID(), time.Now())
	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].MarketValue, b[i].MarketValue)
	}
}
