package provisioning

import (
	"math"
	"math/rand/v2"
	"time"

	"fantasy/internal/market/models"
	id "fantasy/pkg/domain"
)

// Squad composition of a freshly provisioned team.
var squad = []struct {
	position models.Position
	count    int
	base     int64
}{
	{models.PositionGoalkeeper, 3, 500_000},
	{models.PositionDefender, 6, 400_000},
	{models.PositionMidfielder, 6, 600_000},
	{models.PositionAttacker, 5, 800_000},
}

var namePools = map[models.Position][]string{
	models.PositionGoalkeeper: {
		"Alisson Becker", "Ederson Moraes", "Thibaut Courtois", "Marc-André ter Stegen",
		"Jan Oblak", "Mike Maignan", "Gianluigi Donnarumma", "Emiliano Martínez",
	},
	models.PositionDefender: {
		"Virgil van Dijk", "Rúben Dias", "Marquinhos", "Antonio Rüdiger", "William Saliba",
		"Alessandro Bastoni", "Kim Min-jae", "Achraf Hakimi", "Trent Alexander-Arnold",
		"Theo Hernández", "João Cancelo", "Josko Gvardiol",
	},
	models.PositionMidfielder: {
		"Kevin De Bruyne", "Rodri", "Jude Bellingham", "Pedri", "Federico Valverde",
		"Bruno Fernandes", "Martin Ødegaard", "Declan Rice", "Frenkie de Jong",
		"Nicolò Barella", "Jamal Musiala", "Bernardo Silva",
	},
	models.PositionAttacker: {
		"Erling Haaland", "Kylian Mbappé", "Harry Kane", "Mohamed Salah", "Vinícius Júnior",
		"Lautaro Martínez", "Victor Osimhen", "Bukayo Saka", "Rafael Leão", "Son Heung-min",
	},
}

// Generator builds provisioned rosters. Its random source is injectable so
// tests can pin names and values.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Players returns the full squad for teamID: 3 goalkeepers, 6 defenders,
// 6 midfielders and 5 attackers with unique names inside each position.
func (g *Generator) Players(teamID id.TeamID, now time.Time) []*models.Player {
	players := make([]*models.Player, 0, 20)
	for _, slot := range squad {
		pool := namePools[slot.position]
		for _, i := range g.rng.Perm(len(pool))[:slot.count] {
			players = append(players, &models.Player{
				ID:          id.NewPlayerID(),
				Name:        pool[i],
				Position:    slot.position,
				TeamID:      teamID,
				MarketValue: g.marketValue(slot.base),
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}
	return players
}

// marketValue is base scaled by a uniform factor in [0.8, 1.2], rounded.
func (g *Generator) marketValue(base int64) int64 {
	factor := 0.8 + g.rng.Float64()*0.4
	return int64(math.Round(float64(base) * factor))
}
