// Package simtest provides canned teams and rosters for tests and the
// debug CLI. Fixtures are fixed values, never random, so any config built
// here is fully reproducible.
package simtest

import (
	"fmt"

	"github.com/fourthdown/gridsim/internal/sim"
)

// rosterShape is the position layout every fixture roster gets.
var rosterShape = []struct {
	pos   sim.Position
	count int
}{
	{sim.PosQB, 2},
	{sim.PosRB, 3},
	{sim.PosWR, 4},
	{sim.PosTE, 2},
	{sim.PosOL, 5},
	{sim.PosDL, 4},
	{sim.PosLB, 3},
	{sim.PosCB, 3},
	{sim.PosS, 2},
	{sim.PosK, 1},
	{sim.PosP, 1},
}

// Roster builds a full fixture roster for a team. baseRating shifts every
// player's attributes so teams of different strength are easy to produce.
func Roster(teamID string, baseRating int) []sim.Player {
	var players []sim.Player
	n := 0
	for _, group := range rosterShape {
		for i := 0; i < group.count; i++ {
			n++
			// Deterministic spread around the base so the roster isn't flat.
			offset := (n*7)%15 - 7
			rating := clamp(baseRating+offset, 40, 99)
			players = append(players, sim.Player{
				ID:        fmt.Sprintf("%s-%s-%d", teamID, group.pos, i+1),
				TeamID:    teamID,
				Position:  group.pos,
				Rating:    rating,
				Speed:     clamp(rating+((n*3)%9-4), 40, 99),
				Strength:  clamp(rating+((n*5)%9-4), 40, 99),
				Awareness: clamp(rating+((n*11)%9-4), 40, 99),
				Clutch:    clamp(rating+((n*13)%9-4), 40, 99),
			})
		}
	}
	return players
}

// Team builds a fixture team.
func Team(id, name, abbr string, rating int, style sim.PlayStyle) sim.Team {
	return sim.Team{
		ID:           id,
		Name:         name,
		Abbreviation: abbr,
		Offense:      rating,
		Defense:      rating - 2,
		SpecialTeams: rating - 4,
		Style:        style,
	}
}

// Config builds a complete simulation config between two fixture teams.
func Config(serverSeed, clientSeed string, nonce uint64) sim.Config {
	home := Team("IRN", "Ironclads", "IRN", 82, sim.StyleBalanced)
	away := Team("MRD", "Marauders", "MRD", 79, sim.StylePassHeavy)
	return sim.Config{
		HomeTeam:   home,
		AwayTeam:   away,
		HomeRoster: Roster(home.ID, 82),
		AwayRoster: Roster(away.ID, 79),
		GameType:   sim.GameTypeRegular,
		ServerSeed: serverSeed,
		ClientSeed: clientSeed,
		Nonce:      nonce,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
