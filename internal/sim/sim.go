// Package sim implements a deterministic, seed-driven American football
// simulation: a pure function from (seeds, teams, rosters, game type) to a
// finished, replayable game record. The engine performs no I/O and draws no
// ambient entropy; the same Config always yields a bit-identical result.
package sim

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/fourthdown/gridsim/internal/engine"
)

// maxPlaysPerGame is a defensive iteration guard, not a gameplay cap. Clock
// accounting bounds a real game near 280 plays; tripping the guard means a
// clock bug and the run aborts.
const maxPlaysPerGame = 500

var validate = validator.New()

// requiredPositions must each appear at least once on a roster for the
// simulation to be resolvable.
var requiredPositions = []Position{PosQB, PosRB, PosWR, PosK}

// Simulate runs one game end to end and returns the finished record. It
// returns a *ConfigError for caller-contract violations and an
// *InvariantError if internal state accounting ever breaks; there are no
// partial results.
func Simulate(cfg Config) (*SimulatedGame, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	rng := engine.NewStream(cfg.ServerSeed, cfg.ClientSeed, cfg.Nonce)
	machine := newStateMachine(rng)
	home := newRoster(cfg.HomeTeam, cfg.HomeRoster)
	away := newRoster(cfg.AwayTeam, cfg.AwayRoster)
	builder := newEventBuilder(cfg.HomeTeam, cfg.AwayTeam)

	for !machine.completed {
		if len(builder.events) >= maxPlaysPerGame {
			return nil, &InvariantError{
				Invariant: "iteration guard tripped: clock accounting failed to converge",
				State:     machine.state,
			}
		}

		offense := machine.state.Possession
		off, def := home, away
		offTeam := cfg.HomeTeam
		if offense == SideAway {
			off, def = away, home
			offTeam = cfg.AwayTeam
		}

		play, err := resolvePlay(&machine.state, off, def, rng)
		if err != nil {
			return nil, err
		}

		prev := machine.state
		if err := machine.apply(play, rng); err != nil {
			return nil, err
		}

		commentary := describe(play, offTeam, prev, machine.state, rng)
		builder.append(play, commentary, machine.state, offense)
	}

	return builder.finish(machine.state), nil
}

// validateConfig rejects malformed input before any play resolves.
func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return &ConfigError{Field: "config", Reason: err.Error()}
	}
	if cfg.HomeTeam.ID == cfg.AwayTeam.ID {
		return &ConfigError{Field: "awayTeam.id", Reason: "home and away teams must differ"}
	}
	if err := validateRoster("homeRoster", cfg.HomeTeam, cfg.HomeRoster); err != nil {
		return err
	}
	return validateRoster("awayRoster", cfg.AwayTeam, cfg.AwayRoster)
}

func validateRoster(field string, team Team, players []Player) error {
	have := make(map[Position]bool, len(players))
	for i, p := range players {
		if p.TeamID != team.ID {
			return &ConfigError{
				Field:  fmt.Sprintf("%s[%d].teamId", field, i),
				Reason: fmt.Sprintf("player %s belongs to %s, not %s", p.ID, p.TeamID, team.ID),
			}
		}
		have[p.Position] = true
	}
	for _, pos := range requiredPositions {
		if !have[pos] {
			return &ConfigError{
				Field:  field,
				Reason: fmt.Sprintf("roster has no %s", pos),
			}
		}
	}
	return nil
}
