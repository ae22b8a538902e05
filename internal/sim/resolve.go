package sim

import (
	"math"

	"github.com/fourthdown/gridsim/internal/engine"
)

// maxFieldGoalRange is the longest attempt a league-average kicker tries.
// Kicker rating shifts the effective range a few yards either way.
const maxFieldGoalRange = 55

// resolvePlay selects and resolves one play for the side in possession.
// Every reachable state combination has a defined outcome; an invalid state
// is an upstream invariant violation and fails fast instead of clamping.
func resolvePlay(state *GameState, off, def *roster, rng *engine.Stream) (PlayResult, error) {
	if err := validateState(state); err != nil {
		return PlayResult{}, err
	}

	switch selectCall(state, off, rng) {
	case callKneel:
		return applyGoalLines(state, off, resolveKneel(), rng), nil
	case callPunt:
		return resolvePunt(state, off, rng), nil
	case callFieldGoal:
		return resolveFieldGoal(state, off, rng), nil
	case callRun:
		return resolveRun(state, off, def, rng), nil
	default:
		return resolvePass(state, off, def, rng), nil
	}
}

// selectCall picks the play category from down, distance, field position,
// score differential, clock, and play-style tendency.
func selectCall(state *GameState, off *roster, rng *engine.Stream) playCall {
	if shouldKneel(state) {
		return callKneel
	}

	if state.Down == 4 {
		return selectFourthDown(state, off, rng)
	}

	weights := downDistanceWeights[state.Down][distanceBand(state.YardsToGo)]
	runWeight := weights.run * styleRunBias[off.team.Style] * situationalRunBias(state)

	// Goal-line compression: inside the 5 the run weight climbs.
	if state.BallPosition >= 95 {
		runWeight *= 1.6
	}

	total := runWeight + weights.pass
	if rng.NextFloat()*total < runWeight {
		return callRun
	}
	return callPass
}

// shouldKneel reports whether the offense can end the game by kneeling: it
// leads late in the fourth quarter or overtime and the remaining clock burns
// off with the downs in hand against a defense out of timeouts.
func shouldKneel(state *GameState) bool {
	if state.Quarter != 4 && !state.Quarter.IsOvertime() {
		return false
	}
	if state.ScoreDiff() <= 0 || state.Clock > 120 {
		return false
	}
	// Backed up against the own goal line, a kneel concedes a safety.
	if state.BallPosition <= 2 {
		return false
	}
	defTimeouts := state.AwayTimeouts
	if state.Possession == SideAway {
		defTimeouts = state.HomeTimeouts
	}
	downsLeft := 4 - state.Down + 1
	burnable := downsLeft - defTimeouts
	if burnable < 1 {
		return false
	}
	return burnable*kneelSeconds >= state.Clock
}

func selectFourthDown(state *GameState, off *roster, rng *engine.Stream) playCall {
	fgDist := fieldGoalDistance(state.BallPosition)
	kickRange := maxFieldGoalRange
	if k, ok := off.kicker(); ok {
		kickRange += (k.Rating - 75) / 5
	}

	trailingLate := (state.Quarter == 4 || state.Quarter.IsOvertime()) &&
		state.Clock < 300 && state.ScoreDiff() < 0

	// Desperation: down more than a field goal fixes, out of time.
	if trailingLate && state.Clock < 120 && state.ScoreDiff() < -3 {
		if distanceBand(state.YardsToGo) == "long" {
			return callPass
		}
		return goOrFallback(state, off, rng, 0.95)
	}

	if fgDist <= kickRange {
		// Short fourth downs near the edge of range tempt aggressive teams.
		if state.YardsToGo <= 2 && fgDist > kickRange-8 {
			return goOrFallback(state, off, rng, goForItChance(state, off)+0.15)
		}
		if trailingLate && state.ScoreDiff() < -3 && state.YardsToGo <= 5 {
			return goOrFallback(state, off, rng, 0.6)
		}
		return callFieldGoal
	}

	// Out of field goal range: go for it or punt.
	return goOrFallback(state, off, rng, goForItChance(state, off))
}

// goForItChance is the probability a team attempts a fourth-down conversion
// instead of kicking, before situational overrides.
func goForItChance(state *GameState, off *roster) float64 {
	chance := 0.04
	if off.team.Style == StyleAggressive {
		chance += 0.14
	}
	if state.YardsToGo <= 2 {
		chance += 0.10
	}
	// Plus territory but outside range: punting gains little.
	if state.BallPosition >= 58 {
		chance += 0.18
	}
	return chance
}

func goOrFallback(state *GameState, off *roster, rng *engine.Stream, chance float64) playCall {
	if rng.NextFloat() < chance {
		if distanceBand(state.YardsToGo) == "short" {
			// Conversion attempt leans on the ground game.
			if rng.NextFloat() < 0.55 {
				return callRun
			}
		}
		return callPass
	}
	return callPunt
}

func resolvePass(state *GameState, off, def *roster, rng *engine.Stream) PlayResult {
	qb, _ := off.best(PosQB)
	target, _ := off.pickWeighted(rng.NextFloat(), PosWR, PosTE)

	olRating := off.avgRating(off.team.Offense, PosOL)
	passRush := def.avgRating(def.team.Defense, PosDL, PosLB)
	coverage := def.avgRating(def.team.Defense, PosCB, PosS)

	sackChance := clampFloat(baseSackChance+(passRush-olRating)*0.0015, minSackChance, maxSackChance)
	if rng.NextFloat() < sackChance {
		loss := -(3 + int(math.Floor(rng.NextFloat()*8)))
		result := PlayResult{Type: PlaySack, Yards: loss, PasserID: qb.ID}
		return applyGoalLines(state, off, result, rng)
	}

	// QB awareness and receiver quality pull interceptions down; coverage
	// pushes them up.
	ballSecurity := 0.6*float64(qb.Awareness) + 0.4*float64(target.Rating)
	intChance := clampFloat(baseInterceptionChance+(coverage-ballSecurity)*0.0004,
		minInterceptionChance, maxInterceptionChance)
	airYards := sampleAirYards(rng, target)

	if rng.NextFloat() < intChance {
		returnYards := int(math.Floor(rng.NextFloat() * 15))
		spotShift := airYards - returnYards
		return PlayResult{
			Type:       PlayPassIncomplete,
			Yards:      spotShift,
			Turnover:   &Turnover{Type: TurnoverInterception, RecoveredBy: state.Possession.Other()},
			PasserID:   qb.ID,
			ReceiverID: target.ID,
		}
	}

	completionChance := clampFloat(
		baseCompletionChance+
			(float64(off.team.Offense)-float64(def.team.Defense))*0.002+
			(float64(qb.Rating)-75)*0.002,
		minCompletionChance, maxCompletionChance)

	if rng.NextFloat() >= completionChance {
		return PlayResult{Type: PlayPassIncomplete, PasserID: qb.ID, ReceiverID: target.ID}
	}

	// Ball on target: either caught or dropped, never both.
	dropChance := clampFloat(baseDropChance-(float64(target.Rating)-75)*0.0006,
		minDropChance, maxDropChance)
	if rng.NextFloat() < dropChance {
		return PlayResult{Type: PlayPassIncomplete, Dropped: true, PasserID: qb.ID, ReceiverID: target.ID}
	}

	yac := int(math.Floor(rng.NextFloat() * (4 + float64(target.Speed)*0.09)))
	result := PlayResult{
		Type:       PlayPassComplete,
		Yards:      airYards + yac,
		PasserID:   qb.ID,
		ReceiverID: target.ID,
	}
	return applyGoalLines(state, off, result, rng)
}

// sampleAirYards draws throw depth: mostly short and intermediate, with an
// occasional shot downfield scaled by receiver speed.
func sampleAirYards(rng *engine.Stream, target Player) int {
	f := rng.NextFloat()
	switch {
	case f < 0.12:
		depth := rng.NextFloat()
		return 16 + int(math.Floor(depth*(14+float64(target.Speed)*0.18)))
	case f < 0.50:
		return 7 + int(math.Floor(rng.NextFloat()*9))
	default:
		return int(math.Floor(rng.NextFloat() * 7))
	}
}

func resolveRun(state *GameState, off, def *roster, rng *engine.Stream) PlayResult {
	carrier, ok := off.pickWeighted(rng.NextFloat(), PosRB)
	if !ok {
		carrier, _ = off.pickWeighted(rng.NextFloat(), PosQB, PosWR)
	}

	frontSeven := def.avgRating(def.team.Defense, PosDL, PosLB)
	blocking := off.avgRating(off.team.Offense, PosOL)

	if rng.NextFloat() < baseFumbleChance {
		return PlayResult{
			Type:     PlayRun,
			Yards:    0,
			Turnover: &Turnover{Type: TurnoverFumble, RecoveredBy: state.Possession.Other()},
			RusherID: carrier.ID,
		}
	}

	base := -3 + rng.NextFloat()*9 + (blocking-frontSeven)*0.05
	yards := int(math.Floor(base))

	// Breakaway chance rides on carrier speed.
	if rng.NextFloat() < 0.07+float64(carrier.Speed)*0.0005 {
		yards += 8 + int(math.Floor(rng.NextFloat()*float64(carrier.Speed)*0.45))
	}

	result := PlayResult{Type: PlayRun, Yards: yards, RusherID: carrier.ID}
	return applyGoalLines(state, off, result, rng)
}

func resolvePunt(state *GameState, off *roster, rng *engine.Stream) PlayResult {
	punter, _ := off.punter()
	net := 34 + int(math.Floor(rng.NextFloat()*18)) + (punter.Rating-75)/6
	if net < 20 {
		net = 20
	}
	return PlayResult{Type: PlayPunt, Yards: net, KickerID: punter.ID}
}

func resolveFieldGoal(state *GameState, off *roster, rng *engine.Stream) PlayResult {
	kicker, _ := off.kicker()
	dist := fieldGoalDistance(state.BallPosition)
	good := rng.NextFloat() < fieldGoalChance(dist, kicker)

	result := PlayResult{Type: PlayFieldGoal, FieldGoalGood: good, KickerID: kicker.ID}
	if good {
		result.Points = 3
	}
	return result
}

// fieldGoalDistance converts ball position to kick distance: yards to the
// goal line plus the end zone and the holder's spot.
func fieldGoalDistance(ballPosition int) int {
	return (100 - ballPosition) + 17
}

// fieldGoalChance is the make probability by distance bucket, shifted by
// kicker rating.
func fieldGoalChance(distance int, kicker Player) float64 {
	var base float64
	switch {
	case distance < 30:
		base = 0.965
	case distance < 40:
		base = 0.90
	case distance < 50:
		base = 0.78
	case distance < 56:
		base = 0.60
	default:
		base = 0.42
	}
	return clampFloat(base+(float64(kicker.Rating)-75)*0.004, 0.20, 0.99)
}

func resolveKneel() PlayResult {
	return PlayResult{Type: PlayKneel, Yards: -1}
}

// applyGoalLines clamps yardage at both goal lines: gains past the opponent
// goal line are a touchdown at the goal line, never an overshoot; losses into
// the offense's own end zone are a safety.
func applyGoalLines(state *GameState, off *roster, result PlayResult, rng *engine.Stream) PlayResult {
	end := state.BallPosition + result.Yards
	if end >= 100 {
		result.Yards = 100 - state.BallPosition
		result.Touchdown = true
		result.Points = 6 + resolveExtraPoint(off, rng)
		return result
	}
	if end <= 0 {
		result.Yards = -state.BallPosition
		result.Safety = true
		result.Points = 2
	}
	return result
}

// resolveExtraPoint returns 1 on a made kick, 0 on a miss.
func resolveExtraPoint(off *roster, rng *engine.Stream) int {
	kicker, _ := off.kicker()
	chance := clampFloat(0.93+(float64(kicker.Rating)-75)*0.002, 0.80, 0.995)
	if rng.NextFloat() < chance {
		return 1
	}
	return 0
}
