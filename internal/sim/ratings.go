package sim

// Calibration constants. All probability knobs that shape aggregate
// statistics live here so the calibration tests have a single place to
// reason about. Aggregate targets: interceptions on 1.5%-4.0% of pass
// attempts, drops on 1%-7% of catchable passes.
const (
	baseCompletionChance = 0.615
	minCompletionChance  = 0.45
	maxCompletionChance  = 0.76

	baseInterceptionChance = 0.026
	minInterceptionChance  = 0.016
	maxInterceptionChance  = 0.038

	baseDropChance = 0.042
	minDropChance  = 0.015
	maxDropChance  = 0.065

	baseSackChance = 0.062
	minSackChance  = 0.025
	maxSackChance  = 0.115

	baseFumbleChance = 0.011
)

// playCall is the play category the offense selects before the snap.
type playCall int

const (
	callRun playCall = iota
	callPass
	callPunt
	callFieldGoal
	callKneel
)

// callWeights is an unnormalized run/pass weighting for a situational
// bucket. selectCall normalizes after all adjustments.
type callWeights struct {
	run  float64
	pass float64
}

// downDistanceWeights is the base run/pass table by down and distance band.
// Distance bands: short (<=3), medium (4-7), long (>=8).
var downDistanceWeights = map[int]map[string]callWeights{
	1: {
		"short":  {run: 0.52, pass: 0.48},
		"medium": {run: 0.48, pass: 0.52},
		"long":   {run: 0.44, pass: 0.56},
	},
	2: {
		"short":  {run: 0.56, pass: 0.44},
		"medium": {run: 0.44, pass: 0.56},
		"long":   {run: 0.32, pass: 0.68},
	},
	3: {
		"short":  {run: 0.50, pass: 0.50},
		"medium": {run: 0.22, pass: 0.78},
		"long":   {run: 0.12, pass: 0.88},
	},
	4: {
		"short":  {run: 0.45, pass: 0.55},
		"medium": {run: 0.20, pass: 0.80},
		"long":   {run: 0.10, pass: 0.90},
	},
}

// styleRunBias is the multiplicative adjustment a team's tendency applies to
// its run weight.
var styleRunBias = map[PlayStyle]float64{
	StyleBalanced:     1.0,
	StylePassHeavy:    0.70,
	StyleRunHeavy:     1.45,
	StyleAggressive:   0.85,
	StyleConservative: 1.25,
}

func distanceBand(yardsToGo int) string {
	switch {
	case yardsToGo <= 3:
		return "short"
	case yardsToGo <= 7:
		return "medium"
	default:
		return "long"
	}
}

// situationalRunBias adjusts the run weight for score differential and
// clock: trailing late biases toward passing, leading late toward
// clock-conserving runs.
func situationalRunBias(state *GameState) float64 {
	lateGame := (state.Quarter == 4 || state.Quarter.IsOvertime()) && state.Clock < 420
	diff := state.ScoreDiff()

	bias := 1.0
	switch {
	case lateGame && diff < -8:
		bias = 0.30
	case lateGame && diff < 0:
		bias = 0.55
	case lateGame && diff > 8:
		bias = 1.80
	case lateGame && diff > 0:
		bias = 1.40
	case state.Quarter == 2 && state.Clock < 120 && diff <= 0:
		// two-minute drill before the half
		bias = 0.55
	}
	return bias
}

// roster is an indexed view over one team's players.
type roster struct {
	team    Team
	players []Player
	byPos   map[Position][]Player
}

func newRoster(team Team, players []Player) *roster {
	r := &roster{team: team, players: players, byPos: make(map[Position][]Player)}
	for _, p := range players {
		r.byPos[p.Position] = append(r.byPos[p.Position], p)
	}
	return r
}

// best returns the highest-rated player at a position, with deterministic
// tie-breaking by player ID.
func (r *roster) best(pos Position) (Player, bool) {
	candidates := r.byPos[pos]
	if len(candidates) == 0 {
		return Player{}, false
	}
	top := candidates[0]
	for _, p := range candidates[1:] {
		if p.Rating > top.Rating || (p.Rating == top.Rating && p.ID < top.ID) {
			top = p
		}
	}
	return top, true
}

// pickWeighted selects one of the players at the given positions, weighted
// by rating, consuming one float. Used for target/carrier selection.
func (r *roster) pickWeighted(f float64, positions ...Position) (Player, bool) {
	var pool []Player
	for _, pos := range positions {
		pool = append(pool, r.byPos[pos]...)
	}
	if len(pool) == 0 {
		return Player{}, false
	}
	total := 0
	for _, p := range pool {
		total += p.Rating + 1
	}
	threshold := f * float64(total)
	acc := 0.0
	for _, p := range pool {
		acc += float64(p.Rating + 1)
		if threshold < acc {
			return p, true
		}
	}
	return pool[len(pool)-1], true
}

// avgRating averages the ratings of all players at the given positions,
// falling back to the team rating when the group is empty.
func (r *roster) avgRating(fallback int, positions ...Position) float64 {
	sum, n := 0, 0
	for _, pos := range positions {
		for _, p := range r.byPos[pos] {
			sum += p.Rating
			n++
		}
	}
	if n == 0 {
		return float64(fallback)
	}
	return float64(sum) / float64(n)
}

// kicker returns the kicking specialist: the K, or the P as a fallback.
func (r *roster) kicker() (Player, bool) {
	if k, ok := r.best(PosK); ok {
		return k, true
	}
	return r.best(PosP)
}

// punter returns the punting specialist: the P, or the K as a fallback.
func (r *roster) punter() (Player, bool) {
	if p, ok := r.best(PosP); ok {
		return p, true
	}
	return r.best(PosK)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
