package sim

import (
	"fmt"
	"math"

	"github.com/fourthdown/gridsim/internal/engine"
)

// Play-by-play template pools. Templates take the offense abbreviation and,
// where marked, a yardage figure. One float is always consumed per play for
// template selection so replay alignment never depends on which pool is hit.
var (
	runTemplates = []string{
		"%s pounds it up the middle for %d",
		"%s bounces outside and picks up %d",
		"Handoff for %s, good for %d",
		"%s grinds out %d on the ground",
	}
	runLossTemplates = []string{
		"%s is swallowed up in the backfield for a loss of %d",
		"Nowhere to go — %s stuffed for minus %d",
	}
	completionTemplates = []string{
		"%s connects over the middle for %d",
		"Quick strike from %s, good for %d",
		"%s finds a seam in the coverage, %d on the catch and run",
		"Play action — %s hits the out route for %d",
	}
	deepCompletionTemplates = []string{
		"%s airs it out... hauled in for a gain of %d!",
		"Deep shot from %s — complete for %d!",
	}
	incompletionTemplates = []string{
		"%s throws it away under pressure",
		"Pass from %s sails out of bounds",
		"%s fires into coverage — batted down",
	}
	dropTemplates = []string{
		"Right through the hands! %s can't buy a catch",
		"%s puts it on the numbers but it's dropped",
	}
	sackTemplates = []string{
		"The pocket collapses — %s sacked for a loss of %d",
		"Blitz gets home! %s goes down %d yards back",
	}
	interceptionTemplates = []string{
		"INTERCEPTED! %s pays for the risky throw",
		"Picked off! %s's pass lands in the wrong hands",
	}
	fumbleTemplates = []string{
		"The ball is out! %s coughs it up",
		"FUMBLE! %s loses the handle and the defense pounces",
	}
	puntTemplates = []string{
		"%s punts it away, %d yards downfield",
		"Fourth down — %s flips the field with a %d-yard punt",
	}
	fieldGoalGoodTemplates = []string{
		"The kick is up... and GOOD! %s adds three",
		"%s splits the uprights",
	}
	fieldGoalMissTemplates = []string{
		"The kick drifts wide — %s comes away empty",
		"No good! %s misses the field goal",
	}
	kneelTemplates = []string{
		"%s takes a knee to bleed the clock",
		"Victory formation for %s",
	}
	touchdownSuffix = " — TOUCHDOWN!"
	safetySuffix    = " — tackled in the end zone, SAFETY!"
)

// describe turns a resolved play and its state transition into broadcast
// text plus an excitement score. Deterministic: the only randomness is one
// float from the shared stream.
func describe(play PlayResult, offense Team, prev, next GameState, rng *engine.Stream) Commentary {
	pick := rng.NextFloat()
	text := playText(play, offense, pick)
	return Commentary{
		Text:       text,
		Excitement: excitementScore(play, prev, next),
	}
}

func playText(play PlayResult, offense Team, pick float64) string {
	abbr := offense.Abbreviation
	var text string

	switch {
	case play.Turnover != nil && play.Turnover.Type == TurnoverInterception:
		text = fmt.Sprintf(choose(interceptionTemplates, pick), abbr)
	case play.Turnover != nil:
		text = fmt.Sprintf(choose(fumbleTemplates, pick), abbr)
	case play.Type == PlayRun && play.Yards < 0:
		text = fmt.Sprintf(choose(runLossTemplates, pick), abbr, -play.Yards)
	case play.Type == PlayRun:
		text = fmt.Sprintf(choose(runTemplates, pick), abbr, play.Yards)
	case play.Type == PlayPassComplete && play.Yards >= 25:
		text = fmt.Sprintf(choose(deepCompletionTemplates, pick), abbr, play.Yards)
	case play.Type == PlayPassComplete:
		text = fmt.Sprintf(choose(completionTemplates, pick), abbr, play.Yards)
	case play.Type == PlayPassIncomplete && play.Dropped:
		text = fmt.Sprintf(choose(dropTemplates, pick), abbr)
	case play.Type == PlayPassIncomplete:
		text = fmt.Sprintf(choose(incompletionTemplates, pick), abbr)
	case play.Type == PlaySack:
		text = fmt.Sprintf(choose(sackTemplates, pick), abbr, -play.Yards)
	case play.Type == PlayPunt:
		text = fmt.Sprintf(choose(puntTemplates, pick), abbr, play.Yards)
	case play.Type == PlayFieldGoal && play.FieldGoalGood:
		text = fmt.Sprintf(choose(fieldGoalGoodTemplates, pick), abbr)
	case play.Type == PlayFieldGoal:
		text = fmt.Sprintf(choose(fieldGoalMissTemplates, pick), abbr)
	default:
		text = fmt.Sprintf(choose(kneelTemplates, pick), abbr)
	}

	if play.Touchdown {
		text += touchdownSuffix
	}
	if play.Safety {
		text += safetySuffix
	}
	return text
}

func choose(pool []string, f float64) string {
	idx := int(math.Floor(f * float64(len(pool))))
	if idx >= len(pool) {
		idx = len(pool) - 1
	}
	return pool[idx]
}

// excitementScore grades a play 0-100 from magnitude, turnovers, scoring,
// game closeness, and clock pressure. Presentation signal only.
func excitementScore(play PlayResult, prev, next GameState) int {
	score := 8.0

	yards := play.Yards
	if yards < 0 {
		yards = -yards
	}
	score += float64(yards) * 1.1

	if play.Turnover != nil {
		score += 35
	}
	if play.Touchdown {
		score += 30
	}
	if play.Safety {
		score += 32
	}
	if play.Type == PlayFieldGoal && play.FieldGoalGood {
		score += 14
	}
	if play.Type == PlaySack {
		score += 12
	}
	if play.Dropped {
		score += 6
	}

	margin := next.HomeScore - next.AwayScore
	if margin < 0 {
		margin = -margin
	}
	if margin <= 8 && (next.Quarter == 4 || next.Quarter.IsOvertime()) {
		score += 12
	}
	if (prev.Quarter == 4 || prev.Quarter.IsOvertime()) && prev.Clock <= 240 {
		score += 8
	}

	return clampInt(int(math.Round(score)), 0, 100)
}
