package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fourthdown/gridsim/internal/engine"
)

func TestDescribeConsumesExactlyOneFloat(t *testing.T) {
	offense := testTeam("HOM", StyleBalanced)
	state := midfieldState()

	a := engine.NewStream("commentary_server", "commentary_client", 1)
	b := engine.NewStream("commentary_server", "commentary_client", 1)

	describe(PlayResult{Type: PlayRun, Yards: 6}, offense, state, state, a)
	b.NextFloat()

	assert.Equal(t, a.Cursor(), b.Cursor(), "every play draws one float regardless of template pool")

	describe(PlayResult{Type: PlayFieldGoal, FieldGoalGood: true, Points: 3}, offense, state, state, a)
	b.NextFloat()
	assert.Equal(t, a.Cursor(), b.Cursor())
}

func TestPlayTextVariants(t *testing.T) {
	offense := testTeam("HOM", StyleBalanced)

	cases := []struct {
		name     string
		play     PlayResult
		contains string
	}{
		{"run gain", PlayResult{Type: PlayRun, Yards: 8}, "HOM"},
		{"run loss", PlayResult{Type: PlayRun, Yards: -3}, "loss of 3"},
		{"deep completion", PlayResult{Type: PlayPassComplete, Yards: 32}, "32"},
		{"drop", PlayResult{Type: PlayPassIncomplete, Dropped: true}, "HOM"},
		{"sack", PlayResult{Type: PlaySack, Yards: -7}, "sacked"},
		{"punt", PlayResult{Type: PlayPunt, Yards: 44}, "44"},
		{"made field goal", PlayResult{Type: PlayFieldGoal, FieldGoalGood: true}, "GOOD"},
		{"kneel", PlayResult{Type: PlayKneel, Yards: -1}, "knee"},
		{
			"interception",
			PlayResult{Type: PlayPassIncomplete,
				Turnover: &Turnover{Type: TurnoverInterception, RecoveredBy: SideAway}},
			"INTERCEPTED",
		},
		{
			"fumble",
			PlayResult{Type: PlayRun,
				Turnover: &Turnover{Type: TurnoverFumble, RecoveredBy: SideAway}},
			"ball is out",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := playText(tc.play, offense, 0.0)
			assert.Contains(t, text, tc.contains)
		})
	}

	td := playText(PlayResult{Type: PlayRun, Yards: 12, Touchdown: true, Points: 7}, offense, 0.0)
	assert.True(t, strings.HasSuffix(td, "TOUCHDOWN!"))

	safety := playText(PlayResult{Type: PlaySack, Yards: -4, Safety: true, Points: 2}, offense, 0.0)
	assert.True(t, strings.HasSuffix(safety, "SAFETY!"))
}

func TestChooseStaysInBounds(t *testing.T) {
	pool := []string{"a", "b", "c"}
	assert.Equal(t, "a", choose(pool, 0.0))
	assert.Equal(t, "c", choose(pool, 0.999999))
	assert.Equal(t, "c", choose(pool, 1.0), "a degenerate draw of exactly 1 clamps to the last entry")
}

func TestExcitementScore(t *testing.T) {
	calm := midfieldState()

	short := excitementScore(PlayResult{Type: PlayRun, Yards: 2}, calm, calm)
	long := excitementScore(PlayResult{Type: PlayRun, Yards: 40}, calm, calm)
	assert.Greater(t, long, short)

	pick := excitementScore(PlayResult{
		Type:     PlayPassIncomplete,
		Turnover: &Turnover{Type: TurnoverInterception, RecoveredBy: SideAway},
	}, calm, calm)
	assert.Greater(t, pick, long-40, "turnovers spike excitement")

	lateClose := calm
	lateClose.Quarter = 4
	lateClose.Clock = 120
	lateClose.HomeScore = 21
	lateClose.AwayScore = 17
	clutch := excitementScore(PlayResult{Type: PlayRun, Yards: 2}, lateClose, lateClose)
	assert.Greater(t, clutch, short, "a close fourth quarter raises the floor")

	for _, play := range []PlayResult{
		{Type: PlayKneel, Yards: -1},
		{Type: PlayRun, Yards: 95, Touchdown: true, Points: 7},
	} {
		score := excitementScore(play, lateClose, lateClose)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}
