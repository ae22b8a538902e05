package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *eventBuilder {
	return newEventBuilder(testTeam("HOM", StyleBalanced), testTeam("VIS", StyleBalanced))
}

func TestEventBuilderNumbersAndPacing(t *testing.T) {
	b := testBuilder()
	state := midfieldState()

	b.append(PlayResult{Type: PlayRun, Yards: 5, RusherID: "HOM_rb1"},
		Commentary{Text: "run", Excitement: 10}, state, SideHome)
	b.append(PlayResult{Type: PlayPassComplete, Yards: 12, PasserID: "HOM_qb1", ReceiverID: "HOM_wr1"},
		Commentary{Text: "pass", Excitement: 50}, state, SideHome)

	require.Len(t, b.events, 2)
	assert.Equal(t, 1, b.events[0].EventNumber)
	assert.Equal(t, 2, b.events[1].EventNumber)
	assert.Equal(t, "run", b.events[0].EventType)
	assert.Equal(t, "pass_complete", b.events[1].EventType)

	assert.InDelta(t, 4.6, b.events[0].DisplayTimestamp, 1e-9)
	assert.InDelta(t, 4.6+7.0, b.events[1].DisplayTimestamp, 1e-9)
}

func TestEventBuilderAccumulation(t *testing.T) {
	b := testBuilder()
	state := midfieldState()
	quiet := Commentary{Text: "play"}

	b.append(PlayResult{Type: PlayPassComplete, Yards: 15, PasserID: "HOM_qb1", ReceiverID: "HOM_wr1"},
		quiet, state, SideHome)
	b.append(PlayResult{Type: PlayPassIncomplete, PasserID: "HOM_qb1", ReceiverID: "HOM_wr1"},
		quiet, state, SideHome)
	b.append(PlayResult{Type: PlayPassIncomplete, Dropped: true, PasserID: "HOM_qb1", ReceiverID: "HOM_wr2"},
		quiet, state, SideHome)
	b.append(PlayResult{
		Type: PlayPassIncomplete, PasserID: "HOM_qb1",
		Turnover: &Turnover{Type: TurnoverInterception, RecoveredBy: SideAway},
	}, quiet, state, SideHome)
	b.append(PlayResult{Type: PlaySack, Yards: -6, PasserID: "HOM_qb1"}, quiet, state, SideHome)
	b.append(PlayResult{Type: PlayRun, Yards: 9, RusherID: "VIS_rb1"}, quiet, state, SideAway)
	b.append(PlayResult{
		Type: PlayRun, RusherID: "VIS_rb1",
		Turnover: &Turnover{Type: TurnoverFumble, RecoveredBy: SideHome},
	}, quiet, state, SideAway)
	b.append(PlayResult{Type: PlayFieldGoal, FieldGoalGood: true, Points: 3, KickerID: "VIS_k1"},
		quiet, state, SideAway)
	b.append(PlayResult{Type: PlayPunt, Yards: 41, KickerID: "HOM_p1"}, quiet, state, SideHome)

	final := state
	final.HomeScore = 0
	final.AwayScore = 3
	game := b.finish(final)

	home := game.BoxScore.Home
	assert.Equal(t, 4, home.PassAttempts, "interceptions count as attempts, sacks do not")
	assert.Equal(t, 1, home.Completions)
	assert.Equal(t, 1, home.Drops)
	assert.Equal(t, 1, home.InterceptionsThrown)
	assert.Equal(t, 1, home.SacksAllowed)
	assert.Equal(t, 1, home.Punts)
	assert.Equal(t, 15, home.PassYards)
	assert.Equal(t, "25", home.CompletionPct)
	assert.Equal(t, "3.8", home.YardsPerAttempt)

	away := game.BoxScore.Away
	assert.Equal(t, 9, away.RushYards, "fumbled runs credit no yardage")
	assert.Equal(t, 1, away.FumblesLost)
	assert.Equal(t, 1, away.FieldGoalsMade)
	assert.Equal(t, 1, away.FieldGoalsAttempted)
	assert.Equal(t, 9, away.TotalYards)
	assert.Equal(t, "0", away.CompletionPct)

	assert.Equal(t, len(b.events), game.TotalPlays)
	assert.Equal(t, 3, game.AwayScore)

	byID := make(map[string]PlayerLine)
	for _, line := range game.BoxScore.Players {
		byID[line.PlayerID] = line
	}
	assert.Equal(t, 15, byID["HOM_qb1"].PassYards)
	assert.Equal(t, 1, byID["HOM_qb1"].TurnoversLost)
	assert.Equal(t, 15, byID["HOM_wr1"].ReceivingYards)
	assert.Equal(t, 1, byID["VIS_rb1"].TurnoversLost)
	assert.Equal(t, 1, byID["VIS_k1"].FieldGoalsMade)
}

func TestEventBuilderMomentum(t *testing.T) {
	b := testBuilder()
	state := midfieldState()
	quiet := Commentary{}

	b.append(PlayResult{Type: PlayFieldGoal, FieldGoalGood: true, Points: 3, KickerID: "HOM_k1"},
		quiet, state, SideHome)
	require.Nil(t, b.events[0].Narrative, "three points is not yet a run")

	b.append(PlayResult{Type: PlayRun, Yards: 12, Touchdown: true, Points: 7, RusherID: "HOM_rb1"},
		quiet, state, SideHome)
	require.NotNil(t, b.events[1].Narrative)
	assert.Equal(t, "10 unanswered points for HOM", b.events[1].Narrative.Momentum)

	// Opponent scoring resets the run.
	b.append(PlayResult{Type: PlayFieldGoal, FieldGoalGood: true, Points: 3, KickerID: "VIS_k1"},
		quiet, state, SideAway)
	assert.Nil(t, b.events[2].Narrative)
}

func TestEventBuilderSafetyCreditsDefense(t *testing.T) {
	b := testBuilder()
	state := midfieldState()
	quiet := Commentary{}

	// Away surrenders a safety twice, then home scores a touchdown against it:
	// the unanswered run belongs to home throughout.
	b.append(PlayResult{Type: PlaySack, Yards: -4, Safety: true, Points: 2}, quiet, state, SideAway)
	b.append(PlayResult{Type: PlaySack, Yards: -2, Safety: true, Points: 2}, quiet, state, SideAway)
	b.append(PlayResult{Type: PlayRun, Yards: 8, Touchdown: true, Points: 7, RusherID: "HOM_rb1"},
		quiet, state, SideHome)

	require.NotNil(t, b.events[2].Narrative)
	assert.Equal(t, "11 unanswered points for HOM", b.events[2].Narrative.Momentum)
}

func TestEventBuilderMilestoneEmitsOnce(t *testing.T) {
	b := testBuilder()
	state := midfieldState()
	quiet := Commentary{}

	b.append(PlayResult{Type: PlayRun, Yards: 60, RusherID: "HOM_rb1"}, quiet, state, SideHome)
	assert.Nil(t, b.events[0].Narrative)

	b.append(PlayResult{Type: PlayRun, Yards: 45, RusherID: "HOM_rb1"}, quiet, state, SideHome)
	require.NotNil(t, b.events[1].Narrative)
	assert.Equal(t, "HOM_rb1 crosses 100 rushing yards", b.events[1].Narrative.Milestone)

	b.append(PlayResult{Type: PlayRun, Yards: 10, RusherID: "HOM_rb1"}, quiet, state, SideHome)
	assert.Nil(t, b.events[2].Narrative, "a crossed milestone never repeats")
}

func TestSelectMVP(t *testing.T) {
	players := []PlayerLine{
		{PlayerID: "a_qb", PassYards: 280, Touchdowns: 2},                  // 560 + 240 = 800
		{PlayerID: "b_rb", RushYards: 120, Touchdowns: 1},                  // 600 + 120 = 720
		{PlayerID: "c_wr", ReceivingYards: 150, TurnoversLost: 1},          // 600 - 90 = 510
		{PlayerID: "d_k", FieldGoalsMade: 4},                               // 200
	}
	assert.Equal(t, "a_qb", selectMVP(players))

	assert.Equal(t, "", selectMVP(nil))

	tied := []PlayerLine{
		{PlayerID: "z_rb", RushYards: 100},
		{PlayerID: "a_rb", RushYards: 100},
	}
	assert.Equal(t, "a_rb", selectMVP(tied), "ties break toward the smaller ID")
}

func TestMVPScoreWeights(t *testing.T) {
	line := PlayerLine{PassYards: 10, RushYards: 10, ReceivingYards: 10,
		Touchdowns: 1, FieldGoalsMade: 1, TurnoversLost: 1}
	assert.Equal(t, 10*2+10*5+10*4+120+50-90, mvpScore(&line))
}

func TestFinalizeRatesZeroAttempts(t *testing.T) {
	ts := TeamStats{RushYards: 42}
	ts.finalizeRates()
	assert.Equal(t, "0", ts.CompletionPct)
	assert.Equal(t, "0", ts.YardsPerAttempt)
	assert.Equal(t, 42, ts.TotalYards)
}
