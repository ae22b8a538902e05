package sim_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthdown/gridsim/internal/sim"
	"github.com/fourthdown/gridsim/internal/sim/simtest"
)

func TestSimulateDeterminism(t *testing.T) {
	cfg := simtest.Config("determinism_server", "determinism_client", 42)

	first, err := sim.Simulate(cfg)
	require.NoError(t, err)
	second, err := sim.Simulate(cfg)
	require.NoError(t, err)

	assert.Equal(t, first.HomeScore, second.HomeScore)
	assert.Equal(t, first.AwayScore, second.AwayScore)
	assert.Equal(t, first.TotalPlays, second.TotalPlays)
	assert.Equal(t, first.MVPPlayerID, second.MVPPlayerID)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON, "two runs must serialize bit-identically")
}

func TestSimulateSeedSensitivity(t *testing.T) {
	base, err := sim.Simulate(simtest.Config("seed_a", "client", 1))
	require.NoError(t, err)

	other, err := sim.Simulate(simtest.Config("seed_b", "client", 1))
	require.NoError(t, err)

	baseJSON, _ := json.Marshal(base)
	otherJSON, _ := json.Marshal(other)
	assert.NotEqual(t, baseJSON, otherJSON, "different server seeds must diverge")
}

func TestSimulateStateBounds(t *testing.T) {
	for nonce := uint64(1); nonce <= 5; nonce++ {
		game, err := sim.Simulate(simtest.Config("bounds_server", "bounds_client", nonce))
		require.NoError(t, err)

		for _, ev := range game.Events {
			st := ev.State
			assert.GreaterOrEqual(t, st.Down, 1, "event %d", ev.EventNumber)
			assert.LessOrEqual(t, st.Down, 4, "event %d", ev.EventNumber)
			assert.GreaterOrEqual(t, st.YardsToGo, 1, "event %d", ev.EventNumber)
			assert.LessOrEqual(t, st.YardsToGo, 99, "event %d", ev.EventNumber)
			assert.GreaterOrEqual(t, st.BallPosition, 0, "event %d", ev.EventNumber)
			assert.LessOrEqual(t, st.BallPosition, 100, "event %d", ev.EventNumber)
			assert.GreaterOrEqual(t, st.Clock, 0, "event %d", ev.EventNumber)
			if st.Quarter.IsOvertime() {
				assert.LessOrEqual(t, st.Clock, 600, "event %d", ev.EventNumber)
			} else {
				assert.LessOrEqual(t, st.Clock, 900, "event %d", ev.EventNumber)
			}
			assert.GreaterOrEqual(t, st.HomeTimeouts, 0)
			assert.LessOrEqual(t, st.HomeTimeouts, 3)
			assert.GreaterOrEqual(t, st.AwayTimeouts, 0)
			assert.LessOrEqual(t, st.AwayTimeouts, 3)
		}
	}
}

func TestSimulateTerminationAndScores(t *testing.T) {
	for nonce := uint64(1); nonce <= 10; nonce++ {
		game, err := sim.Simulate(simtest.Config("termination_server", "termination_client", nonce))
		require.NoError(t, err)

		assert.Greater(t, game.TotalPlays, 0)
		assert.Less(t, game.TotalPlays, 500)
		assert.GreaterOrEqual(t, game.HomeScore, 0)
		assert.GreaterOrEqual(t, game.AwayScore, 0)
		assert.Len(t, game.Events, game.TotalPlays)
	}
}

func TestSimulateEventOrdering(t *testing.T) {
	game, err := sim.Simulate(simtest.Config("ordering_server", "ordering_client", 3))
	require.NoError(t, err)

	for i, ev := range game.Events {
		assert.Equal(t, i+1, ev.EventNumber, "event numbers must be gapless from 1")
	}

	// Display timestamps pace the broadcast: strictly increasing.
	for i := 1; i < len(game.Events); i++ {
		assert.Greater(t, game.Events[i].DisplayTimestamp, game.Events[i-1].DisplayTimestamp)
	}
}

func TestSimulateFinalScoreMatchesLastEvent(t *testing.T) {
	game, err := sim.Simulate(simtest.Config("score_server", "score_client", 9))
	require.NoError(t, err)
	require.NotEmpty(t, game.Events)

	last := game.Events[len(game.Events)-1].State
	assert.Equal(t, last.HomeScore, game.HomeScore)
	assert.Equal(t, last.AwayScore, game.AwayScore)
}

func TestSimulateInvalidConfig(t *testing.T) {
	t.Run("missing seeds", func(t *testing.T) {
		cfg := simtest.Config("", "", 1)
		_, err := sim.Simulate(cfg)
		var cfgErr *sim.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("missing kicker", func(t *testing.T) {
		cfg := simtest.Config("server", "client", 1)
		var roster []sim.Player
		for _, p := range cfg.HomeRoster {
			if p.Position != sim.PosK && p.Position != sim.PosP {
				roster = append(roster, p)
			}
		}
		cfg.HomeRoster = roster
		_, err := sim.Simulate(cfg)
		var cfgErr *sim.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Reason, "no K")
	})

	t.Run("roster team mismatch", func(t *testing.T) {
		cfg := simtest.Config("server", "client", 1)
		cfg.AwayRoster[0].TeamID = cfg.HomeTeam.ID
		_, err := sim.Simulate(cfg)
		var cfgErr *sim.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("same team twice", func(t *testing.T) {
		cfg := simtest.Config("server", "client", 1)
		cfg.AwayTeam.ID = cfg.HomeTeam.ID
		_, err := sim.Simulate(cfg)
		var cfgErr *sim.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestSimulateBoxScoreConsistency(t *testing.T) {
	game, err := sim.Simulate(simtest.Config("boxscore_server", "boxscore_client", 17))
	require.NoError(t, err)

	// Recount attempts from the event stream and compare to the box score.
	var attempts, completions int
	for _, ev := range game.Events {
		switch ev.Play.Type {
		case sim.PlayPassComplete:
			attempts++
			completions++
		case sim.PlayPassIncomplete:
			attempts++
		}
	}
	total := game.BoxScore.Home.PassAttempts + game.BoxScore.Away.PassAttempts
	assert.Equal(t, attempts, total)
	assert.Equal(t, completions, game.BoxScore.Home.Completions+game.BoxScore.Away.Completions)

	if game.TotalPlays > 0 {
		assert.NotEmpty(t, game.MVPPlayerID, "a played game selects an MVP")
	}
}

func TestQuarterJSONRoundTrip(t *testing.T) {
	cases := []struct {
		quarter sim.Quarter
		json    string
	}{
		{sim.Quarter(1), "1"},
		{sim.Quarter(4), "4"},
		{sim.QuarterOT, `"OT"`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.quarter)
		require.NoError(t, err)
		assert.Equal(t, tc.json, string(data))

		var back sim.Quarter
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, tc.quarter, back)
	}

	var bad sim.Quarter
	assert.Error(t, json.Unmarshal([]byte("7"), &bad))
	assert.Error(t, json.Unmarshal([]byte(`"2OT"`), &bad))
}
