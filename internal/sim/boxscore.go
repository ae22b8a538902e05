package sim

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TeamStats aggregates one side of the box score. The derived rate fields
// are computed with exact decimal arithmetic so persisted JSON never picks
// up float drift.
type TeamStats struct {
	PassYards           int    `json:"passYards"`
	RushYards           int    `json:"rushYards"`
	TotalYards          int    `json:"totalYards"`
	PassAttempts        int    `json:"passAttempts"`
	Completions         int    `json:"completions"`
	Drops               int    `json:"drops"`
	InterceptionsThrown int    `json:"interceptionsThrown"`
	SacksAllowed        int    `json:"sacksAllowed"`
	FumblesLost         int    `json:"fumblesLost"`
	Touchdowns          int    `json:"touchdowns"`
	FieldGoalsMade      int    `json:"fieldGoalsMade"`
	FieldGoalsAttempted int    `json:"fieldGoalsAttempted"`
	Punts               int    `json:"punts"`
	CompletionPct       string `json:"completionPct"`
	YardsPerAttempt     string `json:"yardsPerAttempt"`
}

// PlayerLine is one player's aggregated stat line.
type PlayerLine struct {
	PlayerID       string `json:"playerId"`
	PassYards      int    `json:"passYards"`
	RushYards      int    `json:"rushYards"`
	ReceivingYards int    `json:"receivingYards"`
	Touchdowns     int    `json:"touchdowns"`
	TurnoversLost  int    `json:"turnoversLost"`
	FieldGoalsMade int    `json:"fieldGoalsMade"`
}

// BoxScore is the per-team and per-player summary of a completed game.
// Players are sorted by ID for a stable serialized order.
type BoxScore struct {
	Home    TeamStats    `json:"home"`
	Away    TeamStats    `json:"away"`
	Players []PlayerLine `json:"players"`
}

// finalizeRates fills the decimal-derived rate strings.
func (ts *TeamStats) finalizeRates() {
	ts.TotalYards = ts.PassYards + ts.RushYards
	if ts.PassAttempts == 0 {
		ts.CompletionPct = "0"
		ts.YardsPerAttempt = "0"
		return
	}
	attempts := decimal.NewFromInt(int64(ts.PassAttempts))
	ts.CompletionPct = decimal.NewFromInt(int64(ts.Completions * 100)).
		Div(attempts).Round(1).String()
	ts.YardsPerAttempt = decimal.NewFromInt(int64(ts.PassYards)).
		Div(attempts).Round(1).String()
}

// MVP ranking weights. The heuristic is a deterministic weighted sum of a
// player's contributions; ties break toward the lexicographically smaller
// player ID so reruns always agree.
const (
	mvpPassYardWeight  = 2
	mvpRushYardWeight  = 5
	mvpRecvYardWeight  = 4
	mvpTouchdownWeight = 120
	mvpFieldGoalWeight = 50
	mvpTurnoverWeight  = -90
)

func mvpScore(line *PlayerLine) int {
	return line.PassYards*mvpPassYardWeight +
		line.RushYards*mvpRushYardWeight +
		line.ReceivingYards*mvpRecvYardWeight +
		line.Touchdowns*mvpTouchdownWeight +
		line.FieldGoalsMade*mvpFieldGoalWeight +
		line.TurnoversLost*mvpTurnoverWeight
}

// selectMVP returns the highest-scoring player ID, or "" for an empty game.
func selectMVP(players []PlayerLine) string {
	best := ""
	bestScore := 0
	for i := range players {
		score := mvpScore(&players[i])
		if best == "" || score > bestScore || (score == bestScore && players[i].PlayerID < best) {
			best = players[i].PlayerID
			bestScore = score
		}
	}
	return best
}

func sortedPlayerLines(byID map[string]*PlayerLine) []PlayerLine {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	lines := make([]PlayerLine, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, *byID[id])
	}
	return lines
}
