package sim

import "fmt"

// Pacing of the broadcast replay: each event lands a few seconds after the
// previous one, stretched slightly for exciting plays.
const (
	basePacingSeconds       = 4.0
	excitementPacingSeconds = 0.06
)

// Narrative thresholds.
const (
	momentumRunPoints  = 10
	rushMilestoneYards = 100
	recvMilestoneYards = 100
	passMilestoneYards = 300
)

// eventBuilder is the sole writer of the event stream: numbers start at 1
// and never skip or repeat. It also accumulates the box score and the
// narrative context (scoring runs, stat milestones) as events append.
type eventBuilder struct {
	homeTeam Team
	awayTeam Team

	events    []GameEvent
	broadcast float64

	home    TeamStats
	away    TeamStats
	players map[string]*PlayerLine

	lastScorer Side
	runPoints  int
	milestones map[string]bool
}

func newEventBuilder(homeTeam, awayTeam Team) *eventBuilder {
	return &eventBuilder{
		homeTeam:   homeTeam,
		awayTeam:   awayTeam,
		players:    make(map[string]*PlayerLine),
		milestones: make(map[string]bool),
	}
}

// append records one resolved play as the next event. state is the
// post-play snapshot; offense is the side that ran the play.
func (b *eventBuilder) append(play PlayResult, commentary Commentary, state GameState, offense Side) {
	b.accumulate(play, offense)
	narrative := b.narrative(play, offense)

	b.broadcast += basePacingSeconds + float64(commentary.Excitement)*excitementPacingSeconds

	b.events = append(b.events, GameEvent{
		EventNumber:      len(b.events) + 1,
		EventType:        string(play.Type),
		Play:             play,
		Commentary:       commentary,
		State:            state,
		Narrative:        narrative,
		DisplayTimestamp: b.broadcast,
	})
}

func (b *eventBuilder) teamStats(side Side) *TeamStats {
	if side == SideHome {
		return &b.home
	}
	return &b.away
}

func (b *eventBuilder) player(id string) *PlayerLine {
	if id == "" {
		return &PlayerLine{}
	}
	line, ok := b.players[id]
	if !ok {
		line = &PlayerLine{PlayerID: id}
		b.players[id] = line
	}
	return line
}

func (b *eventBuilder) accumulate(play PlayResult, offense Side) {
	ts := b.teamStats(offense)

	switch play.Type {
	case PlayPassComplete:
		ts.PassAttempts++
		ts.Completions++
		ts.PassYards += play.Yards
		b.player(play.PasserID).PassYards += play.Yards
		b.player(play.ReceiverID).ReceivingYards += play.Yards
		if play.Touchdown {
			ts.Touchdowns++
			b.player(play.ReceiverID).Touchdowns++
		}

	case PlayPassIncomplete:
		ts.PassAttempts++
		if play.Dropped {
			ts.Drops++
		}
		if play.Turnover != nil {
			ts.InterceptionsThrown++
			b.player(play.PasserID).TurnoversLost++
		}

	case PlaySack:
		ts.SacksAllowed++

	case PlayRun:
		if play.Turnover != nil {
			ts.FumblesLost++
			b.player(play.RusherID).TurnoversLost++
			return
		}
		ts.RushYards += play.Yards
		b.player(play.RusherID).RushYards += play.Yards
		if play.Touchdown {
			ts.Touchdowns++
			b.player(play.RusherID).Touchdowns++
		}

	case PlayFieldGoal:
		ts.FieldGoalsAttempted++
		if play.FieldGoalGood {
			ts.FieldGoalsMade++
			b.player(play.KickerID).FieldGoalsMade++
		}

	case PlayPunt:
		ts.Punts++
	}
}

func (b *eventBuilder) abbr(side Side) string {
	if side == SideHome {
		return b.homeTeam.Abbreviation
	}
	return b.awayTeam.Abbreviation
}

// narrative derives optional momentum/milestone context. Purely a function
// of accumulated state, so replays produce identical narratives.
func (b *eventBuilder) narrative(play PlayResult, offense Side) *NarrativeContext {
	var ctx NarrativeContext

	if points := scoredPoints(play); points > 0 {
		scorer := offense
		if play.Safety {
			scorer = offense.Other()
		}
		if scorer == b.lastScorer {
			b.runPoints += points
		} else {
			b.lastScorer = scorer
			b.runPoints = points
		}
		if b.runPoints >= momentumRunPoints {
			ctx.Momentum = fmt.Sprintf("%d unanswered points for %s", b.runPoints, b.abbr(scorer))
		}
	}

	ctx.Milestone = b.milestone(play)

	if ctx.Momentum == "" && ctx.Milestone == "" {
		return nil
	}
	return &ctx
}

func scoredPoints(play PlayResult) int {
	if play.Touchdown || play.Safety || (play.Type == PlayFieldGoal && play.FieldGoalGood) {
		return play.Points
	}
	return 0
}

// milestone emits each stat milestone once, on the play that crosses it.
func (b *eventBuilder) milestone(play PlayResult) string {
	check := func(key, text string, reached bool) string {
		if !reached || b.milestones[key] {
			return ""
		}
		b.milestones[key] = true
		return text
	}

	if play.RusherID != "" {
		line := b.player(play.RusherID)
		if note := check("rush:"+play.RusherID,
			fmt.Sprintf("%s crosses %d rushing yards", play.RusherID, rushMilestoneYards),
			line.RushYards >= rushMilestoneYards); note != "" {
			return note
		}
	}
	if play.ReceiverID != "" {
		line := b.player(play.ReceiverID)
		if note := check("recv:"+play.ReceiverID,
			fmt.Sprintf("%s crosses %d receiving yards", play.ReceiverID, recvMilestoneYards),
			line.ReceivingYards >= recvMilestoneYards); note != "" {
			return note
		}
	}
	if play.PasserID != "" {
		line := b.player(play.PasserID)
		if note := check("pass:"+play.PasserID,
			fmt.Sprintf("%s crosses %d passing yards", play.PasserID, passMilestoneYards),
			line.PassYards >= passMilestoneYards); note != "" {
			return note
		}
	}
	return ""
}

// finish closes the stream and materializes the finished game. No events
// may append afterwards; the returned value owns the slice.
func (b *eventBuilder) finish(final GameState) *SimulatedGame {
	b.home.finalizeRates()
	b.away.finalizeRates()

	players := sortedPlayerLines(b.players)

	return &SimulatedGame{
		Events:      b.events,
		HomeScore:   final.HomeScore,
		AwayScore:   final.AwayScore,
		TotalPlays:  len(b.events),
		MVPPlayerID: selectMVP(players),
		BoxScore: BoxScore{
			Home:    b.home,
			Away:    b.away,
			Players: players,
		},
	}
}
