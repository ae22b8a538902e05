package sim

import (
	"github.com/fourthdown/gridsim/internal/engine"
)

// Clock accounting. Every play consumes at least stoppedClockSeconds of game
// time (the snap-to-snap floor), which bounds a regulation quarter at 60
// plays and the whole game well under the orchestrator's iteration guard.
const (
	regulationQuarterSeconds = 900
	overtimeSeconds          = 600

	runningClockSeconds = 34
	stoppedClockSeconds = 15
	hurryUpSeconds      = 19
	timeoutPlaySeconds  = 6
	kneelSeconds        = 42

	kickoffSpot   = 25
	touchbackSpot = 20
	freeKickSpot  = 35
)

// stateMachine owns the GameState for one run: single writer, no sharing.
type stateMachine struct {
	state           GameState
	openingReceiver Side
	completed       bool
}

// newStateMachine performs the opening coin toss and sets up the first
// possession at the receiver's 25.
func newStateMachine(rng *engine.Stream) *stateMachine {
	receiver := SideHome
	if rng.NextFloat() < 0.5 {
		receiver = SideAway
	}
	return &stateMachine{
		state: GameState{
			Quarter:      1,
			Clock:        regulationQuarterSeconds,
			Down:         1,
			YardsToGo:    10,
			BallPosition: kickoffSpot,
			Possession:   receiver,
			HomeTimeouts: 3,
			AwayTimeouts: 3,
		},
		openingReceiver: receiver,
	}
}

// validateState checks every GameState invariant. A violation is fatal.
func validateState(s *GameState) error {
	if s.Quarter != QuarterOT && (s.Quarter < 1 || s.Quarter > 4) {
		return &InvariantError{Invariant: "quarter must be 1-4 or OT", State: *s}
	}
	maxClock := regulationQuarterSeconds
	if s.Quarter.IsOvertime() {
		maxClock = overtimeSeconds
	}
	if s.Clock < 0 || s.Clock > maxClock {
		return &InvariantError{Invariant: "clock outside quarter range", State: *s}
	}
	if s.Down < 1 || s.Down > 4 {
		return &InvariantError{Invariant: "down must be 1-4", State: *s}
	}
	if s.YardsToGo < 1 || s.YardsToGo > 99 {
		return &InvariantError{Invariant: "yardsToGo must be 1-99", State: *s}
	}
	if s.BallPosition < 0 || s.BallPosition > 100 {
		return &InvariantError{Invariant: "ballPosition must be 0-100", State: *s}
	}
	if s.HomeTimeouts < 0 || s.HomeTimeouts > 3 || s.AwayTimeouts < 0 || s.AwayTimeouts > 3 {
		return &InvariantError{Invariant: "timeouts must be 0-3", State: *s}
	}
	if s.HomeScore < 0 || s.AwayScore < 0 {
		return &InvariantError{Invariant: "scores must be non-negative", State: *s}
	}
	return nil
}

// apply folds one resolved play into the state: yardage, possession, score,
// then clock and period transitions. rng is consumed only for the overtime
// coin toss so replays stay aligned.
func (m *stateMachine) apply(play PlayResult, rng *engine.Stream) error {
	if m.completed {
		return &InvariantError{Invariant: "play applied after completion", State: m.state}
	}
	if err := validateState(&m.state); err != nil {
		return err
	}

	m.applyBall(play)
	m.maybeEndOnScore(play)
	if !m.completed {
		m.applyClock(play, rng)
	}

	return validateState(&m.state)
}

func (m *stateMachine) applyBall(play PlayResult) {
	s := &m.state
	offense := s.Possession

	switch {
	case play.Safety:
		// Two points to the defense; the free kick hands it possession
		// around its own 35.
		m.addPoints(offense.Other(), 2)
		m.changePossession(offense.Other(), freeKickSpot)

	case play.Touchdown:
		m.addPoints(offense, play.Points)
		m.changePossession(offense.Other(), kickoffSpot)

	case play.Type == PlayFieldGoal:
		if play.FieldGoalGood {
			m.addPoints(offense, play.Points)
			m.changePossession(offense.Other(), kickoffSpot)
		} else {
			// Miss: opponent takes over at the spot of the kick.
			spot := clampInt(100-s.BallPosition+7, touchbackSpot, 99)
			m.changePossession(offense.Other(), spot)
		}

	case play.Type == PlayPunt:
		landing := s.BallPosition + play.Yards
		spot := 100 - landing
		if spot <= 0 {
			spot = touchbackSpot
		}
		m.changePossession(offense.Other(), clampInt(spot, 1, 99))

	case play.Turnover != nil:
		spot := s.BallPosition + play.Yards
		newSpot := 100 - spot
		if spot >= 100 {
			// Picked off or recovered in the end zone: touchback.
			newSpot = touchbackSpot
		}
		// A return carried past the offense's goal line spots at the 99;
		// the return model does not score defensive touchdowns.
		m.changePossession(offense.Other(), clampInt(newSpot, 1, 99))

	default:
		s.BallPosition += play.Yards
		if play.Yards >= s.YardsToGo {
			s.Down = 1
			s.YardsToGo = clampInt(100-s.BallPosition, 1, 10)
		} else {
			s.Down++
			s.YardsToGo = clampInt(s.YardsToGo-play.Yards, 1, 99)
			if s.Down > 4 {
				// Failed fourth down: possession transfers at the spot.
				m.changePossession(offense.Other(), clampInt(100-s.BallPosition, 1, 99))
			}
		}
	}
}

func (m *stateMachine) addPoints(side Side, points int) {
	if side == SideHome {
		m.state.HomeScore += points
	} else {
		m.state.AwayScore += points
	}
}

// changePossession resets down and distance for the new offense. spot is
// from the new offense's perspective.
func (m *stateMachine) changePossession(side Side, spot int) {
	s := &m.state
	s.Possession = side
	s.BallPosition = spot
	s.Down = 1
	s.YardsToGo = clampInt(100-spot, 1, 10)
}

// clockKeepsRunning reports whether the game clock runs between this play
// and the next snap.
func clockKeepsRunning(play PlayResult) bool {
	if play.Touchdown || play.Safety || play.Turnover != nil {
		return false
	}
	switch play.Type {
	case PlayRun, PlayPassComplete, PlaySack, PlayKneel:
		return true
	default:
		return false
	}
}

func (m *stateMachine) applyClock(play PlayResult, rng *engine.Stream) {
	s := &m.state
	consumed := stoppedClockSeconds

	if clockKeepsRunning(play) {
		switch {
		case play.Type == PlayKneel:
			consumed = kneelSeconds
		case m.trailingSideHurriesUp():
			consumed = hurryUpSeconds
		default:
			consumed = runningClockSeconds
		}

		if side, ok := m.timeoutCaller(); ok {
			m.spendTimeout(side)
			consumed = timeoutPlaySeconds
		}
	}

	s.Clock -= consumed
	if s.Clock <= 0 {
		s.Clock = 0
		m.endQuarter(rng)
	}
}

// trailingSideHurriesUp: the offense is trailing (or tied in a closing
// quarter) and runs the no-huddle to save clock.
func (m *stateMachine) trailingSideHurriesUp() bool {
	s := &m.state
	closing := (s.Quarter == 2 && s.Clock < 120) ||
		((s.Quarter == 4 || s.Quarter.IsOvertime()) && s.Clock < 240)
	return closing && s.ScoreDiff() <= 0
}

// timeoutCaller returns the side that stops the clock, if any: a trailing
// defense late in a half with timeouts in hand.
func (m *stateMachine) timeoutCaller() (Side, bool) {
	s := &m.state
	closing := (s.Quarter == 2 && s.Clock < 120) ||
		((s.Quarter == 4 || s.Quarter.IsOvertime()) && s.Clock < 240)
	if !closing {
		return "", false
	}

	defense := s.Possession.Other()
	defenseTrailing := s.ScoreDiff() >= 0 // offense leads or tied
	if !defenseTrailing {
		return "", false
	}
	if defense == SideHome && s.HomeTimeouts > 0 {
		return SideHome, true
	}
	if defense == SideAway && s.AwayTimeouts > 0 {
		return SideAway, true
	}
	return "", false
}

func (m *stateMachine) spendTimeout(side Side) {
	if side == SideHome {
		m.state.HomeTimeouts = clampInt(m.state.HomeTimeouts-1, 0, 3)
	} else {
		m.state.AwayTimeouts = clampInt(m.state.AwayTimeouts-1, 0, 3)
	}
}

func (m *stateMachine) endQuarter(rng *engine.Stream) {
	s := &m.state
	switch {
	case s.Quarter == 1 || s.Quarter == 3:
		s.Quarter++
		s.Clock = regulationQuarterSeconds

	case s.Quarter == 2:
		// Halftime: timeouts refresh, the opening kicker receives.
		s.Quarter = 3
		s.Clock = regulationQuarterSeconds
		s.HomeTimeouts = 3
		s.AwayTimeouts = 3
		m.changePossession(m.openingReceiver.Other(), kickoffSpot)

	case s.Quarter == 4:
		if s.HomeScore == s.AwayScore {
			// Single overtime period; a fresh coin toss decides possession.
			s.Quarter = QuarterOT
			s.Clock = overtimeSeconds
			receiver := SideHome
			if rng.NextFloat() < 0.5 {
				receiver = SideAway
			}
			m.changePossession(receiver, kickoffSpot)
		} else {
			m.complete()
		}

	default: // overtime expired; ties stand
		m.complete()
	}
}

func (m *stateMachine) complete() {
	m.completed = true
	m.state.Clock = 0
}

// maybeEndOnScore closes the game on an overtime score, sudden-death style.
func (m *stateMachine) maybeEndOnScore(play PlayResult) {
	if !m.state.Quarter.IsOvertime() {
		return
	}
	if play.Touchdown || play.Safety || (play.Type == PlayFieldGoal && play.FieldGoalGood) {
		m.complete()
	}
}
