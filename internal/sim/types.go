package sim

import (
	"encoding/json"
	"fmt"
)

// GameType identifies the stakes of a simulated game.
type GameType string

const (
	GameTypeRegular                GameType = "regular"
	GameTypeWildCard               GameType = "wild_card"
	GameTypeDivisional             GameType = "divisional"
	GameTypeConferenceChampionship GameType = "conference_championship"
	GameTypeSuperBowl              GameType = "super_bowl"
)

// PlayStyle is a team's play-calling tendency.
type PlayStyle string

const (
	StyleBalanced     PlayStyle = "balanced"
	StylePassHeavy    PlayStyle = "pass_heavy"
	StyleRunHeavy     PlayStyle = "run_heavy"
	StyleAggressive   PlayStyle = "aggressive"
	StyleConservative PlayStyle = "conservative"
)

// Position is a player's roster position.
type Position string

const (
	PosQB Position = "QB"
	PosRB Position = "RB"
	PosWR Position = "WR"
	PosTE Position = "TE"
	PosOL Position = "OL"
	PosDL Position = "DL"
	PosLB Position = "LB"
	PosCB Position = "CB"
	PosS  Position = "S"
	PosK  Position = "K"
	PosP  Position = "P"
)

// Side identifies one of the two participants.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// Team holds the immutable team-level inputs to a simulation.
type Team struct {
	ID           string    `json:"id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Abbreviation string    `json:"abbreviation" validate:"required,max=4"`
	Offense      int       `json:"offense" validate:"min=0,max=100"`
	Defense      int       `json:"defense" validate:"min=0,max=100"`
	SpecialTeams int       `json:"specialTeams" validate:"min=0,max=100"`
	Style        PlayStyle `json:"style" validate:"required,oneof=balanced pass_heavy run_heavy aggressive conservative"`
}

// Player holds the immutable per-player inputs. InjuryProne is modeled but
// unused by current behavior; it is reserved for future in-game injuries.
type Player struct {
	ID          string   `json:"id" validate:"required"`
	TeamID      string   `json:"teamId" validate:"required"`
	Position    Position `json:"position" validate:"required,oneof=QB RB WR TE OL DL LB CB S K P"`
	Rating      int      `json:"rating" validate:"min=0,max=100"`
	Speed       int      `json:"speed" validate:"min=0,max=100"`
	Strength    int      `json:"strength" validate:"min=0,max=100"`
	Awareness   int      `json:"awareness" validate:"min=0,max=100"`
	Clutch      int      `json:"clutch" validate:"min=0,max=100"`
	InjuryProne bool     `json:"injuryProne"`
}

// Config is the complete, immutable input to one simulation run. The same
// config always yields a bit-identical SimulatedGame.
type Config struct {
	HomeTeam   Team     `json:"homeTeam" validate:"required"`
	AwayTeam   Team     `json:"awayTeam" validate:"required"`
	HomeRoster []Player `json:"homeRoster" validate:"required,min=1,dive"`
	AwayRoster []Player `json:"awayRoster" validate:"required,min=1,dive"`
	GameType   GameType `json:"gameType" validate:"required,oneof=regular wild_card divisional conference_championship super_bowl"`
	ServerSeed string   `json:"serverSeed" validate:"required"`
	ClientSeed string   `json:"clientSeed" validate:"required"`
	Nonce      uint64   `json:"nonce"`
}

// Quarter numbers regulation periods 1-4; overtime is a distinct value that
// serializes as "OT" to match the external contract.
type Quarter int

const QuarterOT Quarter = 5

// IsOvertime reports whether the quarter is the overtime period.
func (q Quarter) IsOvertime() bool { return q == QuarterOT }

func (q Quarter) String() string {
	if q == QuarterOT {
		return "OT"
	}
	return fmt.Sprintf("%d", int(q))
}

// MarshalJSON emits 1-4 as numbers and overtime as "OT".
func (q Quarter) MarshalJSON() ([]byte, error) {
	if q == QuarterOT {
		return json.Marshal("OT")
	}
	return json.Marshal(int(q))
}

// UnmarshalJSON accepts a number 1-4 or the string "OT".
func (q *Quarter) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "OT" {
			return fmt.Errorf("invalid quarter %q", s)
		}
		*q = QuarterOT
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n < 1 || n > 4 {
		return fmt.Errorf("invalid quarter %d", n)
	}
	*q = Quarter(n)
	return nil
}

// GameState is the mutable simulation state, owned exclusively by the state
// machine for the duration of one run. Ball position is a normalized field
// coordinate from the offense's perspective: 0 is its own goal line, 100 the
// opponent's.
type GameState struct {
	Quarter      Quarter `json:"quarter"`
	Clock        int     `json:"clock"`
	Down         int     `json:"down"`
	YardsToGo    int     `json:"yardsToGo"`
	BallPosition int     `json:"ballPosition"`
	Possession   Side    `json:"possession"`
	HomeScore    int     `json:"homeScore"`
	AwayScore    int     `json:"awayScore"`
	HomeTimeouts int     `json:"homeTimeouts"`
	AwayTimeouts int     `json:"awayTimeouts"`
}

// ScoreDiff returns offense score minus defense score for the side currently
// in possession.
func (gs *GameState) ScoreDiff() int {
	if gs.Possession == SideHome {
		return gs.HomeScore - gs.AwayScore
	}
	return gs.AwayScore - gs.HomeScore
}

// PlayType tags the resolved outcome category of a play.
type PlayType string

const (
	PlayRun            PlayType = "run"
	PlayPassComplete   PlayType = "pass_complete"
	PlayPassIncomplete PlayType = "pass_incomplete"
	PlaySack           PlayType = "sack"
	PlayPunt           PlayType = "punt"
	PlayFieldGoal      PlayType = "field_goal"
	PlayKneel          PlayType = "kneel"
)

// TurnoverType distinguishes interceptions from fumbles. Turnovers on downs
// are a possession change, not a Turnover record.
type TurnoverType string

const (
	TurnoverInterception TurnoverType = "interception"
	TurnoverFumble       TurnoverType = "fumble"
)

// Turnover records a change of possession caused by the play itself.
type Turnover struct {
	Type        TurnoverType `json:"type"`
	RecoveredBy Side         `json:"recoveredBy"`
}

// PlayResult is the immutable outcome of one resolved play. Yards are from
// the offense's perspective; for punts they are net punt distance.
type PlayResult struct {
	Type          PlayType  `json:"type"`
	Yards         int       `json:"yards"`
	Dropped       bool      `json:"dropped,omitempty"`
	Turnover      *Turnover `json:"turnover,omitempty"`
	Touchdown     bool      `json:"touchdown,omitempty"`
	Safety        bool      `json:"safety,omitempty"`
	FieldGoalGood bool      `json:"fieldGoalGood,omitempty"`
	Points        int       `json:"points,omitempty"`
	PasserID      string    `json:"passerId,omitempty"`
	RusherID      string    `json:"rusherId,omitempty"`
	ReceiverID    string    `json:"receiverId,omitempty"`
	KickerID      string    `json:"kickerId,omitempty"`
}

// Commentary is the broadcast text for one play plus a 0-100 excitement
// score used downstream purely for presentation gating.
type Commentary struct {
	Text       string `json:"text"`
	Excitement int    `json:"excitement"`
}

// NarrativeContext carries optional momentum/milestone notes on an event.
type NarrativeContext struct {
	Momentum  string `json:"momentum,omitempty"`
	Milestone string `json:"milestone,omitempty"`
}

// GameEvent is one immutable entry in the ordered broadcast stream.
// EventNumber starts at 1 with no gaps. State is the post-play snapshot.
// DisplayTimestamp is seconds from broadcast start, used for client pacing.
type GameEvent struct {
	EventNumber      int               `json:"eventNumber"`
	EventType        string            `json:"eventType"`
	Play             PlayResult        `json:"playResult"`
	Commentary       Commentary        `json:"commentary"`
	State            GameState         `json:"gameState"`
	Narrative        *NarrativeContext `json:"narrativeContext,omitempty"`
	DisplayTimestamp float64           `json:"displayTimestamp"`
}

// SimulatedGame is the finished, fully materialized output of one run.
type SimulatedGame struct {
	Events      []GameEvent `json:"events"`
	HomeScore   int         `json:"homeScore"`
	AwayScore   int         `json:"awayScore"`
	TotalPlays  int         `json:"totalPlays"`
	MVPPlayerID string      `json:"mvpPlayerId"`
	BoxScore    BoxScore    `json:"boxScore"`
}

// Winner returns the winning side, or "" on a tie.
func (g *SimulatedGame) Winner() Side {
	switch {
	case g.HomeScore > g.AwayScore:
		return SideHome
	case g.AwayScore > g.HomeScore:
		return SideAway
	default:
		return ""
	}
}
