package store

import (
	"errors"
	"time"

	"github.com/fourthdown/gridsim/internal/sim"
)

// ErrNotFound is returned when a game id has no row.
var ErrNotFound = errors.New("game not found")

// DB is the persistence interface for finished games and their event
// streams. The engine never touches this; callers persist completed
// SimulatedGames only.
type DB interface {
	Close() error
	Migrate() error
	SaveGame(rec *GameRecord, events []sim.GameEvent) error
	GetGame(id string) (*GameRecord, error)
	ListGames(q GamesQuery) (*GamesList, error)
	GetEvents(gameID string, page, perPage int) (*EventsPage, error)
	MarkRevealed(id string) error
}

// GameRecord is the parent row for one finished game. ServerSeed is stored
// at save time but only exposed upward once Revealed is set; the hash is
// public from the start (the pre-game commitment).
type GameRecord struct {
	ID             string    `json:"id"`
	HomeTeamID     string    `json:"homeTeamId"`
	AwayTeamID     string    `json:"awayTeamId"`
	GameType       string    `json:"gameType"`
	ServerSeed     string    `json:"serverSeed,omitempty"`
	ServerSeedHash string    `json:"serverSeedHash"`
	ClientSeed     string    `json:"clientSeed"`
	Nonce          uint64    `json:"nonce"`
	HomeScore      int       `json:"homeScore"`
	AwayScore      int       `json:"awayScore"`
	TotalPlays     int       `json:"totalPlays"`
	MVPPlayerID    string    `json:"mvpPlayerId"`
	BoxScoreJSON   string    `json:"boxScore"`
	ConfigJSON     string    `json:"-"`
	Revealed       bool      `json:"revealed"`
	EngineVersion  string    `json:"engineVersion"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GamesQuery filters and paginates game listings.
type GamesQuery struct {
	GameType string `json:"gameType,omitempty"`
	Page     int    `json:"page"`
	PerPage  int    `json:"perPage"`
}

// GamesList is a paginated games response.
type GamesList struct {
	Games      []GameRecord `json:"games"`
	TotalCount int          `json:"totalCount"`
	Page       int          `json:"page"`
	PerPage    int          `json:"perPage"`
	TotalPages int          `json:"totalPages"`
}

// EventsPage is a paginated slice of one game's event stream, in event
// number order.
type EventsPage struct {
	Events     []sim.GameEvent `json:"events"`
	TotalCount int             `json:"totalCount"`
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalPages int             `json:"totalPages"`
}
