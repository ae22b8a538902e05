package api

import (
	"github.com/fourthdown/gridsim/internal/sim"
)

// Error type tags carried in responses and the X-Error-Type header.
const (
	ErrTypeValidation = "validation_error"
	ErrTypeNotFound   = "not_found"
	ErrTypeSimulation = "simulation_error"
	ErrTypeInternal   = "internal_error"
)

// APIError is the structured error body every failure returns.
type APIError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Error implements the error interface.
func (e APIError) Error() string {
	return e.Message
}

// SimulateRequest triggers one simulation. ServerSeed is optional: when
// omitted the service generates one and publishes only its hash until the
// game is revealed. Nonce defaults to 1.
type SimulateRequest struct {
	HomeTeam   sim.Team     `json:"homeTeam" validate:"required"`
	AwayTeam   sim.Team     `json:"awayTeam" validate:"required"`
	HomeRoster []sim.Player `json:"homeRoster" validate:"required,min=1"`
	AwayRoster []sim.Player `json:"awayRoster" validate:"required,min=1"`
	GameType   sim.GameType `json:"gameType" validate:"required"`
	ClientSeed string       `json:"clientSeed" validate:"required"`
	ServerSeed string       `json:"serverSeed,omitempty"`
	Nonce      uint64       `json:"nonce,omitempty"`
}

// SimulateResponse summarizes the finished game. The server seed itself is
// not included; fetch it via the reveal endpoint after the fact.
type SimulateResponse struct {
	GameID         string   `json:"gameId"`
	ServerSeedHash string   `json:"serverSeedHash"`
	ClientSeed     string   `json:"clientSeed"`
	Nonce          uint64   `json:"nonce"`
	HomeScore      int      `json:"homeScore"`
	AwayScore      int      `json:"awayScore"`
	Winner         sim.Side `json:"winner,omitempty"`
	TotalPlays     int      `json:"totalPlays"`
	MVPPlayerID    string   `json:"mvpPlayerId"`
	EngineVersion  string   `json:"engineVersion"`
}

// RevealResponse exposes the server seed after game completion.
type RevealResponse struct {
	GameID         string `json:"gameId"`
	ServerSeed     string `json:"serverSeed"`
	ServerSeedHash string `json:"serverSeedHash"`
	ClientSeed     string `json:"clientSeed"`
	Nonce          uint64 `json:"nonce"`
}

// VerifyRequest re-runs a stored game from a revealed seed. ServerSeed is
// optional when the game is already revealed.
type VerifyRequest struct {
	GameID     string `json:"gameId" validate:"required"`
	ServerSeed string `json:"serverSeed,omitempty"`
}

// VerifyResponse reports whether the revealed seed hashes to the published
// commitment and whether resimulation reproduces the stored record exactly.
type VerifyResponse struct {
	GameID          string `json:"gameId"`
	HashMatches     bool   `json:"hashMatches"`
	ReplayMatches   bool   `json:"replayMatches"`
	Valid           bool   `json:"valid"`
	ServerSeedHash  string `json:"serverSeedHash"`
	HomeScore       int    `json:"homeScore"`
	AwayScore       int    `json:"awayScore"`
	TotalPlays      int    `json:"totalPlays"`
	ReplayHomeScore int    `json:"replayHomeScore"`
	ReplayAwayScore int    `json:"replayAwayScore"`
}

// SeedHashRequest and SeedHashResponse compute a commitment for a seed a
// caller intends to use.
type SeedHashRequest struct {
	ServerSeed string `json:"serverSeed" validate:"required"`
}

type SeedHashResponse struct {
	ServerSeedHash string `json:"serverSeedHash"`
}
