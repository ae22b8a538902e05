package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fourthdown/gridsim/internal/engine"
	"github.com/fourthdown/gridsim/internal/sim"
	"github.com/fourthdown/gridsim/internal/store"
)

// handleSimulate runs one game and persists it. When the caller supplies no
// server seed, the service generates one and keeps it sealed: only the hash
// leaves until the game is revealed.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	revealed := req.ServerSeed != ""
	if !revealed {
		seed, err := engine.NewServerSeed()
		if err != nil {
			s.errorHandler.Internal(w, r, err)
			return
		}
		req.ServerSeed = seed
	}
	if req.Nonce == 0 {
		req.Nonce = 1
	}

	cfg := sim.Config{
		HomeTeam:   req.HomeTeam,
		AwayTeam:   req.AwayTeam,
		HomeRoster: req.HomeRoster,
		AwayRoster: req.AwayRoster,
		GameType:   req.GameType,
		ServerSeed: req.ServerSeed,
		ClientSeed: req.ClientSeed,
		Nonce:      req.Nonce,
	}

	game, err := sim.Simulate(cfg)
	if err != nil {
		var cfgErr *sim.ConfigError
		if errors.As(err, &cfgErr) {
			s.errorHandler.Validation(w, r, cfgErr.Field, cfgErr.Reason)
			return
		}
		apiErr := NewError(ErrTypeSimulation, "Simulation failed").
			WithContext("cause", err.Error()).
			WithRequestID(middleware.GetReqID(r.Context())).
			Build()
		s.errorHandler.Handle(w, r, http.StatusInternalServerError, apiErr)
		return
	}

	rec, err := buildGameRecord(cfg, game, revealed)
	if err != nil {
		s.errorHandler.Internal(w, r, err)
		return
	}
	if err := s.db.SaveGame(rec, game.Events); err != nil {
		s.errorHandler.Internal(w, r, err)
		return
	}

	s.logger.Info().
		Str("game_id", rec.ID).
		Str("game_type", rec.GameType).
		Int("total_plays", game.TotalPlays).
		Int("home_score", game.HomeScore).
		Int("away_score", game.AwayScore).
		Msg("game simulated")

	s.writeJSON(w, http.StatusCreated, SimulateResponse{
		GameID:         rec.ID,
		ServerSeedHash: rec.ServerSeedHash,
		ClientSeed:     rec.ClientSeed,
		Nonce:          rec.Nonce,
		HomeScore:      game.HomeScore,
		AwayScore:      game.AwayScore,
		Winner:         game.Winner(),
		TotalPlays:     game.TotalPlays,
		MVPPlayerID:    game.MVPPlayerID,
		EngineVersion:  EngineVersion,
	})
}

func buildGameRecord(cfg sim.Config, game *sim.SimulatedGame, revealed bool) (*store.GameRecord, error) {
	boxScoreJSON, err := json.Marshal(game.BoxScore)
	if err != nil {
		return nil, err
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return &store.GameRecord{
		HomeTeamID:     cfg.HomeTeam.ID,
		AwayTeamID:     cfg.AwayTeam.ID,
		GameType:       string(cfg.GameType),
		ServerSeed:     cfg.ServerSeed,
		ServerSeedHash: engine.HashServerSeed(cfg.ServerSeed),
		ClientSeed:     cfg.ClientSeed,
		Nonce:          cfg.Nonce,
		HomeScore:      game.HomeScore,
		AwayScore:      game.AwayScore,
		TotalPlays:     game.TotalPlays,
		MVPPlayerID:    game.MVPPlayerID,
		BoxScoreJSON:   string(boxScoreJSON),
		ConfigJSON:     string(configJSON),
		Revealed:       revealed,
		EngineVersion:  EngineVersion,
	}, nil
}

// handleReveal exposes the server seed for a finished game so any party can
// verify the play-by-play.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	rec, ok := s.fetchGame(w, r, gameID)
	if !ok {
		return
	}

	if !rec.Revealed {
		if err := s.db.MarkRevealed(gameID); err != nil {
			s.errorHandler.Internal(w, r, err)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, RevealResponse{
		GameID:         rec.ID,
		ServerSeed:     rec.ServerSeed,
		ServerSeedHash: rec.ServerSeedHash,
		ClientSeed:     rec.ClientSeed,
		Nonce:          rec.Nonce,
	})
}

// handleVerify checks the commitment and replays the stored game: the
// revealed seed must hash to the published value, and resimulation must
// reproduce the stored event stream exactly.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	rec, ok := s.fetchGame(w, r, req.GameID)
	if !ok {
		return
	}

	serverSeed := req.ServerSeed
	if serverSeed == "" {
		if !rec.Revealed {
			s.errorHandler.Validation(w, r, "serverSeed", "game is not revealed; supply the server seed")
			return
		}
		serverSeed = rec.ServerSeed
	}

	hashMatches := engine.HashServerSeed(serverSeed) == rec.ServerSeedHash

	var cfg sim.Config
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &cfg); err != nil {
		s.errorHandler.Internal(w, r, err)
		return
	}
	cfg.ServerSeed = serverSeed

	replay, err := sim.Simulate(cfg)
	if err != nil {
		s.errorHandler.Internal(w, r, err)
		return
	}

	replayMatches := hashMatches &&
		replay.HomeScore == rec.HomeScore &&
		replay.AwayScore == rec.AwayScore &&
		replay.TotalPlays == rec.TotalPlays &&
		replay.MVPPlayerID == rec.MVPPlayerID

	if replayMatches {
		stored, err := s.loadAllEvents(req.GameID, rec.TotalPlays)
		if err != nil {
			s.errorHandler.Internal(w, r, err)
			return
		}
		replayMatches = eventStreamsEqual(stored, replay.Events)
	}

	s.writeJSON(w, http.StatusOK, VerifyResponse{
		GameID:          rec.ID,
		HashMatches:     hashMatches,
		ReplayMatches:   replayMatches,
		Valid:           hashMatches && replayMatches,
		ServerSeedHash:  rec.ServerSeedHash,
		HomeScore:       rec.HomeScore,
		AwayScore:       rec.AwayScore,
		TotalPlays:      rec.TotalPlays,
		ReplayHomeScore: replay.HomeScore,
		ReplayAwayScore: replay.AwayScore,
	})
}

func (s *Server) loadAllEvents(gameID string, total int) ([]sim.GameEvent, error) {
	events := make([]sim.GameEvent, 0, total)
	for page := 1; ; page++ {
		chunk, err := s.db.GetEvents(gameID, page, 500)
		if err != nil {
			return nil, err
		}
		events = append(events, chunk.Events...)
		if page >= chunk.TotalPages {
			return events, nil
		}
	}
}

// eventStreamsEqual compares two streams via canonical JSON.
func eventStreamsEqual(a, b []sim.GameEvent) bool {
	if len(a) != len(b) {
		return false
	}
	aJSON, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bJSON, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aJSON, bJSON)
}

func (s *Server) handleSeedHash(w http.ResponseWriter, r *http.Request) {
	var req SeedHashRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, SeedHashResponse{
		ServerSeedHash: engine.HashServerSeed(req.ServerSeed),
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	q := store.GamesQuery{
		GameType: r.URL.Query().Get("gameType"),
		Page:     queryInt(r, "page", 1),
		PerPage:  queryInt(r, "perPage", 20),
	}
	list, err := s.db.ListGames(q)
	if err != nil {
		s.errorHandler.Internal(w, r, err)
		return
	}
	for i := range list.Games {
		sanitizeRecord(&list.Games[i])
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.fetchGame(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	sanitizeRecord(rec)
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, ok := s.fetchGame(w, r, gameID); !ok {
		return
	}
	page, err := s.db.GetEvents(gameID, queryInt(r, "page", 1), queryInt(r, "perPage", 100))
	if err != nil {
		s.errorHandler.Internal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) fetchGame(w http.ResponseWriter, r *http.Request, gameID string) (*store.GameRecord, bool) {
	if gameID == "" {
		s.errorHandler.Validation(w, r, "gameId", "game id is required")
		return nil, false
	}
	rec, err := s.db.GetGame(gameID)
	if errors.Is(err, store.ErrNotFound) {
		apiErr := NewError(ErrTypeNotFound, "Game not found").
			WithContext("game_id", gameID).
			WithRequestID(middleware.GetReqID(r.Context())).
			Build()
		s.errorHandler.Handle(w, r, http.StatusNotFound, apiErr)
		return nil, false
	}
	if err != nil {
		s.errorHandler.Internal(w, r, err)
		return nil, false
	}
	return rec, true
}

// sanitizeRecord strips the server seed from unrevealed games before the
// record leaves the service.
func sanitizeRecord(rec *store.GameRecord) {
	if !rec.Revealed {
		rec.ServerSeed = ""
	}
	rec.ConfigJSON = ""
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
