package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fourthdown/gridsim/internal/sim"
)

// SQLiteDB implements DB on SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL for better concurrency between the API readers and save writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. Idempotent.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			home_team_id TEXT NOT NULL,
			away_team_id TEXT NOT NULL,
			game_type TEXT NOT NULL,
			server_seed TEXT NOT NULL,
			server_seed_hash TEXT NOT NULL,
			client_seed TEXT NOT NULL,
			nonce INTEGER NOT NULL,
			home_score INTEGER NOT NULL,
			away_score INTEGER NOT NULL,
			total_plays INTEGER NOT NULL,
			mvp_player_id TEXT NOT NULL,
			box_score TEXT NOT NULL,
			config_json TEXT NOT NULL,
			revealed INTEGER NOT NULL DEFAULT 0,
			engine_version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS game_events (
			game_id TEXT NOT NULL,
			event_number INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			play_result TEXT NOT NULL,
			commentary TEXT NOT NULL,
			game_state TEXT NOT NULL,
			narrative_context TEXT,
			display_timestamp REAL NOT NULL,
			PRIMARY KEY (game_id, event_number),
			FOREIGN KEY (game_id) REFERENCES games(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_created_at ON games(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_games_game_type ON games(game_type, created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveGame writes the game row and its full event stream in one
// transaction. A partially persisted game is never visible.
func (s *SQLiteDB) SaveGame(rec *GameRecord, events []sim.GameEvent) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO games (
		id, home_team_id, away_team_id, game_type,
		server_seed, server_seed_hash, client_seed, nonce,
		home_score, away_score, total_plays, mvp_player_id,
		box_score, config_json, revealed, engine_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.HomeTeamID, rec.AwayTeamID, rec.GameType,
		rec.ServerSeed, rec.ServerSeedHash, rec.ClientSeed, rec.Nonce,
		rec.HomeScore, rec.AwayScore, rec.TotalPlays, rec.MVPPlayerID,
		rec.BoxScoreJSON, rec.ConfigJSON, boolToInt(rec.Revealed), rec.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO game_events (
		game_id, event_number, event_type, play_result,
		commentary, game_state, narrative_context, display_timestamp
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		playJSON, err := json.Marshal(ev.Play)
		if err != nil {
			return fmt.Errorf("failed to marshal play result: %w", err)
		}
		commentaryJSON, err := json.Marshal(ev.Commentary)
		if err != nil {
			return fmt.Errorf("failed to marshal commentary: %w", err)
		}
		stateJSON, err := json.Marshal(ev.State)
		if err != nil {
			return fmt.Errorf("failed to marshal game state: %w", err)
		}
		var narrative interface{}
		if ev.Narrative != nil {
			narrativeJSON, err := json.Marshal(ev.Narrative)
			if err != nil {
				return fmt.Errorf("failed to marshal narrative context: %w", err)
			}
			narrative = string(narrativeJSON)
		}

		if _, err := stmt.Exec(
			rec.ID, ev.EventNumber, ev.EventType, string(playJSON),
			string(commentaryJSON), string(stateJSON), narrative, ev.DisplayTimestamp,
		); err != nil {
			return fmt.Errorf("failed to insert event %d: %w", ev.EventNumber, err)
		}
	}

	return tx.Commit()
}

const gameColumns = `id, home_team_id, away_team_id, game_type,
	server_seed, server_seed_hash, client_seed, nonce,
	home_score, away_score, total_plays, mvp_player_id,
	box_score, config_json, revealed, engine_version, created_at`

// GetGame fetches one game row by id.
func (s *SQLiteDB) GetGame(id string) (*GameRecord, error) {
	row := s.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	rec, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*GameRecord, error) {
	var rec GameRecord
	var revealed int
	err := row.Scan(
		&rec.ID, &rec.HomeTeamID, &rec.AwayTeamID, &rec.GameType,
		&rec.ServerSeed, &rec.ServerSeedHash, &rec.ClientSeed, &rec.Nonce,
		&rec.HomeScore, &rec.AwayScore, &rec.TotalPlays, &rec.MVPPlayerID,
		&rec.BoxScoreJSON, &rec.ConfigJSON, &revealed, &rec.EngineVersion, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Revealed = revealed != 0
	return &rec, nil
}

// ListGames returns a page of games, newest first.
func (s *SQLiteDB) ListGames(q GamesQuery) (*GamesList, error) {
	page, perPage := normalizePage(q.Page, q.PerPage)

	where, args := "", []interface{}{}
	if q.GameType != "" {
		where = " WHERE game_type = ?"
		args = append(args, q.GameType)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM games`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count games: %w", err)
	}

	args = append(args, perPage, (page-1)*perPage)
	rows, err := s.db.Query(`SELECT `+gameColumns+` FROM games`+where+
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := []GameRecord{}
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &GamesList{
		Games:      games,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	}, nil
}

// GetEvents returns one page of a game's event stream in order.
func (s *SQLiteDB) GetEvents(gameID string, page, perPage int) (*EventsPage, error) {
	page, perPage = normalizePage(page, perPage)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM game_events WHERE game_id = ?`, gameID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	rows, err := s.db.Query(`SELECT event_number, event_type, play_result,
		commentary, game_state, narrative_context, display_timestamp
		FROM game_events WHERE game_id = ?
		ORDER BY event_number LIMIT ? OFFSET ?`,
		gameID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []sim.GameEvent{}
	for rows.Next() {
		var ev sim.GameEvent
		var playJSON, commentaryJSON, stateJSON string
		var narrativeJSON sql.NullString
		if err := rows.Scan(&ev.EventNumber, &ev.EventType, &playJSON,
			&commentaryJSON, &stateJSON, &narrativeJSON, &ev.DisplayTimestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(playJSON), &ev.Play); err != nil {
			return nil, fmt.Errorf("failed to unmarshal play result: %w", err)
		}
		if err := json.Unmarshal([]byte(commentaryJSON), &ev.Commentary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal commentary: %w", err)
		}
		if err := json.Unmarshal([]byte(stateJSON), &ev.State); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
		}
		if narrativeJSON.Valid {
			ev.Narrative = &sim.NarrativeContext{}
			if err := json.Unmarshal([]byte(narrativeJSON.String), ev.Narrative); err != nil {
				return nil, fmt.Errorf("failed to unmarshal narrative context: %w", err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &EventsPage{
		Events:     events,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	}, nil
}

// MarkRevealed flips the reveal flag so the API may expose the server seed.
func (s *SQLiteDB) MarkRevealed(id string) error {
	res, err := s.db.Exec(`UPDATE games SET revealed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark game revealed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 500 {
		perPage = 100
	}
	return page, perPage
}

func totalPages(total, perPage int) int {
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
