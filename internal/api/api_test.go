package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthdown/gridsim/internal/api"
	"github.com/fourthdown/gridsim/internal/engine"
	"github.com/fourthdown/gridsim/internal/sim/simtest"
	"github.com/fourthdown/gridsim/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	srv := httptest.NewServer(api.NewServer(db, zerolog.Nop()).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func simulateGame(t *testing.T, srv *httptest.Server, serverSeed string) api.SimulateResponse {
	t.Helper()
	cfg := simtest.Config(serverSeed, "api_client_seed", 3)

	resp := postJSON(t, srv.URL+"/api/v1/simulate", cfg)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, api.EngineVersion, resp.Header.Get("X-Engine-Version"))

	var out api.SimulateResponse
	decode(t, resp, &out)
	return out
}

func TestSimulateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	out := simulateGame(t, srv, "api_server_seed")

	assert.NotEmpty(t, out.GameID)
	assert.Equal(t, engine.HashServerSeed("api_server_seed"), out.ServerSeedHash)
	assert.Equal(t, uint64(3), out.Nonce)
	assert.Greater(t, out.TotalPlays, 0)
	assert.NotEmpty(t, out.MVPPlayerID)
	assert.Equal(t, api.EngineVersion, out.EngineVersion)
}

func TestSimulateIsReproducible(t *testing.T) {
	srv := newTestServer(t)

	first := simulateGame(t, srv, "repro_seed")
	second := simulateGame(t, srv, "repro_seed")

	assert.NotEqual(t, first.GameID, second.GameID)
	assert.Equal(t, first.HomeScore, second.HomeScore)
	assert.Equal(t, first.AwayScore, second.AwayScore)
	assert.Equal(t, first.TotalPlays, second.TotalPlays)
	assert.Equal(t, first.MVPPlayerID, second.MVPPlayerID)
}

func TestSealedSeedLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// No server seed supplied: the service generates one and seals it.
	out := simulateGame(t, srv, "")
	require.Len(t, out.ServerSeedHash, 64)

	resp, err := http.Get(srv.URL + "/api/v1/games/" + out.GameID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec store.GameRecord
	decode(t, resp, &rec)
	assert.Empty(t, rec.ServerSeed, "sealed games never leak the seed")
	assert.Equal(t, out.ServerSeedHash, rec.ServerSeedHash)
	assert.False(t, rec.Revealed)

	resp = postJSON(t, srv.URL+"/api/v1/games/"+out.GameID+"/reveal", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reveal api.RevealResponse
	decode(t, resp, &reveal)
	require.Len(t, reveal.ServerSeed, 64)
	assert.Equal(t, out.ServerSeedHash, engine.HashServerSeed(reveal.ServerSeed),
		"the revealed seed must hash to the pre-game commitment")

	resp, err = http.Get(srv.URL + "/api/v1/games/" + out.GameID)
	require.NoError(t, err)
	var after store.GameRecord
	decode(t, resp, &after)
	assert.Equal(t, reveal.ServerSeed, after.ServerSeed)
	assert.True(t, after.Revealed)
}

func TestVerifyEndpoint(t *testing.T) {
	srv := newTestServer(t)
	out := simulateGame(t, srv, "verify_seed")

	resp := postJSON(t, srv.URL+"/api/v1/verify", api.VerifyRequest{
		GameID:     out.GameID,
		ServerSeed: "verify_seed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var verdict api.VerifyResponse
	decode(t, resp, &verdict)
	assert.True(t, verdict.HashMatches)
	assert.True(t, verdict.ReplayMatches)
	assert.True(t, verdict.Valid)
	assert.Equal(t, out.HomeScore, verdict.ReplayHomeScore)
	assert.Equal(t, out.AwayScore, verdict.ReplayAwayScore)
}

func TestVerifyRejectsWrongSeed(t *testing.T) {
	srv := newTestServer(t)
	out := simulateGame(t, srv, "honest_seed")

	resp := postJSON(t, srv.URL+"/api/v1/verify", api.VerifyRequest{
		GameID:     out.GameID,
		ServerSeed: "forged_seed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var verdict api.VerifyResponse
	decode(t, resp, &verdict)
	assert.False(t, verdict.HashMatches)
	assert.False(t, verdict.Valid)
}

func TestVerifySealedGameNeedsSeed(t *testing.T) {
	srv := newTestServer(t)
	out := simulateGame(t, srv, "")

	resp := postJSON(t, srv.URL+"/api/v1/verify", api.VerifyRequest{GameID: out.GameID})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetEventsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	out := simulateGame(t, srv, "events_seed")

	resp, err := http.Get(srv.URL + "/api/v1/games/" + out.GameID + "/events?page=1&perPage=25")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page store.EventsPage
	decode(t, resp, &page)
	assert.Equal(t, out.TotalPlays, page.TotalCount)
	require.NotEmpty(t, page.Events)
	assert.Len(t, page.Events, 25)
	for i, ev := range page.Events {
		assert.Equal(t, i+1, ev.EventNumber)
		assert.NotEmpty(t, ev.Commentary.Text)
	}
}

func TestListGamesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	simulateGame(t, srv, "list_seed_a")
	simulateGame(t, srv, "list_seed_b")

	resp, err := http.Get(srv.URL + "/api/v1/games?gameType=regular")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list store.GamesList
	decode(t, resp, &list)
	assert.Equal(t, 2, list.TotalCount)
	require.Len(t, list.Games, 2)
	for _, g := range list.Games {
		assert.Empty(t, g.ServerSeed, "unrevealed listings omit the seed")
		assert.NotEmpty(t, g.ServerSeedHash)
	}
}

func TestSeedHashEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/seed/hash", api.SeedHashRequest{ServerSeed: "test"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.SeedHashResponse
	decode(t, resp, &out)
	assert.Equal(t,
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		out.ServerSeedHash)
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing client seed", func(t *testing.T) {
		cfg := simtest.Config("seed", "", 1)
		resp := postJSON(t, srv.URL+"/api/v1/simulate", cfg)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, api.ErrTypeValidation, resp.Header.Get("X-Error-Type"))
	})

	t.Run("unknown field", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/simulate", map[string]string{"bogus": "field"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("same team twice", func(t *testing.T) {
		cfg := simtest.Config("seed", "client", 1)
		cfg.AwayTeam.ID = cfg.HomeTeam.ID
		resp := postJSON(t, srv.URL+"/api/v1/simulate", cfg)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var apiErr api.APIError
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
		assert.Equal(t, api.ErrTypeValidation, apiErr.Type)
	})
}

func TestGameNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/games/no-such-game")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, api.ErrTypeNotFound, resp.Header.Get("X-Error-Type"))
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
