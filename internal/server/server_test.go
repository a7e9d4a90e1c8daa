package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ladder-tracker/internal/api"
	"ladder-tracker/internal/balance"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/database"
	"ladder-tracker/internal/db"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/events"
	"ladder-tracker/internal/rank"
	"ladder-tracker/internal/repository"
	"ladder-tracker/internal/service"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offlineValorant struct{}

func (offlineValorant) GetAccount(context.Context, string, string) (*api.AccountResponse, error) {
	return nil, &api.StatusError{Code: 503}
}

func (offlineValorant) GetMMR(context.Context, string, string) (*api.MMRResponse, error) {
	return nil, &api.StatusError{Code: 503}
}

func (offlineValorant) GetMMRHistory(context.Context, string, string) (*api.MMRHistoryResponse, error) {
	return nil, &api.StatusError{Code: 503}
}

type staticRivals map[string]any

func (r staticRivals) GetPlayer(context.Context, string) (map[string]any, error) {
	return r, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DBPath:      filepath.Join(t.TempDir(), "ladder.db"),
		RankMode:    rank.ModeHighest,
		PrimaryGame: domain.GameValorant,
	}
	sqlDB, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	queries := db.New(sqlDB)
	players := repository.NewPlayerRepository(sqlDB, queries, zerolog.Nop())
	ranks := repository.NewRankRepository(sqlDB, queries, zerolog.Nop())
	matches := repository.NewMatchRepository(sqlDB, queries, zerolog.Nop())

	bus := events.NewChannelBus(zerolog.Nop())
	t.Cleanup(bus.Close)

	ranker := service.NewRanker(players, ranks, bus, cfg, zerolog.Nop())
	srv := NewLadderServer(
		service.NewVerificationService(offlineValorant{}, staticRivals{"rank": "Silver I"}, players, ranker, zerolog.Nop()),
		service.NewMatchService(matches, players, ranker, balance.New(rand.New(rand.NewSource(1))), zerolog.Nop()),
		service.NewLeaderboardService(players, ranks, matches, zerolog.Nop()),
		zerolog.Nop(),
	)
	return srv.Router()
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestManualRankThenProfile(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/players/u1/manual-rank", manualRankRequest{Game: "valorant", Rank: "Gold"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[outcomeJSON](t, w)
	assert.Equal(t, "GRNDS IV", out.Current.Rank)
	assert.True(t, out.DiscordChange)

	w = do(t, router, http.MethodGet, "/api/players/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	prof := decode[profileJSON](t, w)
	assert.Equal(t, "GRNDS IV", prof.Rank)
	assert.Equal(t, 700, prof.Games["valorant"].MMR)

	w = do(t, router, http.MethodGet, "/api/players/u1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode[struct {
		History []historyJSON `json:"history"`
	}](t, w)
	require.Len(t, hist.History, 1)
	assert.Equal(t, "manual_verification", hist.History[0].Reason)
}

func TestVerifyErrors(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/players/u1/verify", verifyRequest{Game: "valorant", Account: "storm#EUW"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, router, http.MethodPost, "/api/players/u1/verify", verifyRequest{Game: "valorant", Account: "storm"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/players/u1/verify", map[string]string{"game": "valorant"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/players/u1/verify", verifyRequest{Game: "rivals", Account: "storm"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "GRNDS III", decode[outcomeJSON](t, w).Current.Rank)
}

func TestReportAndLeaderboard(t *testing.T) {
	router := newTestRouter(t)
	for i, id := range []string{"a1", "a2", "b1", "b2"} {
		ranks := []string{"Diamond", "Gold", "Gold", "Silver"}
		w := do(t, router, http.MethodPost, fmt.Sprintf("/api/players/%s/manual-rank", id), manualRankRequest{Game: "valorant", Rank: ranks[i]})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	report := reportRequest{
		MatchID: "m1",
		Game:    "valorant",
		TeamA:   []string{"a1", "a2"},
		TeamB:   []string{"b1", "b2"},
		Winner:  "A",
		Stats:   map[string]playerStatsJSON{"a1": {Kills: 10, Deaths: 10, Assists: 3}},
	}
	w := do(t, router, http.MethodPost, "/api/matches", report)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decode[matchJSON](t, w)
	assert.Equal(t, "m1", m.MatchID)
	assert.Equal(t, 15, m.Deltas["a1"])

	w = do(t, router, http.MethodPost, "/api/matches", report)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodGet, "/api/matches/m1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode[matchJSON](t, w).Status)

	w = do(t, router, http.MethodGet, "/api/matches/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/leaderboard?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[struct {
		Leaderboard []playerJSON `json:"leaderboard"`
		Total       int          `json:"total"`
	}](t, w)
	require.Equal(t, 2, board.Total)
	assert.Equal(t, "a1", board.Leaderboard[0].ID)

	w = do(t, router, http.MethodGet, "/api/matches", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBalanceQueue(t *testing.T) {
	router := newTestRouter(t)
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		w := do(t, router, http.MethodPost, fmt.Sprintf("/api/players/%s/manual-rank", id), manualRankRequest{Game: "rivals", Rank: "Gold"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, router, http.MethodPost, "/api/queue/balance", queueRequest{Game: "rivals", Players: []string{"p1", "p2", "p3", "p4"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode[balanceJSON](t, w)
	assert.Len(t, out.TeamA.Players, 2)
	assert.Len(t, out.TeamB.Players, 2)
	assert.Equal(t, "pending", out.Match.Status)

	w = do(t, router, http.MethodPost, "/api/queue/balance", queueRequest{Game: "rivals", Players: []string{"p1", "p2"}, Mode: "random"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/queue/balance", queueRequest{Game: "rivals", Players: []string{"p1", "ghost"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", service.ErrInvalidMatch), http.StatusBadRequest},
		{service.ErrInvalidQueue, http.StatusBadRequest},
		{service.ErrUnknownGame, http.StatusBadRequest},
		{service.ErrPlayerNotFound, http.StatusNotFound},
		{service.ErrNotLinked, http.StatusNotFound},
		{fmt.Errorf("match: %w", repository.ErrNotFound), http.StatusNotFound},
		{service.ErrMatchReported, http.StatusConflict},
		{service.ErrRankUnknown, http.StatusUnprocessableEntity},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
