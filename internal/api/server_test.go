package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akinori114514/game/internal/advisor"
	"github.com/akinori114514/game/internal/config"
	"github.com/akinori114514/game/internal/game"
	"github.com/akinori114514/game/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemory()
	svc := game.NewService(mem, logger, 1)
	adv := advisor.WithGenerator(nil, logger, 0)
	srv := httptest.NewServer(New(config.APIConfig{}, logger, svc, mem, adv).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, headers ...string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func createGame(t *testing.T, base string) string {
	t.Helper()
	code, body := do(t, http.MethodPost, base+"/v1/games", "")
	require.Equal(t, http.StatusCreated, code, string(body))
	var out struct {
		ID    string         `json:"id"`
		State game.GameState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.ID)
	assert.Equal(t, game.StartingCash, out.State.Cash)
	return out.ID
}

func TestHealthAndStages(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	code, body = do(t, http.MethodGet, srv.URL+"/v1/turn-stages", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "lead_generation")
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	id := createGame(t, srv.URL)
	base := srv.URL + "/v1/games/" + id

	code, body := do(t, http.MethodPost, base+"/actions", `{"kind":"hire","role":"ENGINEER"}`)
	require.Equal(t, http.StatusOK, code, string(body))
	var st game.GameState
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 1, st.Employees.Len())

	code, body = do(t, http.MethodPost, base+"/turn", "")
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 1, st.Week)

	code, body = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 1, st.Week)

	code, body = do(t, http.MethodGet, srv.URL+"/v1/games", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), id)

	code, _ = do(t, http.MethodGet, base+"/ending", "")
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestActionErrorsMapToStatus(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/v1/games/" + createGame(t, srv.URL)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed", body: `{"kind":`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"kind":"hire","salary":1}`, want: http.StatusBadRequest},
		{name: "unknown kind", body: `{"kind":"teleport"}`, want: http.StatusBadRequest},
		{name: "missing employee", body: `{"kind":"fire","employee_id":"ghost"}`, want: http.StatusBadRequest},
		{name: "locked deal", body: `{"kind":"start_pitch","target":"WHALE"}`, want: http.StatusForbidden},
		{name: "no negotiation", body: `{"kind":"play_card","card_id":"base_1"}`, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		code, body := do(t, http.MethodPost, base+"/actions", tc.body)
		assert.Equal(t, tc.want, code, "%s: %s", tc.name, body)
	}

	code, _ := do(t, http.MethodGet, srv.URL+"/v1/games/missing", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestIdempotencyHeader(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/v1/games/" + createGame(t, srv.URL)

	code, _ := do(t, http.MethodPost, base+"/actions", `{"kind":"interview"}`, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, http.MethodPost, base+"/actions", `{"kind":"interview"}`, "Idempotency-Key", "abc")
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, http.MethodPost, base+"/actions", `{"kind":"interview"}`)
	assert.Equal(t, http.StatusOK, code, "missing header gets a fresh key")
}

func TestNegotiationOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/v1/games/" + createGame(t, srv.URL)

	code, body := do(t, http.MethodGet, base+"/deals", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"base_1"`)

	code, body = do(t, http.MethodPost, base+"/actions", `{"kind":"start_pitch","target":"FRIENDS"}`)
	require.Equal(t, http.StatusOK, code, string(body))

	code, body = do(t, http.MethodPost, base+"/negotiation/cards/base_2", "")
	require.Equal(t, http.StatusOK, code, string(body))
	var out struct {
		Result game.NegotiationResult `json:"result"`
		State  game.GameState         `json:"state"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Result.Won)
	assert.Equal(t, 10_000.0, out.State.KPI.MRR)
}

func TestReplayAndBonuses(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/v1/games/" + createGame(t, srv.URL)

	code, body := do(t, http.MethodPost, base+"/bonuses/golden-lead", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"golden_lead_hit":true`)

	payload, err := json.Marshal(map[string]any{"actions": []game.Action{
		{Kind: game.ActionInterview, IdempotencyKey: "q1"},
		{Kind: game.ActionInterview, IdempotencyKey: "q1"},
		{Kind: game.ActionNextTurn, IdempotencyKey: "q2"},
	}})
	require.NoError(t, err)
	code, body = do(t, http.MethodPost, base+"/sync/replay", string(payload))
	require.Equal(t, http.StatusOK, code, string(body))

	var out struct {
		Results []game.ReplayResult `json:"results"`
		State   game.GameState      `json:"state"`
	}
	require.NoError(t, json.NewDecoder(bytes.NewReader(body)).Decode(&out))
	require.Len(t, out.Results, 3)
	assert.Equal(t, "duplicate", out.Results[1].Status)
	assert.Equal(t, 1, out.State.Week)
}

func TestAdviceOffline(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/v1/games/" + createGame(t, srv.URL)
	code, body := do(t, http.MethodGet, base+"/advice", "")
	require.Equal(t, http.StatusOK, code)
	var adv advisor.Advice
	require.NoError(t, json.Unmarshal(body, &adv))
	assert.True(t, adv.Offline)
	assert.Equal(t, advisor.OfflineMissingKey, adv.Text)
}
