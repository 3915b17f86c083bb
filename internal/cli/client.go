package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akinori114514/game/internal/advisor"
	"github.com/akinori114514/game/internal/game"
	"github.com/akinori114514/game/internal/store"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// IsOffline reports whether err means the server could not be reached at all.
func IsOffline(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return !errors.As(err, &apiErr) && !errors.Is(err, context.Canceled)
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type CreatedGame struct {
	ID    string         `json:"id"`
	State game.GameState `json:"state"`
}

type CardPlay struct {
	Result game.NegotiationResult `json:"result"`
	State  game.GameState         `json:"state"`
}

type DealsView struct {
	Deals []game.DealOffer `json:"deals"`
	Deck  []game.SalesCard `json:"deck"`
}

type ReplayView struct {
	Results []game.ReplayResult `json:"results"`
	State   game.GameState      `json:"state"`
}

func gamePath(id string, parts ...string) string {
	p := "/v1/games/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func (c *Client) CreateGame(ctx context.Context) (CreatedGame, error) {
	var out CreatedGame
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", nil, &out, "")
	return out, err
}

func (c *Client) ListGames(ctx context.Context) ([]store.Summary, error) {
	var out struct {
		Games []store.Summary `json:"games"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games", nil, &out, "")
	return out.Games, err
}

func (c *Client) State(ctx context.Context, id string) (game.GameState, error) {
	var out game.GameState
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id), nil, &out, "")
	return out, err
}

func (c *Client) Do(ctx context.Context, id string, a game.Action) (game.GameState, error) {
	var out game.GameState
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "actions"), a, &out, a.IdempotencyKey)
	return out, err
}

func (c *Client) NextTurn(ctx context.Context, id, idem string) (game.GameState, error) {
	var out game.GameState
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "turn"), nil, &out, idem)
	return out, err
}

func (c *Client) PlayCard(ctx context.Context, id, cardID string) (CardPlay, error) {
	var out CardPlay
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "negotiation", "cards", url.PathEscape(cardID)), nil, &out, "")
	return out, err
}

func (c *Client) Deals(ctx context.Context, id string) (DealsView, error) {
	var out DealsView
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id, "deals"), nil, &out, "")
	return out, err
}

func (c *Client) Financials(ctx context.Context, id string) (game.RevenueBreakdown, error) {
	var out game.RevenueBreakdown
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id, "financials"), nil, &out, "")
	return out, err
}

func (c *Client) Ending(ctx context.Context, id string) (game.Ending, error) {
	var out game.Ending
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id, "ending"), nil, &out, "")
	return out, err
}

func (c *Client) Advice(ctx context.Context, id string) (advisor.Advice, error) {
	var out advisor.Advice
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id, "advice"), nil, &out, "")
	return out, err
}

func (c *Client) GoldenLead(ctx context.Context, id string) (game.TurnBonuses, error) {
	var out game.TurnBonuses
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "bonuses", "golden-lead"), nil, &out, "")
	return out, err
}

func (c *Client) ResolveIncident(ctx context.Context, id string) (game.TurnBonuses, error) {
	var out game.TurnBonuses
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "bonuses", "incident"), nil, &out, "")
	return out, err
}

func (c *Client) Replay(ctx context.Context, id string, actions []game.Action) (ReplayView, error) {
	var out ReplayView
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "sync", "replay"), map[string]any{"actions": actions}, &out, "")
	return out, err
}

func (c *Client) Abandon(ctx context.Context, id string) error {
	return c.jsonRequest(ctx, http.MethodDelete, gamePath(id), nil, nil, "")
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
