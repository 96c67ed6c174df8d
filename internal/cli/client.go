package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cashflow/internal/domain"
	"cashflow/internal/game"
	"cashflow/internal/retirement"

	"github.com/google/uuid"
)

// APIError is a non-2xx answer from the game server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// Client talks to a cashflow-api server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Jobs(ctx context.Context) ([]domain.Job, error) {
	var out struct {
		Jobs []domain.Job `json:"jobs"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/jobs", nil, &out, "")
	return out.Jobs, err
}

func (c *Client) Start(ctx context.Context, in StartInput) (game.Snapshot, error) {
	var out struct {
		GameState game.Snapshot `json:"gameState"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/game", map[string]any{
		"job":           in.Job,
		"age":           in.Age,
		"startingMoney": in.StartingMoney,
		"name":          in.Name,
	}, &out, uuid.NewString())
	return out.GameState, err
}

func (c *Client) State(ctx context.Context) (game.Snapshot, error) {
	var out struct {
		GameState game.Snapshot `json:"gameState"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/state", nil, &out, "")
	return out.GameState, err
}

func (c *Client) NextTurn(ctx context.Context) (game.TurnHistoryEntry, error) {
	var out struct {
		Turn game.TurnHistoryEntry `json:"turn"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/turn", nil, &out, uuid.NewString())
	return out.Turn, err
}

func (c *Client) Buy(ctx context.Context, index int, financed bool) (domain.Investment, error) {
	path := "/v1/investments/buy"
	if financed {
		path = "/v1/investments/loan"
	}
	var out struct {
		Investment domain.Investment `json:"investment"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, path, map[string]any{"index": index}, &out, uuid.NewString())
	return out.Investment, err
}

func (c *Client) Sell(ctx context.Context, index int) error {
	return c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/investments/%d/sell", index), nil, nil, uuid.NewString())
}

func (c *Client) Investments(ctx context.Context) ([]game.InvestmentDetail, error) {
	var out struct {
		Investments []game.InvestmentDetail `json:"investments"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/investments", nil, &out, "")
	return out.Investments, err
}

func (c *Client) Market(ctx context.Context) (game.MarketView, error) {
	var out game.MarketView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market", nil, &out, "")
	return out, err
}

func (c *Client) Retirement(ctx context.Context, action RetirementAction, account retirement.AccountType, amount float64) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/retirement/"+string(action), map[string]any{
		"account": account,
		"amount":  amount,
	}, nil, uuid.NewString())
}

func (c *Client) Close() error { return nil }

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
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// IsAPIError reports whether err came back from the server rather than the
// network.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
