// Package rest implements the persistence gateway against the budget
// server's /api/expenses endpoints.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"
)

const expensesPath = "/api/expenses"

// Client talks to a remote expense store over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ gateway.Gateway = (*Client)(nil)

// NewClient returns a client for baseURL (e.g. http://localhost:8081). A nil
// httpClient gets a pooled client with conservative timeouts.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
		},
		Timeout: 30 * time.Second,
	}
}

// expenseBody is the request shape accepted by POST /api/expenses.
type expenseBody struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) CreateExpense(ctx context.Context, e core.Expense) (gateway.StoredExpense, error) {
	body := expenseBody{
		Amount:      e.Amount.String(),
		Category:    e.Category,
		Description: e.Description,
	}
	if !e.Date.IsZero() {
		body.Date = e.Date.UTC().Format(time.RFC3339Nano)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("create", fmt.Errorf("encode expense: %w", err))
	}

	var stored gateway.StoredExpense
	if err := c.do(ctx, "create", http.MethodPost, bytes.NewReader(payload), http.StatusCreated, &stored); err != nil {
		return gateway.StoredExpense{}, err
	}
	slog.DebugContext(ctx, "Expense stored remotely", "id", stored.ID, "base_url", c.baseURL)
	return stored, nil
}

func (c *Client) ListExpenses(ctx context.Context) ([]gateway.StoredExpense, error) {
	var items []gateway.StoredExpense
	if err := c.do(ctx, "list", http.MethodGet, nil, http.StatusOK, &items); err != nil {
		return nil, err
	}
	gateway.SortByDate(items)
	return items, nil
}

func (c *Client) do(ctx context.Context, op, method string, body io.Reader, wantStatus int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+expensesPath, body)
	if err != nil {
		return gateway.Wrap(op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gateway.Wrap(op, fmt.Errorf("%w: %v", gateway.ErrUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return gateway.Wrap(op, statusError(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return gateway.Wrap(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// statusError turns an unexpected response into an error, keeping the
// server's message when it sent one.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", core.ErrInvalidAmount, msg)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", gateway.ErrUnavailable, resp.StatusCode, msg)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
}
