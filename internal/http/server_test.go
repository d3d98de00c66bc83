package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"
	"budgettracker/internal/gateway/memory"
	applog "budgettracker/internal/log"
	"budgettracker/internal/services"
)

type downGateway struct{}

func (downGateway) CreateExpense(context.Context, core.Expense) (gateway.StoredExpense, error) {
	return gateway.StoredExpense{}, gateway.Wrap("create", gateway.ErrUnavailable)
}

func (downGateway) ListExpenses(context.Context) ([]gateway.StoredExpense, error) {
	return nil, gateway.Wrap("list", gateway.ErrUnavailable)
}

func quietLogger() *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Output = io.Discard
	return applog.New(cfg)
}

func newTestServer(t *testing.T, gw gateway.Gateway, budgets gateway.BudgetStore, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	expenses := services.NewExpenseService(gw, nil, opts.Logger.Logger)
	session := services.NewBudgetService(expenses, budgets, opts.Logger.Logger)
	s := NewServer(":0", expenses, session, opts)
	t.Cleanup(s.limiter.Stop)
	return s
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestCreateExpense(t *testing.T) {
	store := memory.New()
	s := newTestServer(t, store, store, Options{})

	tests := []struct {
		name        string
		contentType string
		body        string
		wantCents   int64
		wantCat     string
	}{
		{"json string amount", "application/json", `{"amount":"150.50","category":"Food","description":"Groceries","date":"2024-03-10"}`, 15050, "Food"},
		{"json number amount", "application/json", `{"amount":12.5,"category":"Taxi"}`, 1250, "Taxi"},
		{"form", "application/x-www-form-urlencoded", url.Values{"amount": {"7,25"}, "category": {"Books"}}.Encode(), 725, "Books"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/expenses", tt.contentType, tt.body)
			if rec.Code != http.StatusCreated {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			got := decode[gateway.StoredExpense](t, rec)
			if got.ID == "" {
				t.Error("expected generated id")
			}
			if got.Amount.Cents != tt.wantCents {
				t.Errorf("amount = %d, want %d", got.Amount.Cents, tt.wantCents)
			}
			if got.Category != tt.wantCat {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCat)
			}
		})
	}

	rec := do(t, s, http.MethodGet, "/api/expenses", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if items := decode[[]gateway.StoredExpense](t, rec); len(items) != len(tests) {
		t.Errorf("listed %d expenses, want %d", len(items), len(tests))
	}
}

func TestCreateExpenseErrors(t *testing.T) {
	store := memory.New()
	s := newTestServer(t, store, store, Options{})

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"invalid amount", http.MethodPost, `{"amount":"abc"}`, http.StatusUnprocessableEntity},
		{"zero amount", http.MethodPost, `{"amount":"0"}`, http.StatusUnprocessableEntity},
		{"negative amount", http.MethodPost, `{"amount":-3}`, http.StatusUnprocessableEntity},
		{"missing amount", http.MethodPost, `{"category":"Food"}`, http.StatusUnprocessableEntity},
		{"malformed json", http.MethodPost, `{"amount":`, http.StatusBadRequest},
		{"wrong method", http.MethodDelete, "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, "/api/expenses", "application/json", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if body := decode[errorResponse](t, rec); body.Error == "" {
				t.Error("expected error message")
			}
		})
	}

	if items, _ := store.ListExpenses(context.Background()); len(items) != 0 {
		t.Errorf("rejected requests stored %d expenses", len(items))
	}
}

func TestMethodNotAllowedSetsAllow(t *testing.T) {
	store := memory.New()
	s := newTestServer(t, store, store, Options{})

	rec := do(t, s, http.MethodPut, "/api/session/budget", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodPost {
		t.Errorf("Allow = %q", got)
	}
}

func TestGatewayFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t, downGateway{}, nil, Options{})

	rec := do(t, s, http.MethodPost, "/api/expenses", "application/json", `{"amount":"5"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("create status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/expenses", "", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("list status = %d", rec.Code)
	}
}

func TestSessionFlow(t *testing.T) {
	store := memory.New()
	s := newTestServer(t, store, store, Options{})

	rec := do(t, s, http.MethodPost, "/api/session/budget", "application/json", `{"budget":"1000","savingsGoal":"200"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("budget status = %d", rec.Code)
	}
	budget := decode[budgetResponse](t, rec)
	if len(budget.Ignored) != 0 {
		t.Errorf("ignored = %v", budget.Ignored)
	}
	if budget.View.Budget.Cents != 100000 || budget.View.SavingsGoal.Cents != 20000 {
		t.Errorf("config = %+v", budget.View)
	}

	rec = do(t, s, http.MethodPost, "/api/session/expenses", "application/json", `{"amount":"850","category":"Rent","date":"2024-03-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense status = %d, body %s", rec.Code, rec.Body.String())
	}
	added := decode[sessionExpenseResponse](t, rec)
	if added.Stored == nil || added.PersistError != "" {
		t.Errorf("expected stored expense, got %+v", added)
	}
	if added.View.Advice != nil {
		t.Errorf("advice at 85%% = %q", *added.View.Advice)
	}

	rec = do(t, s, http.MethodPost, "/api/session/expenses", "application/json", `{"amount":"50","category":"Food","date":"2024-03-02"}`)
	added = decode[sessionExpenseResponse](t, rec)
	if added.View.Advice == nil || *added.View.Advice != core.AdviceMessage {
		t.Errorf("expected advice at 90%%, got %v", added.View.Advice)
	}
	if added.View.Actual.Cents != 90000 {
		t.Errorf("actual = %d", added.View.Actual.Cents)
	}
	if added.View.MonthlyTotals[2].Cents != 90000 {
		t.Errorf("march total = %d", added.View.MonthlyTotals[2].Cents)
	}

	view := decode[core.View](t, do(t, s, http.MethodGet, "/api/session", "", ""))
	if len(view.Expenses) != 2 || view.RemainingForSavings.Cents != 0 || view.Shortfall.Cents != 10000 {
		t.Errorf("session view = %+v", view)
	}

	chart := decode[core.Chart](t, do(t, s, http.MethodGet, "/api/session/chart", "", ""))
	if chart.Labels[2] != "March" || chart.Expenses[2].Cents != 90000 || chart.Budget[0].Cents != 100000 {
		t.Errorf("chart = %+v", chart)
	}

	if items, _ := store.ListExpenses(context.Background()); len(items) != 2 {
		t.Errorf("stored %d expenses, want 2", len(items))
	}
	if cfg, ok, _ := store.LoadBudget(context.Background()); !ok || cfg.Budget.Cents != 100000 {
		t.Errorf("saved budget = %+v, %v", cfg, ok)
	}
}

func TestSessionRejectsInvalidExpense(t *testing.T) {
	store := memory.New()
	s := newTestServer(t, store, store, Options{})

	rec := do(t, s, http.MethodPost, "/api/session/expenses", "application/json", `{"amount":"-1"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if view := decode[core.View](t, do(t, s, http.MethodGet, "/api/session", "", "")); len(view.Expenses) != 0 {
		t.Errorf("invalid expense reached the session: %+v", view.Expenses)
	}
}

func TestSessionBudgetPartial(t *testing.T) {
	store := memory.New()
	s := newTestServer(t, store, store, Options{})

	rec := do(t, s, http.MethodPost, "/api/session/budget", "application/x-www-form-urlencoded", "budget=500&savingsGoal=abc")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	res := decode[budgetResponse](t, rec)
	if len(res.Ignored) != 1 || res.Ignored[0] != services.FieldSavingsGoal {
		t.Errorf("ignored = %v", res.Ignored)
	}
	if res.View.Budget.Cents != 50000 {
		t.Errorf("budget = %d", res.View.Budget.Cents)
	}
}

func TestSessionKeepsExpenseWhenStoreFails(t *testing.T) {
	s := newTestServer(t, downGateway{}, nil, Options{})

	rec := do(t, s, http.MethodPost, "/api/session/expenses", "application/json", `{"amount":"10"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	res := decode[sessionExpenseResponse](t, rec)
	if res.PersistError == "" || res.Stored != nil {
		t.Errorf("expected persist error, got %+v", res)
	}
	if res.View.Actual.Cents != 1000 {
		t.Errorf("actual = %d", res.View.Actual.Cents)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	store := memory.New()
	ready := errors.New("database down")
	s := newTestServer(t, store, store, Options{Ready: func(context.Context) error { return ready }})

	if rec := do(t, s, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz while down = %d", rec.Code)
	}
	ready = nil
	if rec := do(t, s, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	store := memory.New()
	s := newTestServer(t, store, store, Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		if rec := do(t, s, http.MethodGet, "/api/session", "", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, s, http.MethodGet, "/api/session", "", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if rec := do(t, s, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("health checks should not be limited, got %d", rec.Code)
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	store := memory.New()
	s := newTestServer(t, store, store, Options{CORSAllowedOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("X-Request-ID", "req_test")
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req_test" {
		t.Errorf("X-Request-ID = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	store := memory.New()
	s := newTestServer(t, store, store, Options{})
	if rec := do(t, s, http.MethodGet, "/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}
