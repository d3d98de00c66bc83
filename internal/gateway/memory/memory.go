package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"
)

// SeedFile is the optional file NewFromFiles reads initial expenses from.
// Each line is "date;amount;category;description"; blank lines and lines
// starting with # are ignored.
const SeedFile = "seed_expenses.txt"

type Store struct {
	mu     sync.Mutex
	items  []gateway.StoredExpense
	budget *core.BudgetConfig
	now    func() time.Time
}

// Ensure interface conformance
var (
	_ gateway.Gateway     = (*Store)(nil)
	_ gateway.BudgetStore = (*Store)(nil)
)

func New() *Store {
	return &Store{now: time.Now}
}

// NewFromFiles returns a store seeded from base/seed_expenses.txt when present.
func NewFromFiles(base string) *Store {
	s := New()
	now := s.now()
	for _, line := range readLines(filepath.Join(base, SeedFile)) {
		parts := strings.SplitN(line, ";", 4)
		for len(parts) < 4 {
			parts = append(parts, "")
		}
		e, err := core.NormalizeExpense(core.RawExpense{
			Date:        parts[0],
			Amount:      parts[1],
			Category:    parts[2],
			Description: parts[3],
		}, now)
		if err != nil {
			continue
		}
		_, _ = s.CreateExpense(context.Background(), e)
	}
	return s
}

// CreateExpense stores the expense under a generated ID.
func (s *Store) CreateExpense(_ context.Context, e core.Expense) (gateway.StoredExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := gateway.Prepare(e, s.now())
	if err != nil {
		return gateway.StoredExpense{}, gateway.Wrap("create", err)
	}
	s.items = append(s.items, stored)
	return stored, nil
}

// ListExpenses returns a copy of every stored expense, sorted by date.
func (s *Store) ListExpenses(_ context.Context) ([]gateway.StoredExpense, error) {
	s.mu.Lock()
	out := append([]gateway.StoredExpense(nil), s.items...)
	s.mu.Unlock()
	gateway.SortByDate(out)
	return out, nil
}

func (s *Store) SaveBudget(_ context.Context, cfg core.BudgetConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = &cfg
	return nil
}

func (s *Store) LoadBudget(_ context.Context) (core.BudgetConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.budget == nil {
		return core.BudgetConfig{}, false, nil
	}
	return *s.budget, true, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
