// Package memory is an in-process stand-in for the spreadsheet mirror, used
// when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgettracker/internal/gateway"
	"budgettracker/internal/sheets"
)

type Sheet struct {
	mu   sync.Mutex
	rows [][]any
}

var _ sheets.RowAppender = (*Sheet)(nil)

func New() *Sheet {
	return &Sheet{}
}

// AppendExpense stores the row and returns a synthetic row reference.
func (s *Sheet) AppendExpense(_ context.Context, e gateway.StoredExpense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, sheets.Row(e))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of every appended row.
func (s *Sheet) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	copy(out, s.rows)
	return out
}
