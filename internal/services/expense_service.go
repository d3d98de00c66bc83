// Package services coordinates the tracker, the persistence gateway and the
// event publisher for the HTTP server.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway"
	applog "budgettracker/internal/log"
)

// EventPublisher announces stored expenses. Publishing is best effort.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, e gateway.StoredExpense) error
}

// ExpenseService stores expenses through the gateway and publishes an event
// for each one.
type ExpenseService struct {
	gateway   gateway.Gateway
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewExpenseService wires a gateway and an optional publisher (nil disables
// events).
func NewExpenseService(gw gateway.Gateway, publisher EventPublisher, logger *slog.Logger) *ExpenseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseService{
		gateway:   gw,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates raw and stores it. Validation failures are returned
// unwrapped; store failures come back as *gateway.Error.
func (s *ExpenseService) Create(ctx context.Context, raw core.RawExpense) (gateway.StoredExpense, error) {
	e, err := core.NormalizeExpense(raw, s.now())
	if err != nil {
		return gateway.StoredExpense{}, err
	}
	return s.Store(ctx, e)
}

// Store persists an already normalized expense and publishes it.
func (s *ExpenseService) Store(ctx context.Context, e core.Expense) (gateway.StoredExpense, error) {
	stored, err := s.gateway.CreateExpense(ctx, e)
	if err != nil {
		return gateway.StoredExpense{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseCreated(ctx, stored); err != nil {
			// The record is stored; the worker sweep will mirror it later.
			s.logger.ErrorContext(ctx, "Failed to publish expense created message",
				applog.NewFields().WithExpense(stored.ID, stored.Amount.Cents, stored.Category, int(stored.Date.Month())).
					WithOperation(applog.OpPublish).WithError(err).ToSlice()...)
		}
	}
	return stored, nil
}

func (s *ExpenseService) List(ctx context.Context) ([]gateway.StoredExpense, error) {
	return s.gateway.ListExpenses(ctx)
}

// Close releases the gateway and publisher when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error
	if c, ok := s.gateway.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("gateway: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
