package amqp

import (
	"encoding/json"
	"time"

	"budgettracker/internal/gateway"
)

// ExpenseCreatedMessage announces a stored expense. It carries the ID so the
// worker can load the full record, plus the amount and month for consumers
// that only need the totals.
type ExpenseCreatedMessage struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Month       int       `json:"month"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewExpenseCreatedMessage(e gateway.StoredExpense) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		ID:          e.ID,
		AmountCents: e.Amount.Cents,
		Month:       int(e.Date.UTC().Month()),
		Timestamp:   time.Now().UTC(),
	}
}

func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
