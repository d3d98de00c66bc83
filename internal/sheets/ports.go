// Package sheets mirrors stored expenses into a spreadsheet.
package sheets

import (
	"context"

	"budgettracker/internal/gateway"
)

// RowAppender writes one expense as a spreadsheet row and returns a
// reference to the written range.
type RowAppender interface {
	AppendExpense(ctx context.Context, e gateway.StoredExpense) (rowRef string, err error)
}

// Header is the column layout of the mirror sheet.
var Header = []string{"Date", "Category", "Description", "Amount"}

// Row renders an expense in Header order. The amount is a plain decimal so
// that the sheet can parse it as a number.
func Row(e gateway.StoredExpense) []any {
	return []any{
		e.Date.UTC().Format("2006-01-02"),
		e.Category,
		e.Description,
		e.Amount.String(),
	}
}
