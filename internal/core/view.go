package core

// View is the derived state handed to presentation layers.
type View struct {
	Expenses            []Expense            `json:"expenses"`
	Budget              Money                `json:"budget"`
	SavingsGoal         Money                `json:"savingsGoal"`
	Actual              Money                `json:"actual"`
	Advice              *string              `json:"advice"`
	MonthlyTotals       [MonthsPerYear]Money `json:"monthlyTotals"`
	RemainingForSavings Money                `json:"remainingForSavings"`
	Shortfall           Money                `json:"shortfall"`
	SpentPercent        float64              `json:"spentPercent"`
	LastExpense         *Expense             `json:"lastExpense,omitempty"`
	Chart               Chart                `json:"chart"`
}

// MonthLabels names the chart buckets in MonthlyTotals order.
var MonthLabels = [MonthsPerYear]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Chart is a bar chart payload: monthly spend against a flat budget line.
type Chart struct {
	Labels   [MonthsPerYear]string `json:"labels"`
	Expenses [MonthsPerYear]Money  `json:"expenses"`
	Budget   [MonthsPerYear]Money  `json:"budget"`
}

// BuildChart turns a view into chart series.
func BuildChart(v View) Chart {
	c := Chart{Labels: MonthLabels, Expenses: v.MonthlyTotals}
	for i := range c.Budget {
		c.Budget[i] = v.Budget
	}
	return c
}
