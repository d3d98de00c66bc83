package core

import "github.com/shopspring/decimal"

// AdviceMessage is the single advisory shown when spend nears the budget.
const AdviceMessage = "Only 10% of your budget is left. Time to cut back on spending!"

// AdviceThresholdPercent is the share of the budget at which advice appears.
const AdviceThresholdPercent = 90

// Advise returns the advisory when actual spend has reached 90% of a
// positive budget. The comparison is inclusive and exact: it is done in
// decimal so that large totals cannot wrap.
func Advise(actual, budget Money) (string, bool) {
	if budget.Cents <= 0 {
		return "", false
	}
	spent := decimal.NewFromInt(actual.Cents).Mul(decimal.NewFromInt(100))
	threshold := decimal.NewFromInt(budget.Cents).Mul(decimal.NewFromInt(AdviceThresholdPercent))
	if spent.GreaterThanOrEqual(threshold) {
		return AdviceMessage, true
	}
	return "", false
}
