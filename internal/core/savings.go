package core

import "github.com/shopspring/decimal"

// RemainingForSavings is budget - actual - goal, floored at zero.
func RemainingForSavings(budget, actual, goal Money) Money {
	raw := budget.Sub(actual).Sub(goal)
	if raw.Cents < 0 {
		return Money{}
	}
	return raw
}

// SavingsShortfall is the amount RemainingForSavings clamps away: how far
// spend plus goal overshoots the budget. Zero when the goal is still reachable.
func SavingsShortfall(budget, actual, goal Money) Money {
	raw := budget.Sub(actual).Sub(goal)
	if raw.Cents >= 0 {
		return Money{}
	}
	return Money{Cents: -raw.Cents}
}

// SpentPercent is the share of the budget already spent, rounded to two
// decimals and capped at 100. It is 0 when no budget is set.
func SpentPercent(actual, budget Money) float64 {
	if budget.Cents <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(actual.Cents).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(budget.Cents), 2)
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return 100
	}
	return pct.InexactFloat64()
}
