package core

import "time"

// MonthsPerYear is the number of buckets produced by MonthlyTotals.
const MonthsPerYear = 12

// MonthlyTotals sums expense amounts by calendar month of their stored date.
// Index 0 is January. Years are not distinguished: every January lands in
// bucket 0. Empty input yields twelve zeros.
func MonthlyTotals(expenses []Expense) [MonthsPerYear]Money {
	var totals [MonthsPerYear]Money
	for _, e := range expenses {
		i := monthIndex(e.Date)
		totals[i] = totals[i].Add(e.Amount)
	}
	return totals
}

// Total is the flat sum of all amounts.
func Total(expenses []Expense) Money {
	var sum Money
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

func monthIndex(t time.Time) int {
	return int(t.Month()) - 1
}
