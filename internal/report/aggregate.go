package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/propledger/internal/model"
)

// Period is one bucket of an income/expense series.
type Period struct {
	Period  string          `json:"period"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryResolver maps an account to its category.
type CategoryResolver interface {
	CategoryOf(accountID int64) model.Category
}

// Aggregate buckets the entries of txns dated within [start, end] by
// period and sums Income and Expense amounts. Entries on other accounts
// are ignored, but the period they fall in is still reported. Zero
// bounds are open. Bounds and transaction dates compare as calendar
// dates in their own zones. The result is sorted by period.
func Aggregate(txns []model.Transaction, start, end time.Time, g Granularity, resolver CategoryResolver) []Period {
	start, end = calendarDate(start), calendarDate(end)
	buckets := make(map[string]*Period)
	for _, txn := range txns {
		date := calendarDate(txn.Date)
		if !start.IsZero() && date.Before(start) {
			continue
		}
		if !end.IsZero() && date.After(end) {
			continue
		}

		key := PeriodKey(date, g)
		p, ok := buckets[key]
		if !ok {
			p = &Period{Period: key, Income: decimal.Zero, Expense: decimal.Zero}
			buckets[key] = p
		}

		for _, e := range txn.Entries {
			switch resolver.CategoryOf(e.AccountID) {
			case model.CategoryIncome:
				p.Income = p.Income.Add(e.Amount)
			case model.CategoryExpense:
				p.Expense = p.Expense.Add(e.Amount)
			}
		}
	}

	out := make([]Period, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// calendarDate drops the time of day and zone, keeping the zero time zero.
func calendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Totals sums the income and expense of a series.
func Totals(series []Period) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, p := range series {
		income = income.Add(p.Income)
		expense = expense.Add(p.Expense)
	}
	return income, expense
}
