package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/propledger/internal/model"
)

const (
	bank int64 = iota + 1
	rentIncome
	repairs
	deposits
	ghost
)

type categories map[int64]model.Category

func (c categories) CategoryOf(id int64) model.Category { return c[id] }

var testCategories = categories{
	bank:       model.CategoryBank,
	rentIncome: model.CategoryIncome,
	repairs:    model.CategoryExpense,
	deposits:   model.CategoryLiability,
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func txn(id string, date [3]int, legs ...model.Entry) model.Transaction {
	return model.Transaction{ID: id, Date: day(date[0], date[1], date[2]), Description: id, Entries: legs}
}

func leg(acct int64, dir model.Direction, amt string) model.Entry {
	return model.Entry{AccountID: acct, Amount: d(amt), Direction: dir}
}

func TestAggregate_MonthlyRent(t *testing.T) {
	txns := []model.Transaction{
		txn("rent", [3]int{2025, 3, 1},
			leg(bank, model.DirectionDebit, "1000"),
			leg(rentIncome, model.DirectionCredit, "1000")),
	}
	got := Aggregate(txns, day(2025, 3, 1), day(2025, 3, 31), Monthly, testCategories)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-03", got[0].Period)
	assert.True(t, got[0].Income.Equal(d("1000")))
	assert.True(t, got[0].Expense.IsZero())
}

func TestAggregate_ZonedBounds(t *testing.T) {
	txns := []model.Transaction{
		txn("first", [3]int{2025, 3, 1}, leg(rentIncome, model.DirectionCredit, "1000")),
		txn("last", [3]int{2025, 3, 31}, leg(repairs, model.DirectionDebit, "40")),
		txn("after", [3]int{2025, 4, 1}, leg(repairs, model.DirectionDebit, "999")),
	}
	est := time.FixedZone("EST", -5*3600)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, est)
	end := time.Date(2025, 3, 31, 9, 30, 0, 0, est)

	got := Aggregate(txns, start, end, Monthly, testCategories)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-03", got[0].Period)
	assert.True(t, got[0].Income.Equal(d("1000")))
	assert.True(t, got[0].Expense.Equal(d("40")))
}

func TestAggregate_RangeAndOrdering(t *testing.T) {
	txns := []model.Transaction{
		txn("apr", [3]int{2025, 4, 1}, leg(repairs, model.DirectionDebit, "80"), leg(bank, model.DirectionCredit, "80")),
		txn("feb", [3]int{2025, 2, 28}, leg(rentIncome, model.DirectionCredit, "999")),
		txn("mar-a", [3]int{2025, 3, 3}, leg(rentIncome, model.DirectionCredit, "1000")),
		txn("mar-b", [3]int{2025, 3, 10}, leg(repairs, model.DirectionDebit, "120.50")),
		txn("mar-c", [3]int{2025, 3, 31}, leg(rentIncome, model.DirectionCredit, "50")),
	}

	got := Aggregate(txns, day(2025, 3, 1), day(2025, 4, 1), Weekly, testCategories)
	var keys []string
	for _, p := range got {
		keys = append(keys, p.Period)
	}
	assert.Equal(t, []string{"2025-03 W1", "2025-03 W2", "2025-03 W5", "2025-04 W1"}, keys)
	assert.True(t, got[1].Expense.Equal(d("120.50")))
	assert.True(t, got[3].Expense.Equal(d("80")))
}

func TestAggregate_CategoryExclusion(t *testing.T) {
	txns := []model.Transaction{
		txn("deposit", [3]int{2025, 3, 2},
			leg(bank, model.DirectionDebit, "1500"),
			leg(deposits, model.DirectionCredit, "1500")),
		txn("orphan", [3]int{2025, 3, 2},
			leg(ghost, model.DirectionDebit, "10")),
	}
	got := Aggregate(txns, day(2025, 3, 1), day(2025, 3, 31), Daily, testCategories)
	require.Len(t, got, 1, "a period with only excluded entries is still reported")
	assert.Equal(t, "2025-03-02", got[0].Period)
	assert.True(t, got[0].Income.IsZero())
	assert.True(t, got[0].Expense.IsZero())
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, day(2025, 3, 1), day(2025, 3, 31), Monthly, testCategories)
	assert.Empty(t, got)
}

// TestAggregate_Reconciles checks that for random ledgers every
// granularity's series sums to the in-range Income and Expense amounts.
func TestAggregate_Reconciles(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	accts := []int64{bank, rentIncome, repairs, deposits, ghost}

	for round := 0; round < 50; round++ {
		var txns []model.Transaction
		for i := 0; i < 40; i++ {
			date := [3]int{2024 + rng.Intn(2), 1 + rng.Intn(12), 1 + rng.Intn(28)}
			var legs []model.Entry
			for j := 0; j < 1+rng.Intn(4); j++ {
				legs = append(legs, model.Entry{
					AccountID: accts[rng.Intn(len(accts))],
					Amount:    decimal.New(int64(1+rng.Intn(500000)), -2),
					Direction: model.DirectionDebit,
				})
			}
			txns = append(txns, txn("t", date, legs...))
		}

		start := day(2024, 1+rng.Intn(12), 1+rng.Intn(28))
		end := start.AddDate(0, rng.Intn(18), rng.Intn(30))

		wantIncome, wantExpense := decimal.Zero, decimal.Zero
		for _, tx := range txns {
			if tx.Date.Before(start) || tx.Date.After(end) {
				continue
			}
			for _, e := range tx.Entries {
				switch testCategories.CategoryOf(e.AccountID) {
				case model.CategoryIncome:
					wantIncome = wantIncome.Add(e.Amount)
				case model.CategoryExpense:
					wantExpense = wantExpense.Add(e.Amount)
				}
			}
		}

		for _, g := range Granularities {
			income, expense := Totals(Aggregate(txns, start, end, g, testCategories))
			assert.True(t, wantIncome.Equal(income), "round %d %s income %s != %s", round, g, income, wantIncome)
			assert.True(t, wantExpense.Equal(expense), "round %d %s expense %s != %s", round, g, expense, wantExpense)
		}
	}
}
