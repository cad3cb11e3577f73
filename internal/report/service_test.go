package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cleared-dev/propledger/internal/accounts"
	"github.com/cleared-dev/propledger/internal/journal"
	"github.com/cleared-dev/propledger/internal/model"
	"github.com/cleared-dev/propledger/internal/store"
)

type ledger struct {
	reports  *Service
	journal  *journal.Service
	registry *accounts.Service
	ids      map[string]int64
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	registry := accounts.NewService(st, log)
	_, err = registry.Seed(ctx, accounts.DefaultChart())
	require.NoError(t, err)

	all, err := registry.ListAccounts(ctx)
	require.NoError(t, err)
	ids := make(map[string]int64, len(all))
	for _, a := range all {
		ids[a.Name] = a.ID
	}

	jnl := journal.NewService(st, journal.Options{Logger: log})
	return &ledger{
		reports:  NewService(jnl, registry, log),
		journal:  jnl,
		registry: registry,
		ids:      ids,
	}
}

func (l *ledger) submit(t *testing.T, date [3]int, desc string, legs ...model.Entry) model.Transaction {
	t.Helper()
	txn, err := l.journal.Submit(context.Background(), model.TransactionDraft{
		Date:        day(date[0], date[1], date[2]),
		Description: desc,
		Entries:     legs,
	})
	require.NoError(t, err)
	return txn
}

func (l *ledger) leg(name string, dir model.Direction, amt string) model.Entry {
	return model.Entry{AccountID: l.ids[name], Amount: d(amt), Direction: dir}
}

func TestIncomeExpenseSeries_RentReceived(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	txn := l.submit(t, [3]int{2025, 3, 1}, "Rent received",
		l.leg("Operating Bank", model.DirectionDebit, "1000"),
		l.leg("Rent Income", model.DirectionCredit, "1000"))
	assert.NotEmpty(t, txn.ID)

	series, err := l.reports.IncomeExpenseSeries(ctx, day(2025, 3, 1), day(2025, 3, 31), Monthly)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "2025-03", series[0].Period)
	assert.True(t, series[0].Income.Equal(d("1000")))
	assert.True(t, series[0].Expense.IsZero())
}

func TestIncomeExpenseSeries_Rejections(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	_, err := l.reports.IncomeExpenseSeries(ctx, day(2025, 3, 31), day(2025, 3, 1), Monthly)
	verrs, ok := model.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []model.Code{model.CodeInvalidRange}, verrs.Codes())

	_, err = l.reports.IncomeExpenseSeries(ctx, day(2025, 3, 1), day(2025, 3, 31), "hourly")
	verrs, ok = model.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []model.Code{model.CodeInvalidGranularity}, verrs.Codes())
}

func TestGeneralLedger(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	l.submit(t, [3]int{2025, 3, 1}, "Rent received",
		l.leg("Operating Bank", model.DirectionDebit, "1000"),
		l.leg("Rent Income", model.DirectionCredit, "1000"))
	l.submit(t, [3]int{2025, 3, 12}, "Plumber",
		l.leg("Repairs & Maintenance", model.DirectionDebit, "120"),
		l.leg("Operating Bank", model.DirectionCredit, "120"))

	txns, err := l.reports.GeneralLedger(ctx, LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "Plumber", txns[0].Description, "newest first by default")

	again, err := l.reports.GeneralLedger(ctx, LedgerFilter{})
	require.NoError(t, err)
	assert.Equal(t, txns, again)

	rows, err := l.reports.GeneralLedgerRows(ctx, LedgerFilter{Order: journal.Order{Key: journal.SortByDate}})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Operating Bank", rows[0].AccountName)
	assert.Equal(t, model.CategoryBank, rows[0].Category)
	assert.Equal(t, model.CategoryIncome, rows[1].Category)
	assert.Equal(t, model.CategoryExpense, rows[2].Category)

	bankRows, err := l.reports.GeneralLedgerRows(ctx, LedgerFilter{AccountID: l.ids["Operating Bank"]})
	require.NoError(t, err)
	require.Len(t, bankRows, 2)
	for _, r := range bankRows {
		assert.Equal(t, l.ids["Operating Bank"], r.AccountID)
	}
	assert.Equal(t, model.DirectionCredit, bankRows[0].Direction)
}

type failingTxns struct{}

func (failingTxns) List(context.Context, journal.Filter) ([]model.Transaction, error) {
	return nil, errors.New("disk I/O error")
}

type failingChart struct{}

func (failingChart) Snapshot(context.Context) (*accounts.Chart, error) {
	return nil, model.Unavailable("load chart", errors.New("database is locked"))
}

type emptyTxns struct{}

func (emptyTxns) List(context.Context, journal.Filter) ([]model.Transaction, error) {
	return []model.Transaction{{ID: "2025-03-001", Date: day(2025, 3, 1)}}, nil
}

func TestService_Unavailable(t *testing.T) {
	ctx := context.Background()

	svc := NewService(failingTxns{}, failingChart{}, zaptest.NewLogger(t))
	_, err := svc.GeneralLedger(ctx, LedgerFilter{})
	assert.ErrorIs(t, err, model.ErrUnavailable)
	_, err = svc.IncomeExpenseSeries(ctx, day(2025, 3, 1), day(2025, 3, 31), Monthly)
	assert.ErrorIs(t, err, model.ErrUnavailable)

	svc = NewService(emptyTxns{}, failingChart{}, zaptest.NewLogger(t))
	series, err := svc.IncomeExpenseSeries(ctx, day(2025, 3, 1), day(2025, 3, 31), Monthly)
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.Nil(t, series)
	_, err = svc.GeneralLedgerRows(ctx, LedgerFilter{})
	assert.ErrorIs(t, err, model.ErrUnavailable)
}
