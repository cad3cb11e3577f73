package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cleared-dev/propledger/internal/metrics"
	"github.com/cleared-dev/propledger/internal/model"
	"github.com/cleared-dev/propledger/internal/store"
)

type fixture struct {
	svc     *Service
	store   *store.Store
	metrics *metrics.Metrics
	bank    int64
	rent    int64
	repairs int64
}

func newFixture(t *testing.T, enforceUnits bool) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{store: st, metrics: metrics.New()}
	for _, row := range []struct {
		name, typ string
		id        *int64
	}{
		{"Operating Bank", "Bank", &f.bank},
		{"Rent Income", "Income", &f.rent},
		{"Repairs & Maintenance", "Expense", &f.repairs},
	} {
		at, err := st.CreateAccountType(ctx, row.typ)
		require.NoError(t, err)
		a, err := st.CreateAccount(ctx, row.name, at.ID)
		require.NoError(t, err)
		*row.id = a.ID
	}

	f.svc = NewService(st, Options{
		Logger:               zaptest.NewLogger(t),
		Metrics:              f.metrics,
		EnforceUnitOwnership: enforceUnits,
	})
	return f
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) rentDraft(date time.Time, amt string) model.TransactionDraft {
	return model.TransactionDraft{
		Date:        date,
		Description: "Rent March",
		Entries:     []model.Entry{debit(f.bank, amt), credit(f.rent, amt)},
	}
}

func (f *fixture) count(t *testing.T) int {
	t.Helper()
	txns, err := f.store.ListTransactions(context.Background(), store.TransactionFilter{})
	require.NoError(t, err)
	return len(txns)
}

func TestSubmit_RentScenario(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	txn, err := f.svc.Submit(ctx, f.rentDraft(day(2025, 3, 1), "1000.00"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-001", txn.ID)
	assert.Equal(t, "Rent March", txn.Description)
	require.Len(t, txn.Entries, 2)

	got, err := f.svc.Get(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)
	assert.True(t, got.Date.Equal(day(2025, 3, 1)))
	assert.Equal(t, model.DirectionDebit, got.Entries[0].Direction)
	assert.True(t, got.Entries[0].Amount.Equal(d("1000")))
	assert.Equal(t, f.rent, got.Entries[1].AccountID)
}

func TestSubmit_UnbalancedLeavesNoRow(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	in := f.rentDraft(day(2025, 3, 1), "1000.00")
	in.Entries[1] = credit(f.rent, "900.00")

	_, err := f.svc.Submit(ctx, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	verrs, ok := model.AsValidation(err)
	require.True(t, ok)
	assert.True(t, verrs.Has(model.CodeUnbalanced))
	assert.Contains(t, err.Error(), "1000.00")
	assert.Contains(t, err.Error(), "900.00")

	assert.Equal(t, 0, f.count(t))
}

func TestSubmit_NormalizesInput(t *testing.T) {
	f := newFixture(t, false)

	in := f.rentDraft(time.Date(2025, 3, 1, 17, 45, 0, 0, time.UTC), "50")
	in.Description = "  Rent March  "
	txn, err := f.svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Rent March", txn.Description)
	assert.True(t, txn.Date.Equal(day(2025, 3, 1)))
}

func TestSubmit_SequencePerMonth(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	var got []string
	for _, date := range []time.Time{day(2025, 3, 1), day(2025, 3, 15), day(2025, 4, 1), day(2025, 3, 31)} {
		txn, err := f.svc.Submit(ctx, f.rentDraft(date, "10"))
		require.NoError(t, err)
		got = append(got, txn.ID)
	}
	assert.Equal(t, []string{"2025-03-001", "2025-03-002", "2025-04-001", "2025-03-003"}, got)
}

func TestDelete_DoesNotReuseID(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, f.rentDraft(day(2025, 3, 1), "10"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, first.ID))

	_, err = f.svc.Get(ctx, first.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	second, err := f.svc.Submit(ctx, f.rentDraft(day(2025, 3, 1), "10"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-002", second.ID)
}

func TestDelete_NotFound(t *testing.T) {
	f := newFixture(t, false)
	err := f.svc.Delete(context.Background(), "2025-03-001")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdate_ReplacesEntries(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	txn, err := f.svc.Submit(ctx, f.rentDraft(day(2025, 3, 1), "1000"))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, txn.ID, model.TransactionDraft{
		Date:        day(2025, 4, 2),
		Description: "Rent and repair",
		Entries: []model.Entry{
			debit(f.bank, "800"),
			debit(f.repairs, "200"),
			credit(f.rent, "1000"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, txn.ID, updated.ID, "id is stable when the date moves")

	got, err := f.svc.Get(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent and repair", got.Description)
	assert.True(t, got.Date.Equal(day(2025, 4, 2)))
	require.Len(t, got.Entries, 3)
	assert.Equal(t, f.repairs, got.Entries[1].AccountID)
}

func TestUpdate_Rejections(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, "2025-03-009", f.rentDraft(day(2025, 3, 1), "10"))
	assert.ErrorIs(t, err, model.ErrNotFound)

	txn, err := f.svc.Submit(ctx, f.rentDraft(day(2025, 3, 1), "1000"))
	require.NoError(t, err)

	bad := f.rentDraft(day(2025, 3, 1), "1000")
	bad.Entries[1] = credit(f.rent, "900")
	_, err = f.svc.Update(ctx, txn.ID, bad)
	assert.ErrorIs(t, err, model.ErrValidation)

	got, err := f.svc.Get(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, got.Entries[1].Amount.Equal(d("1000")), "rejected update leaves the original")
}

func TestSubmit_RejectsDeletedAccount(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	at, err := f.store.CreateAccountType(ctx, "Liability")
	require.NoError(t, err)
	tmp, err := f.store.CreateAccount(ctx, "Temporary", at.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteAccount(ctx, tmp.ID))

	_, err = f.svc.Submit(ctx, model.TransactionDraft{
		Date:        day(2025, 3, 1),
		Description: "To nowhere",
		Entries:     []model.Entry{debit(f.bank, "5"), credit(tmp.ID, "5")},
	})
	verrs, ok := model.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []model.Code{model.CodeMissingAccount}, verrs.Codes())
}

func TestSubmit_UnitOwnership(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.store.RegisterUnit(ctx, 7, 71))

	in := f.rentDraft(day(2025, 3, 1), "1000")
	in.Entries[0].PropertyID = ptr(7)
	in.Entries[0].UnitID = ptr(71)
	_, err := f.svc.Submit(ctx, in)
	require.NoError(t, err)

	in.Entries[0].PropertyID = ptr(8)
	_, err = f.svc.Submit(ctx, in)
	verrs, ok := model.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []model.Code{model.CodeUnitNotInProperty}, verrs.Codes())
}

func TestList_FilterAndOrder(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	for _, c := range []struct {
		date time.Time
		amt  string
	}{
		{day(2025, 3, 1), "1000"},
		{day(2025, 3, 5), "50"},
		{day(2025, 3, 5), "300"},
		{day(2025, 4, 1), "1000"},
	} {
		_, err := f.svc.Submit(ctx, f.rentDraft(c.date, c.amt))
		require.NoError(t, err)
	}
	_, err := f.svc.Submit(ctx, model.TransactionDraft{
		Date:        day(2025, 3, 20),
		Description: "Plumber",
		Entries:     []model.Entry{debit(f.repairs, "120"), credit(f.bank, "120")},
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-04-001", "2025-03-004", "2025-03-003", "2025-03-002", "2025-03-001"}, txnIDs(all))

	march, err := f.svc.List(ctx, Filter{Start: day(2025, 3, 1), End: day(2025, 3, 5), Order: Order{Key: SortByDate}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-001", "2025-03-002", "2025-03-003"}, txnIDs(march))

	byAmount, err := f.svc.List(ctx, Filter{Order: Order{Key: SortByAmount, Desc: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-04-001", "2025-03-001", "2025-03-003", "2025-03-004", "2025-03-002"}, txnIDs(byAmount))

	repairs, err := f.svc.List(ctx, Filter{AccountID: f.repairs})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-004"}, txnIDs(repairs))

	again, err := f.svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, all, again, "listing is idempotent")
}

func TestSubmit_Concurrent(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			txn, err := f.svc.Submit(ctx, f.rentDraft(day(2025, 3, 1), fmt.Sprintf("%d.00", i+1)))
			ids[i], errs[i] = txn.ID, err
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := range ids {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate id %s", ids[i])
		seen[ids[i]] = true
	}
	assert.Equal(t, n, f.count(t))
}

func TestSubmit_Metrics(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.rentDraft(day(2025, 3, 1), "10"))
	require.NoError(t, err)
	bad := f.rentDraft(day(2025, 3, 1), "10")
	bad.Description = ""
	_, err = f.svc.Submit(ctx, bad)
	require.Error(t, err)

	expected := `
# HELP propledger_transactions_total Ledger write attempts by operation and result.
# TYPE propledger_transactions_total counter
propledger_transactions_total{operation="submit",result="committed"} 1
propledger_transactions_total{operation="submit",result="rejected"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "propledger_transactions_total"))
}

func TestSubmit_StoreUnavailable(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, f.store.Close())

	_, err := f.svc.Submit(context.Background(), f.rentDraft(day(2025, 3, 1), "10"))
	assert.ErrorIs(t, err, model.ErrUnavailable)
}

func txnIDs(txns []model.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.ID
	}
	return out
}

func TestRegisterUnit(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.RegisterUnit(ctx, 7, 71))
	require.NoError(t, f.svc.RegisterUnit(ctx, 8, 71), "re-registering moves the unit")

	in := f.rentDraft(day(2025, 3, 1), "10")
	in.Entries[0].PropertyID = ptr(8)
	in.Entries[0].UnitID = ptr(71)
	_, err := f.svc.Submit(ctx, in)
	require.NoError(t, err)

	err = f.svc.RegisterUnit(ctx, 0, 71)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRegisterUnit_InUse(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.RegisterUnit(ctx, 7, 71))
	in := f.rentDraft(day(2025, 3, 1), "10")
	in.Entries[0].PropertyID = ptr(7)
	in.Entries[0].UnitID = ptr(71)
	txn, err := f.svc.Submit(ctx, in)
	require.NoError(t, err)

	err = f.svc.RegisterUnit(ctx, 8, 71)
	verrs, ok := model.AsValidation(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, []model.Code{model.CodeUnitInUse}, verrs.Codes())
	require.NoError(t, f.svc.RegisterUnit(ctx, 7, 71), "re-registering under the same property is allowed")

	// Once the entries are gone the unit can move.
	require.NoError(t, f.svc.Delete(ctx, txn.ID))
	require.NoError(t, f.svc.RegisterUnit(ctx, 8, 71))
}
