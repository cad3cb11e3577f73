package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/propledger/internal/accounts"
	"github.com/cleared-dev/propledger/internal/journal"
	"github.com/cleared-dev/propledger/internal/model"
)

// TransactionSource lists committed transactions.
type TransactionSource interface {
	List(ctx context.Context, f journal.Filter) ([]model.Transaction, error)
}

// ChartSource provides a consistent view of the chart of accounts.
type ChartSource interface {
	Snapshot(ctx context.Context) (*accounts.Chart, error)
}

// Service answers general ledger and income/expense queries. Storage and
// registry failures come back as model.ErrUnavailable, never as an empty
// result.
type Service struct {
	txns  TransactionSource
	chart ChartSource
	log   *zap.Logger
}

// NewService creates a report Service.
func NewService(txns TransactionSource, chart ChartSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{txns: txns, chart: chart, log: log.Named("report")}
}

// LedgerFilter selects general ledger transactions. Zero dates are open.
type LedgerFilter struct {
	Start     time.Time
	End       time.Time
	AccountID int64
	Order     journal.Order
}

// LedgerRow is one entry of the general ledger with its transaction
// header and resolved account.
type LedgerRow struct {
	TransactionID string
	Date          time.Time
	Description   string
	AccountID     int64
	AccountName   string
	Category      model.Category
	Direction     model.Direction
	Amount        decimal.Decimal
	PropertyID    *int64
	UnitID        *int64
}

// GeneralLedger returns the transactions matching f in f.Order.
func (s *Service) GeneralLedger(ctx context.Context, f LedgerFilter) ([]model.Transaction, error) {
	if err := checkRange(f.Start, f.End); err != nil {
		return nil, err
	}
	txns, err := s.txns.List(ctx, journal.Filter{
		Start:     f.Start,
		End:       f.End,
		AccountID: f.AccountID,
		Order:     f.Order,
	})
	if err != nil {
		return nil, s.unavailable("general ledger", err)
	}
	return txns, nil
}

// GeneralLedgerRows flattens GeneralLedger to one row per entry. When
// f.AccountID is set only that account's entries are returned.
func (s *Service) GeneralLedgerRows(ctx context.Context, f LedgerFilter) ([]LedgerRow, error) {
	txns, err := s.GeneralLedger(ctx, f)
	if err != nil {
		return nil, err
	}
	chart, err := s.chart.Snapshot(ctx)
	if err != nil {
		return nil, s.unavailable("general ledger", err)
	}

	var rows []LedgerRow
	for _, txn := range txns {
		for _, e := range txn.Entries {
			if f.AccountID != 0 && e.AccountID != f.AccountID {
				continue
			}
			acct, _ := chart.Get(e.AccountID)
			rows = append(rows, LedgerRow{
				TransactionID: txn.ID,
				Date:          txn.Date,
				Description:   txn.Description,
				AccountID:     e.AccountID,
				AccountName:   acct.Name,
				Category:      chart.CategoryOf(e.AccountID),
				Direction:     e.Direction,
				Amount:        e.Amount,
				PropertyID:    e.PropertyID,
				UnitID:        e.UnitID,
			})
		}
	}
	return rows, nil
}

// IncomeExpenseSeries buckets income and expense in [start, end] by g.
func (s *Service) IncomeExpenseSeries(ctx context.Context, start, end time.Time, g Granularity) ([]Period, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	txns, err := s.txns.List(ctx, journal.Filter{Start: start, End: end, Order: journal.Order{Key: journal.SortByDate}})
	if err != nil {
		return nil, s.unavailable("income/expense series", err)
	}
	chart, err := s.chart.Snapshot(ctx)
	if err != nil {
		return nil, s.unavailable("income/expense series", err)
	}

	series := Aggregate(txns, start, end, g, chart)
	s.log.Debug("income/expense series",
		zap.String("granularity", string(g)),
		zap.Int("transactions", len(txns)),
		zap.Int("periods", len(series)))
	return series, nil
}

func (s *Service) unavailable(op string, err error) error {
	if errors.Is(err, model.ErrValidation) {
		return err
	}
	s.log.Error("report query failed", zap.String("query", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, model.Unavailable(op, err))
}

func checkRange(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return model.Invalid(model.CodeInvalidRange, "start %s is after end %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return nil
}
