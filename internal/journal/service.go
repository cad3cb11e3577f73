package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/propledger/internal/accounts"
	"github.com/cleared-dev/propledger/internal/id"
	"github.com/cleared-dev/propledger/internal/metrics"
	"github.com/cleared-dev/propledger/internal/model"
	"github.com/cleared-dev/propledger/internal/store"
)

// Service is the ledger engine: it validates and persists balanced
// transactions.
type Service struct {
	store   *store.Store
	log     *zap.Logger
	metrics *metrics.Metrics
	units   bool

	// mu serializes writers so validation and the write it guards see the
	// same chart of accounts.
	mu sync.Mutex
}

// Options configures a Service.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// EnforceUnitOwnership rejects entries whose unit is not registered
	// under the entry's property.
	EnforceUnitOwnership bool
}

// NewService creates a journal Service.
func NewService(st *store.Store, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   st,
		log:     log.Named("journal"),
		metrics: opts.Metrics,
		units:   opts.EnforceUnitOwnership,
	}
}

// Filter selects transactions for List. Zero dates are unbounded.
type Filter struct {
	Start     time.Time // inclusive
	End       time.Time // inclusive
	AccountID int64
	Order     Order
}

// Submit validates draft and commits it as a new transaction.
func (s *Service) Submit(ctx context.Context, draft model.TransactionDraft) (model.Transaction, error) {
	draft = normalize(draft)

	s.mu.Lock()
	defer s.mu.Unlock()

	var committed model.Transaction
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := s.validate(ctx, q, draft); err != nil {
			return err
		}

		seq, err := q.NextSequence(ctx, id.Period(draft.Date))
		if err != nil {
			return err
		}
		txn := model.Transaction{
			ID:          id.FormatTransactionID(draft.Date.Year(), int(draft.Date.Month()), seq),
			Date:        draft.Date,
			Description: draft.Description,
			Entries:     draft.Entries,
		}
		if err := q.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		committed = txn
		return nil
	})
	s.metrics.ObserveWrite("submit", err)
	if err != nil {
		s.logRejection("submit", "", err)
		return model.Transaction{}, fmt.Errorf("submitting transaction: %w", err)
	}

	s.log.Info("transaction committed",
		zap.String("id", committed.ID),
		zap.String("date", committed.Date.Format(time.DateOnly)),
		zap.Int("entries", len(committed.Entries)),
		zap.String("amount", committed.Amount().StringFixed(2)))
	return committed, nil
}

// Update validates draft and replaces the transaction's header and its
// whole entry set.
func (s *Service) Update(ctx context.Context, txnID string, draft model.TransactionDraft) (model.Transaction, error) {
	draft = normalize(draft)

	s.mu.Lock()
	defer s.mu.Unlock()

	txn := model.Transaction{
		ID:          txnID,
		Date:        draft.Date,
		Description: draft.Description,
		Entries:     draft.Entries,
	}
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if _, err := q.GetTransaction(ctx, txnID); err != nil {
			return err
		}
		if err := s.validate(ctx, q, draft); err != nil {
			return err
		}
		return q.ReplaceTransaction(ctx, txn)
	})
	s.metrics.ObserveWrite("update", err)
	if err != nil {
		s.logRejection("update", txnID, err)
		return model.Transaction{}, fmt.Errorf("updating transaction %s: %w", txnID, err)
	}

	s.log.Info("transaction replaced", zap.String("id", txnID), zap.Int("entries", len(txn.Entries)))
	return txn, nil
}

// Delete removes a transaction and all of its entries.
func (s *Service) Delete(ctx context.Context, txnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		return q.DeleteTransaction(ctx, txnID)
	})
	s.metrics.ObserveWrite("delete", err)
	if err != nil {
		return fmt.Errorf("deleting transaction %s: %w", txnID, err)
	}

	s.log.Info("transaction deleted", zap.String("id", txnID))
	return nil
}

// Get returns one committed transaction.
func (s *Service) Get(ctx context.Context, txnID string) (model.Transaction, error) {
	return s.store.GetTransaction(ctx, txnID)
}

// List returns the transactions matching f in f.Order.
func (s *Service) List(ctx context.Context, f Filter) ([]model.Transaction, error) {
	txns, err := s.store.ListTransactions(ctx, store.TransactionFilter{
		Start:     f.Start,
		End:       f.End,
		AccountID: f.AccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	SortTransactions(txns, f.Order)
	return txns, nil
}

// RegisterUnit records that unitID belongs to propertyID in the unit
// directory used by the ownership check. Re-registering moves the unit,
// unless entries already tag it with its current property.
func (s *Service) RegisterUnit(ctx context.Context, propertyID, unitID int64) error {
	if propertyID <= 0 || unitID <= 0 {
		return model.Invalid(model.CodeInvalidRequest, "property and unit ids must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.WithTx(ctx, func(q *store.Queries) error {
		n, err := q.CountUnitEntriesOutside(ctx, unitID, propertyID)
		if err != nil {
			return err
		}
		if n > 0 {
			return model.Invalid(model.CodeUnitInUse,
				"unit %d is referenced by %d entries under another property", unitID, n)
		}
		return q.RegisterUnit(ctx, propertyID, unitID)
	}); err != nil {
		return fmt.Errorf("registering unit %d: %w", unitID, err)
	}
	s.log.Info("unit registered", zap.Int64("property_id", propertyID), zap.Int64("unit_id", unitID))
	return nil
}

// validate runs Validate against the chart and units visible to q.
func (s *Service) validate(ctx context.Context, q *store.Queries, draft model.TransactionDraft) error {
	chart, err := accounts.LoadChart(ctx, q)
	if err != nil {
		return err
	}

	var units UnitChecker
	if s.units {
		owners, err := q.UnitOwners(ctx, unitIDs(draft.Entries))
		if err != nil {
			return err
		}
		units = UnitIndex(owners)
	}

	if verrs := Validate(draft, chart, units); len(verrs) > 0 {
		return verrs
	}
	return nil
}

func (s *Service) logRejection(op, txnID string, err error) {
	if verrs, ok := model.AsValidation(err); ok {
		s.log.Warn("transaction rejected",
			zap.String("operation", op),
			zap.String("id", txnID),
			zap.Strings("codes", codeStrings(verrs)))
		return
	}
	if errors.Is(err, model.ErrNotFound) {
		s.log.Info("transaction not found", zap.String("operation", op), zap.String("id", txnID))
		return
	}
	s.log.Error("transaction write failed",
		zap.String("operation", op),
		zap.String("id", txnID),
		zap.Error(err))
}

// normalize trims the description and drops any time-of-day from the date.
func normalize(draft model.TransactionDraft) model.TransactionDraft {
	draft.Description = strings.TrimSpace(draft.Description)
	if !draft.Date.IsZero() {
		y, m, d := draft.Date.Date()
		draft.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return draft
}

func codeStrings(verrs model.ValidationErrors) []string {
	out := make([]string, len(verrs))
	for i, c := range verrs.Codes() {
		out[i] = string(c)
	}
	return out
}
