package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cleared-dev/propledger/internal/model"
	"github.com/cleared-dev/propledger/internal/store"
)

// Service is the account registry: CRUD over account types and accounts
// plus category lookup.
type Service struct {
	store *store.Store
	log   *zap.Logger
}

// NewService creates a registry backed by st.
func NewService(st *store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, log: log.Named("accounts")}
}

// CreateAccountType adds a new account type. Names are unique ignoring case.
func (s *Service) CreateAccountType(ctx context.Context, name string) (model.AccountType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.AccountType{}, model.Invalid(model.CodeEmptyName, "account type name is required")
	}

	var created model.AccountType
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := checkTypeNameFree(ctx, q, name, 0); err != nil {
			return err
		}
		at, err := q.CreateAccountType(ctx, name)
		if err != nil {
			return err
		}
		created = at
		return nil
	})
	if err != nil {
		return model.AccountType{}, fmt.Errorf("creating account type: %w", err)
	}

	s.log.Info("account type created", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// RenameAccountType changes a type's name. Types already referenced by an
// account are immutable.
func (s *Service) RenameAccountType(ctx context.Context, id int64, name string) (model.AccountType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.AccountType{}, model.Invalid(model.CodeEmptyName, "account type name is required")
	}

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if _, err := q.GetAccountType(ctx, id); err != nil {
			return err
		}
		if err := checkTypeUnused(ctx, q, id); err != nil {
			return err
		}
		if err := checkTypeNameFree(ctx, q, name, id); err != nil {
			return err
		}
		return q.RenameAccountType(ctx, id, name)
	})
	if err != nil {
		return model.AccountType{}, fmt.Errorf("renaming account type %d: %w", id, err)
	}
	return model.AccountType{ID: id, Name: name}, nil
}

// DeleteAccountType removes a type that no account references.
func (s *Service) DeleteAccountType(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if _, err := q.GetAccountType(ctx, id); err != nil {
			return err
		}
		if err := checkTypeUnused(ctx, q, id); err != nil {
			return err
		}
		return q.DeleteAccountType(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting account type %d: %w", id, err)
	}
	return nil
}

// ListAccountTypes returns all account types.
func (s *Service) ListAccountTypes(ctx context.Context) ([]model.AccountType, error) {
	return s.store.ListAccountTypes(ctx)
}

// CreateAccount adds an account of an existing type.
func (s *Service) CreateAccount(ctx context.Context, name string, typeID int64) (model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Account{}, model.Invalid(model.CodeEmptyName, "account name is required")
	}

	var created model.Account
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := checkTypeExists(ctx, q, typeID); err != nil {
			return err
		}
		a, err := q.CreateAccount(ctx, name, typeID)
		if err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return model.Account{}, fmt.Errorf("creating account: %w", err)
	}

	s.log.Info("account created",
		zap.Int64("id", created.ID),
		zap.String("name", created.Name),
		zap.Int64("account_type_id", created.AccountTypeID))
	return created, nil
}

// UpdateAccount renames an account and/or moves it to another type.
func (s *Service) UpdateAccount(ctx context.Context, id int64, name string, typeID int64) (model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Account{}, model.Invalid(model.CodeEmptyName, "account name is required")
	}

	updated := model.Account{ID: id, Name: name, AccountTypeID: typeID}
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if _, err := q.GetAccount(ctx, id); err != nil {
			return err
		}
		if err := checkTypeExists(ctx, q, typeID); err != nil {
			return err
		}
		return q.UpdateAccount(ctx, updated)
	})
	if err != nil {
		return model.Account{}, fmt.Errorf("updating account %d: %w", id, err)
	}
	return updated, nil
}

// DeleteAccount removes an account. Accounts referenced by any entry are
// rejected with AccountInUse.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if _, err := q.GetAccount(ctx, id); err != nil {
			return err
		}
		n, err := q.CountEntriesForAccount(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return model.Invalid(model.CodeAccountInUse, "account %d is referenced by %d entries", id, n)
		}
		return q.DeleteAccount(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting account %d: %w", id, err)
	}

	s.log.Info("account deleted", zap.Int64("id", id))
	return nil
}

// GetAccount returns one account.
func (s *Service) GetAccount(ctx context.Context, id int64) (model.Account, error) {
	return s.store.GetAccount(ctx, id)
}

// ListAccounts returns all accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.store.ListAccounts(ctx)
}

// ListAccountsByCategory returns the accounts whose type maps to category.
func (s *Service) ListAccountsByCategory(ctx context.Context, category model.Category) ([]model.Account, error) {
	chart, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return chart.ByCategory(category), nil
}

// CategoryOf resolves an account to its category. It never fails: missing
// accounts, missing types and storage errors all yield CategoryUnknown.
func (s *Service) CategoryOf(ctx context.Context, accountID int64) model.Category {
	a, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.log.Warn("category lookup failed", zap.Int64("account_id", accountID), zap.Error(err))
		}
		return model.CategoryUnknown
	}
	t, err := s.store.GetAccountType(ctx, a.AccountTypeID)
	if err != nil {
		return model.CategoryUnknown
	}
	return model.CategoryFromTypeName(t.Name)
}

// Snapshot loads the whole chart of accounts into memory.
func (s *Service) Snapshot(ctx context.Context) (*Chart, error) {
	return LoadChart(ctx, s.store.Queries)
}

// LoadChart reads the chart of accounts through q, which may be bound to
// an open transaction.
func LoadChart(ctx context.Context, q *store.Queries) (*Chart, error) {
	types, err := q.ListAccountTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading account types: %w", err)
	}
	accts, err := q.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return NewChart(types, accts), nil
}

// Seed creates the known account types and any rows whose account name
// does not exist yet. Missing types named by rows are created too.
// Running it twice is a no-op.
func (s *Service) Seed(ctx context.Context, rows []ChartRow) (created int, err error) {
	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		created = 0
		typeIDs := make(map[string]int64)
		ensureType := func(name string) (int64, error) {
			key := strings.ToLower(name)
			if id, ok := typeIDs[key]; ok {
				return id, nil
			}
			at, ok, err := q.FindAccountTypeByName(ctx, name)
			if err != nil {
				return 0, err
			}
			if !ok {
				if at, err = q.CreateAccountType(ctx, name); err != nil {
					return 0, err
				}
			}
			typeIDs[key] = at.ID
			return at.ID, nil
		}

		for _, name := range model.KnownTypeNames {
			if _, err := ensureType(name); err != nil {
				return err
			}
		}

		existing, err := q.ListAccounts(ctx)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, a := range existing {
			have[strings.ToLower(a.Name)] = true
		}

		for _, row := range rows {
			if have[strings.ToLower(row.Name)] {
				continue
			}
			typeID, err := ensureType(row.Type)
			if err != nil {
				return err
			}
			if _, err := q.CreateAccount(ctx, row.Name, typeID); err != nil {
				return err
			}
			have[strings.ToLower(row.Name)] = true
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seeding chart of accounts: %w", err)
	}

	s.log.Info("chart of accounts seeded", zap.Int("created", created))
	return created, nil
}

// Export returns the chart of accounts as CSV rows.
func (s *Service) Export(ctx context.Context) ([]ChartRow, error) {
	chart, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]ChartRow, 0, len(chart.All()))
	for _, a := range chart.All() {
		t, _ := chart.TypeOf(a.ID)
		rows = append(rows, ChartRow{Name: a.Name, Type: t.Name})
	}
	return rows, nil
}

func checkTypeNameFree(ctx context.Context, q *store.Queries, name string, self int64) error {
	at, ok, err := q.FindAccountTypeByName(ctx, name)
	if err != nil {
		return err
	}
	if ok && at.ID != self {
		return model.Invalid(model.CodeDuplicateName, "account type %q already exists", at.Name)
	}
	return nil
}

func checkTypeExists(ctx context.Context, q *store.Queries, typeID int64) error {
	_, err := q.GetAccountType(ctx, typeID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Invalid(model.CodeUnknownAccountType, "account type %d does not exist", typeID)
	}
	return err
}

func checkTypeUnused(ctx context.Context, q *store.Queries, typeID int64) error {
	n, err := q.CountAccountsOfType(ctx, typeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return model.Invalid(model.CodeTypeInUse, "account type %d is used by %d accounts", typeID, n)
	}
	return nil
}
