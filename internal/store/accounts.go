package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/propledger/internal/model"
)

// CreateAccountType inserts a new account type.
func (q *Queries) CreateAccountType(ctx context.Context, name string) (model.AccountType, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO account_types (name) VALUES (?)`, name)
	if err != nil {
		return model.AccountType{}, model.Unavailable("create account type", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.AccountType{}, model.Unavailable("create account type", err)
	}
	return model.AccountType{ID: id, Name: name}, nil
}

// GetAccountType returns the account type with id.
func (q *Queries) GetAccountType(ctx context.Context, id int64) (model.AccountType, error) {
	var at model.AccountType
	err := q.db.QueryRowContext(ctx, `SELECT id, name FROM account_types WHERE id = ?`, id).Scan(&at.ID, &at.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AccountType{}, fmt.Errorf("account type %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.AccountType{}, model.Unavailable("get account type", err)
	}
	return at, nil
}

// FindAccountTypeByName looks a type up by name, ignoring case.
func (q *Queries) FindAccountTypeByName(ctx context.Context, name string) (model.AccountType, bool, error) {
	var at model.AccountType
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name FROM account_types WHERE name = ? COLLATE NOCASE`, name).Scan(&at.ID, &at.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AccountType{}, false, nil
	}
	if err != nil {
		return model.AccountType{}, false, model.Unavailable("find account type", err)
	}
	return at, true, nil
}

// ListAccountTypes returns all account types ordered by id.
func (q *Queries) ListAccountTypes(ctx context.Context) ([]model.AccountType, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM account_types ORDER BY id`)
	if err != nil {
		return nil, model.Unavailable("list account types", err)
	}
	defer rows.Close()

	var types []model.AccountType
	for rows.Next() {
		var at model.AccountType
		if err := rows.Scan(&at.ID, &at.Name); err != nil {
			return nil, model.Unavailable("scan account type", err)
		}
		types = append(types, at)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Unavailable("list account types", err)
	}
	return types, nil
}

// RenameAccountType changes the name of an account type.
func (q *Queries) RenameAccountType(ctx context.Context, id int64, name string) error {
	res, err := q.db.ExecContext(ctx, `UPDATE account_types SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return model.Unavailable("rename account type", err)
	}
	return requireRow(res, "account type", id)
}

// DeleteAccountType removes an account type.
func (q *Queries) DeleteAccountType(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM account_types WHERE id = ?`, id)
	if err != nil {
		return model.Unavailable("delete account type", err)
	}
	return requireRow(res, "account type", id)
}

// CountAccountsOfType returns how many accounts reference typeID.
func (q *Queries) CountAccountsOfType(ctx context.Context, typeID int64) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE account_type_id = ?`, typeID).Scan(&n); err != nil {
		return 0, model.Unavailable("count accounts", err)
	}
	return n, nil
}

// CreateAccount inserts a new account.
func (q *Queries) CreateAccount(ctx context.Context, name string, typeID int64) (model.Account, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (name, account_type_id) VALUES (?, ?)`, name, typeID)
	if err != nil {
		return model.Account{}, model.Unavailable("create account", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Account{}, model.Unavailable("create account", err)
	}
	return model.Account{ID: id, Name: name, AccountTypeID: typeID}, nil
}

// GetAccount returns the account with id.
func (q *Queries) GetAccount(ctx context.Context, id int64) (model.Account, error) {
	var a model.Account
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, account_type_id FROM accounts WHERE id = ?`, id).Scan(&a.ID, &a.Name, &a.AccountTypeID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Account{}, model.Unavailable("get account", err)
	}
	return a, nil
}

// ListAccounts returns all accounts ordered by id.
func (q *Queries) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, account_type_id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, model.Unavailable("list accounts", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.AccountTypeID); err != nil {
			return nil, model.Unavailable("scan account", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Unavailable("list accounts", err)
	}
	return accounts, nil
}

// UpdateAccount rewrites an account's name and type.
func (q *Queries) UpdateAccount(ctx context.Context, a model.Account) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, account_type_id = ? WHERE id = ?`, a.Name, a.AccountTypeID, a.ID)
	if err != nil {
		return model.Unavailable("update account", err)
	}
	return requireRow(res, "account", a.ID)
}

// DeleteAccount removes an account.
func (q *Queries) DeleteAccount(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return model.Unavailable("delete account", err)
	}
	return requireRow(res, "account", id)
}

// CountEntriesForAccount returns how many entries post to accountID.
func (q *Queries) CountEntriesForAccount(ctx context.Context, accountID int64) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE account_id = ?`, accountID).Scan(&n); err != nil {
		return 0, model.Unavailable("count entries", err)
	}
	return n, nil
}

func requireRow(res sql.Result, entity string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return model.Unavailable("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", entity, id, model.ErrNotFound)
	}
	return nil
}
