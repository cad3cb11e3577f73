package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/propledger/internal/model"
)

// TransactionFilter narrows ListTransactions. Zero values are unbounded.
type TransactionFilter struct {
	Start     time.Time // inclusive
	End       time.Time // inclusive
	AccountID int64     // transactions with at least one entry on this account
}

// NextSequence reserves the next sequence number for period ("YYYY-MM").
// Numbers are never reused, even after deletes.
func (q *Queries) NextSequence(ctx context.Context, period string) (int, error) {
	var seq int
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO entry_sequences (period, last_seq) VALUES (?, 1)
		ON CONFLICT (period) DO UPDATE SET last_seq = last_seq + 1
		RETURNING last_seq`, period).Scan(&seq)
	if err != nil {
		return 0, model.Unavailable("next sequence", err)
	}
	return seq, nil
}

// InsertTransaction writes a transaction row and all of its entries.
func (q *Queries) InsertTransaction(ctx context.Context, txn model.Transaction) error {
	if _, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, description) VALUES (?, ?, ?)`,
		txn.ID, formatDate(txn.Date), txn.Description); err != nil {
		return model.Unavailable("insert transaction", err)
	}
	return q.insertEntries(ctx, txn.ID, txn.Entries)
}

// ReplaceTransaction overwrites the header of txn.ID and swaps its entire
// entry set for txn.Entries.
func (q *Queries) ReplaceTransaction(ctx context.Context, txn model.Transaction) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET date = ?, description = ? WHERE id = ?`,
		formatDate(txn.Date), txn.Description, txn.ID)
	if err != nil {
		return model.Unavailable("update transaction", err)
	}
	if err := requireRow(res, "transaction", txn.ID); err != nil {
		return err
	}

	if _, err := q.db.ExecContext(ctx, `DELETE FROM entries WHERE transaction_id = ?`, txn.ID); err != nil {
		return model.Unavailable("delete entries", err)
	}
	return q.insertEntries(ctx, txn.ID, txn.Entries)
}

// DeleteTransaction removes a transaction and its entries.
func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM entries WHERE transaction_id = ?`, id); err != nil {
		return model.Unavailable("delete entries", err)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return model.Unavailable("delete transaction", err)
	}
	return requireRow(res, "transaction", id)
}

func (q *Queries) insertEntries(ctx context.Context, txnID string, entries []model.Entry) error {
	for i, e := range entries {
		if _, err := q.db.ExecContext(ctx, `
			INSERT INTO entries (transaction_id, position, account_id, amount, direction, property_id, unit_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			txnID, i, e.AccountID, e.Amount.String(), string(e.Direction),
			nullInt(e.PropertyID), nullInt(e.UnitID)); err != nil {
			return model.Unavailable(fmt.Sprintf("insert entry %d", i), err)
		}
	}
	return nil
}

// GetTransaction returns one transaction with its entries.
func (q *Queries) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	txns, err := q.queryTransactions(ctx, `WHERE t.id = ?`, []any{id})
	if err != nil {
		return model.Transaction{}, err
	}
	if len(txns) == 0 {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, model.ErrNotFound)
	}
	return txns[0], nil
}

// ListTransactions returns the transactions matching f ordered by date
// then id, each with its entries in submission order.
func (q *Queries) ListTransactions(ctx context.Context, f TransactionFilter) ([]model.Transaction, error) {
	var conds []string
	var args []any
	if !f.Start.IsZero() {
		conds = append(conds, "t.date >= ?")
		args = append(args, formatDate(f.Start))
	}
	if !f.End.IsZero() {
		conds = append(conds, "t.date <= ?")
		args = append(args, formatDate(f.End))
	}
	if f.AccountID != 0 {
		conds = append(conds, "t.id IN (SELECT transaction_id FROM entries WHERE account_id = ?)")
		args = append(args, f.AccountID)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return q.queryTransactions(ctx, where, args)
}

func (q *Queries) queryTransactions(ctx context.Context, where string, args []any) ([]model.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.date, t.description,
		       e.account_id, e.amount, e.direction, e.property_id, e.unit_id
		FROM transactions t
		LEFT JOIN entries e ON e.transaction_id = t.id
		`+where+`
		ORDER BY t.date, t.id, e.position`, args...)
	if err != nil {
		return nil, model.Unavailable("query transactions", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var (
			txnID, date, desc string
			accountID         sql.NullInt64
			amount, direction sql.NullString
			propertyID, unit  sql.NullInt64
		)
		if err := rows.Scan(&txnID, &date, &desc, &accountID, &amount, &direction, &propertyID, &unit); err != nil {
			return nil, model.Unavailable("scan transaction", err)
		}

		if len(txns) == 0 || txns[len(txns)-1].ID != txnID {
			d, err := parseDate(date)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: %w", txnID, err)
			}
			txns = append(txns, model.Transaction{ID: txnID, Date: d, Description: desc})
		}
		if !accountID.Valid {
			continue
		}

		amt, err := decimal.NewFromString(amount.String)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parsing amount %q: %w", txnID, amount.String, err)
		}
		cur := &txns[len(txns)-1]
		cur.Entries = append(cur.Entries, model.Entry{
			AccountID:  accountID.Int64,
			Amount:     amt,
			Direction:  model.Direction(direction.String),
			PropertyID: ptrInt(propertyID),
			UnitID:     ptrInt(unit),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, model.Unavailable("query transactions", err)
	}
	return txns, nil
}

// RegisterUnit records that unitID belongs to propertyID, replacing any
// previous owner.
func (q *Queries) RegisterUnit(ctx context.Context, propertyID, unitID int64) error {
	if _, err := q.db.ExecContext(ctx, `
		INSERT INTO units (unit_id, property_id) VALUES (?, ?)
		ON CONFLICT (unit_id) DO UPDATE SET property_id = excluded.property_id`,
		unitID, propertyID); err != nil {
		return model.Unavailable("register unit", err)
	}
	return nil
}

// CountUnitEntriesOutside returns how many entries tag unitID with a
// property other than propertyID.
func (q *Queries) CountUnitEntriesOutside(ctx context.Context, unitID, propertyID int64) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE unit_id = ? AND property_id <> ?`,
		unitID, propertyID).Scan(&n); err != nil {
		return 0, model.Unavailable("count unit entries", err)
	}
	return n, nil
}

// UnitOwners returns the owning property of each known unit in unitIDs.
func (q *Queries) UnitOwners(ctx context.Context, unitIDs []int64) (map[int64]int64, error) {
	owners := make(map[int64]int64, len(unitIDs))
	for _, u := range unitIDs {
		if _, seen := owners[u]; seen {
			continue
		}
		var property int64
		err := q.db.QueryRowContext(ctx, `SELECT property_id FROM units WHERE unit_id = ?`, u).Scan(&property)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, model.Unavailable("lookup unit", err)
		}
		owners[u] = property
	}
	return owners, nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func ptrInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
