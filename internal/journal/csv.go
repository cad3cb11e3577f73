package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/propledger/internal/model"
)

// Header is the CSV header for ledger exports, one row per entry.
const Header = "transaction_id,date,description,account_id,direction,amount,property_id,unit_id"

const (
	numFields    = 8
	colTxnID     = 0
	colDate      = 1
	colDesc      = 2
	colAcctID    = 3
	colDirection = 4
	colAmount    = 5
	colProperty  = 6
	colUnit      = 7
)

// WriteTransactions writes txns as CSV (including header), one row per entry.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, txn := range txns {
		for _, e := range txn.Entries {
			if err := cw.Write(MarshalEntry(txn, e)); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts one entry of txn to a CSV row.
func MarshalEntry(txn model.Transaction, e model.Entry) []string {
	rec := make([]string, numFields)
	rec[colTxnID] = txn.ID
	rec[colDate] = txn.Date.Format(time.DateOnly)
	rec[colDesc] = txn.Description
	rec[colAcctID] = strconv.FormatInt(e.AccountID, 10)
	rec[colDirection] = string(e.Direction)
	rec[colAmount] = e.Amount.StringFixed(2)
	if e.PropertyID != nil {
		rec[colProperty] = strconv.FormatInt(*e.PropertyID, 10)
	}
	if e.UnitID != nil {
		rec[colUnit] = strconv.FormatInt(*e.UnitID, 10)
	}
	return rec
}

// ReadDrafts reads a ledger CSV and groups consecutive rows sharing a
// transaction_id into drafts. The IDs in the file are only used for
// grouping; committing the drafts assigns new ones.
func ReadDrafts(r io.Reader) ([]model.TransactionDraft, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var drafts []model.TransactionDraft
	lastID := ""
	for i, rec := range records[1:] {
		draft, entry, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if len(drafts) == 0 || rec[colTxnID] != lastID {
			drafts = append(drafts, draft)
			lastID = rec[colTxnID]
		}
		cur := &drafts[len(drafts)-1]
		cur.Entries = append(cur.Entries, entry)
	}
	return drafts, nil
}

// UnmarshalEntry converts a CSV row to the transaction header it carries
// and its entry.
func UnmarshalEntry(record []string) (model.TransactionDraft, model.Entry, error) {
	if len(record) != numFields {
		return model.TransactionDraft{}, model.Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(time.DateOnly, record[colDate])
	if err != nil {
		return model.TransactionDraft{}, model.Entry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	accountID, err := strconv.ParseInt(record[colAcctID], 10, 64)
	if err != nil {
		return model.TransactionDraft{}, model.Entry{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.TransactionDraft{}, model.Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	property, err := parseOptionalID(record[colProperty])
	if err != nil {
		return model.TransactionDraft{}, model.Entry{}, fmt.Errorf("parsing property_id %q: %w", record[colProperty], err)
	}
	unit, err := parseOptionalID(record[colUnit])
	if err != nil {
		return model.TransactionDraft{}, model.Entry{}, fmt.Errorf("parsing unit_id %q: %w", record[colUnit], err)
	}

	draft := model.TransactionDraft{Date: date, Description: record[colDesc]}
	entry := model.Entry{
		AccountID:  accountID,
		Amount:     amount,
		Direction:  model.Direction(record[colDirection]),
		PropertyID: property,
		UnitID:     unit,
	}
	return draft, entry, nil
}

func parseOptionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
