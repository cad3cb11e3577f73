package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a double-entry leg.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Valid reports whether d is debit or credit.
func (d Direction) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// Entry is one leg of a transaction.
type Entry struct {
	AccountID  int64
	Amount     decimal.Decimal
	Direction  Direction
	PropertyID *int64 // nil when the leg is not tied to a property
	UnitID     *int64 // must belong to PropertyID when set
}

// Transaction is a dated, balanced set of entries. It is created,
// replaced and deleted as a whole.
type Transaction struct {
	ID          string // "YYYY-MM-NNN"
	Date        time.Time
	Description string
	Entries     []Entry
}

// TransactionDraft is the caller-supplied content of a transaction
// before validation assigns it an ID.
type TransactionDraft struct {
	Date        time.Time
	Description string
	Entries     []Entry
}

// Totals returns the summed debit and credit amounts of entries.
func Totals(entries []Entry) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Direction {
		case DirectionDebit:
			debits = debits.Add(e.Amount)
		case DirectionCredit:
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

// Amount is the transaction's size: the sum of its debit legs.
func (t Transaction) Amount() decimal.Decimal {
	debits, _ := Totals(t.Entries)
	return debits
}
