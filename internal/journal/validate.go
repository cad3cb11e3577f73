package journal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/propledger/internal/model"
)

// Tolerance is the largest debit/credit difference a transaction may carry.
var Tolerance = decimal.New(1, -2)

// MaxAmount is the largest amount a single entry may carry.
var MaxAmount = decimal.New(1, 12)

// Amounts outside these bounds are rejected before any arithmetic runs on
// them, so huge exponents never get rescaled.
const (
	minAmountExponent = -12
	maxAmountExponent = 12
	maxAmountDigits   = 24
)

var hundred = decimal.NewFromInt(100)

// amountInRange reports whether a is small enough to sum and format.
// The exponent and digit checks come first since Cmp rescales.
func amountInRange(a decimal.Decimal) bool {
	exp := a.Exponent()
	if exp < minAmountExponent || exp > maxAmountExponent {
		return false
	}
	if a.NumDigits() > maxAmountDigits {
		return false
	}
	return a.Abs().LessThanOrEqual(MaxAmount)
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int64) bool
}

// UnitChecker resolves the property a unit belongs to.
type UnitChecker interface {
	PropertyOf(unitID int64) (propertyID int64, ok bool)
}

// UnitIndex maps unit IDs to their owning property.
type UnitIndex map[int64]int64

// PropertyOf implements UnitChecker.
func (u UnitIndex) PropertyOf(unitID int64) (int64, bool) {
	p, ok := u[unitID]
	return p, ok
}

// Validate checks a draft against the ledger invariants and returns every
// violation in order: description, entry count, account references,
// balance, then per-entry amount, direction and unit ownership.
// A nil units skips the unit ownership check.
func Validate(draft model.TransactionDraft, accounts AccountChecker, units UnitChecker) model.ValidationErrors {
	var errs model.ValidationErrors

	if strings.TrimSpace(draft.Description) == "" {
		errs = append(errs, model.ValidationError{
			Code:        model.CodeEmptyDescription,
			Entry:       -1,
			Description: "description is required",
		})
	}

	if len(draft.Entries) < 1 {
		errs = append(errs, model.ValidationError{
			Code:        model.CodeNoEntries,
			Entry:       -1,
			Description: "transaction needs at least one entry",
		})
	}

	for i, e := range draft.Entries {
		if !accounts.Exists(e.AccountID) {
			errs = append(errs, model.ValidationError{
				Code:        model.CodeMissingAccount,
				Entry:       i,
				Description: fmt.Sprintf("unknown account %d", e.AccountID),
			})
		}
	}

	inRange := true
	for _, e := range draft.Entries {
		if !amountInRange(e.Amount) {
			inRange = false
			break
		}
	}

	// Out of range amounts are reported per entry below.
	debits, credits := decimal.Zero, decimal.Zero
	if inRange {
		debits, credits = model.Totals(draft.Entries)
	}
	if diff := debits.Sub(credits).Abs(); diff.GreaterThan(Tolerance) {
		errs = append(errs, model.ValidationError{
			Code:  model.CodeUnbalanced,
			Entry: -1,
			Description: fmt.Sprintf("debits (%s) != credits (%s), off by %s",
				debits.StringFixed(2), credits.StringFixed(2), diff.StringFixed(2)),
			Debits:  debits,
			Credits: credits,
		})
	}

	if draft.Date.IsZero() {
		errs = append(errs, model.ValidationError{
			Code:        model.CodeMissingDate,
			Entry:       -1,
			Description: "date is required",
		})
	}

	for i, e := range draft.Entries {
		if !amountInRange(e.Amount) {
			errs = append(errs, model.ValidationError{
				Code:        model.CodeInvalidAmount,
				Entry:       i,
				Description: fmt.Sprintf("amount is out of range (at most %s with 12 decimal places)", MaxAmount),
			})
		} else if !e.Amount.IsPositive() {
			errs = append(errs, model.ValidationError{
				Code:        model.CodeInvalidAmount,
				Entry:       i,
				Description: fmt.Sprintf("amount %s must be positive", e.Amount),
			})
		} else if scaled := e.Amount.Mul(hundred); !scaled.Equal(scaled.Floor()) {
			errs = append(errs, model.ValidationError{
				Code:        model.CodeInvalidAmount,
				Entry:       i,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", e.Amount),
			})
		}

		if !e.Direction.Valid() {
			errs = append(errs, model.ValidationError{
				Code:        model.CodeInvalidDirection,
				Entry:       i,
				Description: fmt.Sprintf("direction %q must be debit or credit", e.Direction),
			})
		}

		if e.UnitID == nil {
			continue
		}
		if e.PropertyID == nil {
			errs = append(errs, model.ValidationError{
				Code:        model.CodeUnitWithoutProperty,
				Entry:       i,
				Description: fmt.Sprintf("unit %d given without a property", *e.UnitID),
			})
			continue
		}
		if units == nil {
			continue
		}
		if owner, ok := units.PropertyOf(*e.UnitID); !ok || owner != *e.PropertyID {
			errs = append(errs, model.ValidationError{
				Code:        model.CodeUnitNotInProperty,
				Entry:       i,
				Description: fmt.Sprintf("unit %d does not belong to property %d", *e.UnitID, *e.PropertyID),
			})
		}
	}

	return errs
}

// unitIDs lists the units referenced by entries.
func unitIDs(entries []model.Entry) []int64 {
	var ids []int64
	for _, e := range entries {
		if e.UnitID != nil {
			ids = append(ids, *e.UnitID)
		}
	}
	return ids
}
