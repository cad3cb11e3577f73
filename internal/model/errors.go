package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is wrapped by lookups of unknown transactions, accounts and types.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is matched by errors raised when storage cannot be reached.
	ErrUnavailable = errors.New("unavailable")
	// ErrValidation is matched by every ValidationError and ValidationErrors.
	ErrValidation = errors.New("validation failed")
)

// Code identifies a caller-fixable rejection reason.
type Code string

const (
	CodeEmptyDescription    Code = "EmptyDescription"
	CodeNoEntries           Code = "NoEntries"
	CodeMissingAccount      Code = "MissingAccount"
	CodeUnbalanced          Code = "UnbalancedTransaction"
	CodeMissingDate         Code = "MissingDate"
	CodeInvalidAmount       Code = "InvalidAmount"
	CodeInvalidDirection    Code = "InvalidDirection"
	CodeUnitWithoutProperty Code = "UnitWithoutProperty"
	CodeUnitNotInProperty   Code = "UnitNotInProperty"
	CodeUnitInUse           Code = "UnitInUse"
	CodeEmptyName           Code = "EmptyName"
	CodeDuplicateName       Code = "DuplicateName"
	CodeUnknownAccountType  Code = "UnknownAccountType"
	CodeAccountInUse        Code = "AccountInUse"
	CodeTypeInUse           Code = "TypeInUse"
	CodeInvalidGranularity  Code = "InvalidGranularity"
	CodeInvalidRange        Code = "InvalidRange"
	CodeInvalidSort         Code = "InvalidSort"
	CodeInvalidDate         Code = "InvalidDate"
	CodeInvalidRequest      Code = "InvalidRequest"
)

// ValidationError describes a single rejected input.
type ValidationError struct {
	Code        Code
	Entry       int // index of the offending entry, -1 for the whole request
	Description string

	// Debits and Credits are set for CodeUnbalanced.
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e ValidationError) Error() string {
	if e.Entry >= 0 {
		return fmt.Sprintf("%s [entry %d]: %s", e.Code, e.Entry, e.Description)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches ErrValidation.
func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// ValidationErrors is an ordered list of violations returned as one error.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, ve := range v {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is matches ErrValidation.
func (v ValidationErrors) Is(target error) bool { return target == ErrValidation }

// Has reports whether any violation carries code.
func (v ValidationErrors) Has(code Code) bool {
	for _, ve := range v {
		if ve.Code == code {
			return true
		}
	}
	return false
}

// Codes returns the violation codes in order.
func (v ValidationErrors) Codes() []Code {
	codes := make([]Code, len(v))
	for i, ve := range v {
		codes[i] = ve.Code
	}
	return codes
}

// Invalid returns a single request-level violation.
func Invalid(code Code, format string, args ...any) ValidationErrors {
	return ValidationErrors{{Code: code, Entry: -1, Description: fmt.Sprintf(format, args...)}}
}

// AsValidation extracts the violations carried by err.
func AsValidation(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return ValidationErrors{ve}, true
	}
	return nil, false
}

// UnavailableError wraps a storage failure.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrUnavailable, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is matches ErrUnavailable.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Unavailable wraps err as an UnavailableError unless it already is one.
func Unavailable(op string, err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	return &UnavailableError{Op: op, Err: err}
}
