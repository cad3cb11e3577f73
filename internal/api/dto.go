package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/propledger/internal/journal"
	"github.com/cleared-dev/propledger/internal/model"
	"github.com/cleared-dev/propledger/internal/report"
)

type accountTypeRequest struct {
	Name string `json:"name"`
}

type accountTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type accountRequest struct {
	Name          string `json:"name"`
	AccountTypeID int64  `json:"account_type_id"`
}

type accountResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	AccountTypeID int64  `json:"account_type_id"`
}

type entryRequest struct {
	AccountID  int64           `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Direction  string          `json:"direction"`
	PropertyID *int64          `json:"property_id,omitempty"`
	UnitID     *int64          `json:"unit_id,omitempty"`
}

type transactionRequest struct {
	Date        string         `json:"date"`
	Description string         `json:"description"`
	Entries     []entryRequest `json:"entries"`
}

type entryResponse struct {
	AccountID  int64           `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Direction  string          `json:"direction"`
	PropertyID *int64          `json:"property_id,omitempty"`
	UnitID     *int64          `json:"unit_id,omitempty"`
}

type transactionResponse struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Entries     []entryResponse `json:"entries"`
}

type ledgerRowResponse struct {
	TransactionID string          `json:"transaction_id"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	AccountID     int64           `json:"account_id"`
	AccountName   string          `json:"account_name"`
	Category      model.Category  `json:"category"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	PropertyID    *int64          `json:"property_id,omitempty"`
	UnitID        *int64          `json:"unit_id,omitempty"`
}

func (r transactionRequest) draft() (model.TransactionDraft, error) {
	d := model.TransactionDraft{Description: r.Description}
	if strings.TrimSpace(r.Date) != "" {
		date, err := parseDate("date", r.Date)
		if err != nil {
			return model.TransactionDraft{}, err
		}
		d.Date = date
	}
	d.Entries = make([]model.Entry, len(r.Entries))
	for i, e := range r.Entries {
		d.Entries[i] = model.Entry{
			AccountID:  e.AccountID,
			Amount:     e.Amount,
			Direction:  model.Direction(strings.ToLower(e.Direction)),
			PropertyID: e.PropertyID,
			UnitID:     e.UnitID,
		}
	}
	return d, nil
}

func toAccountType(at model.AccountType) accountTypeResponse {
	return accountTypeResponse{ID: at.ID, Name: at.Name}
}

func toAccount(a model.Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, AccountTypeID: a.AccountTypeID}
}

func toTransaction(t model.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID,
		Date:        t.Date.Format(time.DateOnly),
		Description: t.Description,
		Amount:      t.Amount(),
		Entries:     make([]entryResponse, len(t.Entries)),
	}
	for i, e := range t.Entries {
		resp.Entries[i] = entryResponse{
			AccountID:  e.AccountID,
			Amount:     e.Amount,
			Direction:  string(e.Direction),
			PropertyID: e.PropertyID,
			UnitID:     e.UnitID,
		}
	}
	return resp
}

func toLedgerRow(r report.LedgerRow) ledgerRowResponse {
	return ledgerRowResponse{
		TransactionID: r.TransactionID,
		Date:          r.Date.Format(time.DateOnly),
		Description:   r.Description,
		AccountID:     r.AccountID,
		AccountName:   r.AccountName,
		Category:      r.Category,
		Direction:     string(r.Direction),
		Amount:        r.Amount,
		PropertyID:    r.PropertyID,
		UnitID:        r.UnitID,
	}
}

// query holds the shared list/report query parameters.
type query struct {
	Start     time.Time
	End       time.Time
	AccountID int64
	Order     journal.Order
}

func parseQuery(get func(string) string) (query, error) {
	var q query
	var err error
	if s := get("start"); s != "" {
		if q.Start, err = parseDate("start", s); err != nil {
			return query{}, err
		}
	}
	if s := get("end"); s != "" {
		if q.End, err = parseDate("end", s); err != nil {
			return query{}, err
		}
	}
	if s := get("account_id"); s != "" {
		if q.AccountID, err = parseID("account_id", s); err != nil {
			return query{}, err
		}
	}
	if q.Order, err = journal.ParseOrder(get("sort")); err != nil {
		return query{}, err
	}
	return q, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, model.Invalid(model.CodeInvalidDate, "%s %q is not a YYYY-MM-DD date", field, s)
	}
	return t, nil
}

func parseID(field, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("%s %q is not a positive integer", field, s)
	}
	return id, nil
}
