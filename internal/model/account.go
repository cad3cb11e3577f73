package model

// AccountType is a named classification in the chart of accounts.
// Names are unique case-insensitively.
type AccountType struct {
	ID   int64
	Name string
}

// Account is a row in the chart of accounts.
type Account struct {
	ID            int64
	Name          string
	AccountTypeID int64
}
