package accounts

import "github.com/cleared-dev/propledger/internal/model"

// Chart is an immutable in-memory snapshot of the chart of accounts.
type Chart struct {
	accounts []model.Account
	byID     map[int64]model.Account
	types    map[int64]model.AccountType
}

// NewChart indexes accounts and their types.
func NewChart(types []model.AccountType, accounts []model.Account) *Chart {
	byID := make(map[int64]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	typeByID := make(map[int64]model.AccountType, len(types))
	for _, t := range types {
		typeByID[t.ID] = t
	}
	return &Chart{accounts: accounts, byID: byID, types: typeByID}
}

// All returns all accounts.
func (c *Chart) All() []model.Account {
	return c.accounts
}

// Get returns an account by ID.
func (c *Chart) Get(id int64) (model.Account, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (c *Chart) Exists(id int64) bool {
	_, ok := c.byID[id]
	return ok
}

// TypeOf returns the account type of an account.
func (c *Chart) TypeOf(id int64) (model.AccountType, bool) {
	a, ok := c.byID[id]
	if !ok {
		return model.AccountType{}, false
	}
	t, ok := c.types[a.AccountTypeID]
	return t, ok
}

// CategoryOf classifies an account. Unresolvable accounts or types are
// CategoryUnknown.
func (c *Chart) CategoryOf(id int64) model.Category {
	t, ok := c.TypeOf(id)
	if !ok {
		return model.CategoryUnknown
	}
	return model.CategoryFromTypeName(t.Name)
}

// ByCategory returns all accounts classified as category.
func (c *Chart) ByCategory(category model.Category) []model.Account {
	var result []model.Account
	for _, a := range c.accounts {
		if c.CategoryOf(a.ID) == category {
			result = append(result, a)
		}
	}
	return result
}
