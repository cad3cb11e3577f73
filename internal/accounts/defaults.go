package accounts

// DefaultChart returns the starter chart of accounts for a property
// management office.
func DefaultChart() []ChartRow {
	return []ChartRow{
		{Name: "Operating Bank", Type: "Bank"},
		{Name: "Security Deposit Bank", Type: "Bank"},
		{Name: "Accounts Receivable", Type: "Asset"},
		{Name: "Security Deposits Held", Type: "Liability"},
		{Name: "Owner Distributions Payable", Type: "Liability"},
		{Name: "Owner's Equity", Type: "Equity"},
		{Name: "Rent Income", Type: "Income"},
		{Name: "Late Fee Income", Type: "Income"},
		{Name: "Repairs & Maintenance", Type: "Expense"},
		{Name: "Utilities", Type: "Expense"},
		{Name: "Property Management Fees", Type: "Expense"},
		{Name: "Insurance", Type: "Expense"},
	}
}
