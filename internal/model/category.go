package model

import "fmt"

// Category is the closed set of account classifications used by reports.
type Category int

const (
	// CategoryUnknown marks an account or type that could not be resolved.
	CategoryUnknown Category = iota
	// CategoryOther is a resolved type whose name is not a known category.
	CategoryOther
	CategoryAsset
	CategoryLiability
	CategoryEquity
	CategoryIncome
	CategoryExpense
	CategoryBank
)

var categoryNames = [...]string{
	CategoryUnknown:   "Unknown",
	CategoryOther:     "Other",
	CategoryAsset:     "Asset",
	CategoryLiability: "Liability",
	CategoryEquity:    "Equity",
	CategoryIncome:    "Income",
	CategoryExpense:   "Expense",
	CategoryBank:      "Bank",
}

// KnownTypeNames lists the account type names that map to a category,
// in seeding order.
var KnownTypeNames = []string{"Asset", "Liability", "Equity", "Income", "Expense", "Bank"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return categoryNames[CategoryUnknown]
	}
	return categoryNames[c]
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name written by MarshalText.
func (c *Category) UnmarshalText(text []byte) error {
	for i, name := range categoryNames {
		if name == string(text) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}

// CategoryFromTypeName maps an account type name to its category.
// Matching is exact: "Income" is income, "income" is Other.
func CategoryFromTypeName(name string) Category {
	switch name {
	case "Asset":
		return CategoryAsset
	case "Liability":
		return CategoryLiability
	case "Equity":
		return CategoryEquity
	case "Income":
		return CategoryIncome
	case "Expense":
		return CategoryExpense
	case "Bank":
		return CategoryBank
	case "":
		return CategoryUnknown
	default:
		return CategoryOther
	}
}
