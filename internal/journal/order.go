package journal

import (
	"cmp"
	"sort"
	"strings"

	"github.com/cleared-dev/propledger/internal/id"
	"github.com/cleared-dev/propledger/internal/model"
)

// SortKey names the field listings are ordered by.
type SortKey string

const (
	SortByDate   SortKey = "date"
	SortByAmount SortKey = "amount"
)

// Order is a sort key and direction. The zero Order is newest first.
type Order struct {
	Key  SortKey
	Desc bool
}

// DefaultOrder lists newest transactions first.
var DefaultOrder = Order{Key: SortByDate, Desc: true}

// ParseOrder parses "date", "-date", "amount" or "-amount". A leading "-"
// sorts descending; the empty string is DefaultOrder.
func ParseOrder(s string) (Order, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultOrder, nil
	}
	o := Order{}
	if strings.HasPrefix(s, "-") {
		o.Desc = true
		s = s[1:]
	}
	switch SortKey(s) {
	case SortByDate, SortByAmount:
		o.Key = SortKey(s)
	default:
		return Order{}, model.Invalid(model.CodeInvalidSort, "unknown sort key %q (want date, -date, amount or -amount)", s)
	}
	return o, nil
}

func (o Order) String() string {
	if o.Key == "" {
		return DefaultOrder.String()
	}
	if o.Desc {
		return "-" + string(o.Key)
	}
	return string(o.Key)
}

func (o Order) normalized() Order {
	if o.Key == "" {
		return DefaultOrder
	}
	return o
}

// SortTransactions orders txns in place. Ties fall back to the
// transaction ID in the same direction so listings are deterministic.
func SortTransactions(txns []model.Transaction, o Order) {
	o = o.normalized()
	sort.SliceStable(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		var c int
		switch o.Key {
		case SortByAmount:
			c = a.Amount().Cmp(b.Amount())
		default:
			c = a.Date.Compare(b.Date)
		}
		if c == 0 {
			c = compareIDs(a.ID, b.ID)
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	})
}

// compareIDs orders transaction IDs by year, month, then numeric sequence,
// so "2025-03-1000" follows "2025-03-999". Malformed IDs compare as strings.
func compareIDs(a, b string) int {
	ay, am, as, aerr := id.ParseTransactionID(a)
	by, bm, bs, berr := id.ParseTransactionID(b)
	if aerr != nil || berr != nil {
		return strings.Compare(a, b)
	}
	if c := cmp.Compare(ay, by); c != 0 {
		return c
	}
	if c := cmp.Compare(am, bm); c != 0 {
		return c
	}
	return cmp.Compare(as, bs)
}
