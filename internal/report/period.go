package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/propledger/internal/model"
)

// Granularity is the width of a reporting period.
type Granularity string

const (
	Daily     Granularity = "daily"
	Weekly    Granularity = "weekly"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
)

// Granularities lists every supported granularity, finest first.
var Granularities = []Granularity{Daily, Weekly, Monthly, Quarterly, Yearly}

// ParseGranularity parses a granularity name, ignoring case and
// surrounding space.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Granularities {
		if g == known {
			return g, nil
		}
	}
	return "", model.Invalid(model.CodeInvalidGranularity,
		"unknown granularity %q (want daily, weekly, monthly, quarterly or yearly)", s)
}

// PeriodKey returns the label of the period containing date.
//
//	daily     2025-03-10
//	weekly    2025-03 W2   (week of month, days 1-7 are W1)
//	monthly   2025-03
//	quarterly 2025-Q1
//	yearly    2025
//
// Keys of the same granularity sort chronologically as strings.
func PeriodKey(date time.Time, g Granularity) string {
	y, m, d := date.Date()
	switch g {
	case Daily:
		return date.Format(time.DateOnly)
	case Weekly:
		return fmt.Sprintf("%04d-%02d W%d", y, int(m), (d+6)/7)
	case Quarterly:
		return fmt.Sprintf("%04d-Q%d", y, (int(m)-1)/3+1)
	case Yearly:
		return fmt.Sprintf("%04d", y)
	default:
		return fmt.Sprintf("%04d-%02d", y, int(m))
	}
}
