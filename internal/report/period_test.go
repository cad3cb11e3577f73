package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/propledger/internal/model"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		date time.Time
		g    Granularity
		want string
	}{
		{day(2025, 3, 10), Daily, "2025-03-10"},
		{day(2025, 3, 10), Weekly, "2025-03 W2"},
		{day(2025, 3, 1), Weekly, "2025-03 W1"},
		{day(2025, 3, 7), Weekly, "2025-03 W1"},
		{day(2025, 3, 8), Weekly, "2025-03 W2"},
		{day(2025, 3, 31), Weekly, "2025-03 W5"},
		{day(2025, 3, 10), Monthly, "2025-03"},
		{day(2025, 1, 1), Quarterly, "2025-Q1"},
		{day(2025, 3, 31), Quarterly, "2025-Q1"},
		{day(2025, 4, 1), Quarterly, "2025-Q2"},
		{day(2025, 12, 31), Quarterly, "2025-Q4"},
		{day(2025, 3, 10), Yearly, "2025"},
	}
	for _, tt := range tests {
		t.Run(string(tt.g)+" "+tt.date.Format(time.DateOnly), func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodKey(tt.date, tt.g))
		})
	}
}

func TestParseGranularity(t *testing.T) {
	for _, g := range Granularities {
		got, err := ParseGranularity(string(g))
		require.NoError(t, err)
		assert.Equal(t, g, got)
	}

	got, err := ParseGranularity(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, Weekly, got)

	_, err = ParseGranularity("fortnightly")
	verrs, ok := model.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []model.Code{model.CodeInvalidGranularity}, verrs.Codes())
}
