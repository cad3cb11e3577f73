package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartRoundTrip(t *testing.T) {
	chart := DefaultChart()

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, chart))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadChart(&buf)
	require.NoError(t, err)
	assert.Equal(t, chart, got)
}

func TestReadChart_TrimsAndQuotes(t *testing.T) {
	in := Header + "\n" + `"Repairs, Turnover", Expense ` + "\n"
	got, err := ReadChart(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ChartRow{Name: "Repairs, Turnover", Type: "Expense"}, got[0])
}

func TestReadChart_Empty(t *testing.T) {
	got, err := ReadChart(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ReadChart(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadChart_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"wrong field count", Header + "\nonly-one\n", "wrong number of fields"},
		{"empty name", Header + "\n,Bank\n", "account_name is empty"},
		{"empty type", Header + "\nChecking,\n", "account_type is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadChart(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart()
	require.NotEmpty(t, chart)

	names := make(map[string]bool)
	for _, row := range chart {
		assert.NotEmpty(t, row.Name)
		assert.NotEmpty(t, row.Type, "account %q missing type", row.Name)
		assert.False(t, names[row.Name], "duplicate account %q", row.Name)
		names[row.Name] = true
	}
	assert.True(t, names["Operating Bank"])
	assert.True(t, names["Rent Income"])
}
