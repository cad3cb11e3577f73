package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ChartRow is one row of a chart-of-accounts CSV: an account name and the
// name of its account type.
type ChartRow struct {
	Name string
	Type string
}

const (
	numFields = 2
	colName   = 0
	colType   = 1
)

// Header is the CSV header for chart-of-accounts files.
const Header = "account_name,account_type"

// ReadChart reads a chart-of-accounts CSV.
func ReadChart(r io.Reader) ([]ChartRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var rows []ChartRow
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteChart writes a chart-of-accounts CSV including the header.
func WriteChart(w io.Writer, rows []ChartRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts a ChartRow to a CSV record.
func MarshalRow(row ChartRow) []string {
	rec := make([]string, numFields)
	rec[colName] = row.Name
	rec[colType] = row.Type
	return rec
}

// UnmarshalRow converts a CSV record to a ChartRow.
func UnmarshalRow(record []string) (ChartRow, error) {
	if len(record) != numFields {
		return ChartRow{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	row := ChartRow{
		Name: strings.TrimSpace(record[colName]),
		Type: strings.TrimSpace(record[colType]),
	}
	if row.Name == "" {
		return ChartRow{}, fmt.Errorf("account_name is empty")
	}
	if row.Type == "" {
		return ChartRow{}, fmt.Errorf("account_type is empty for %q", row.Name)
	}
	return row, nil
}
