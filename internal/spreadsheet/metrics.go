package spreadsheet

import (
	"fmt"
	"strings"

	"microblog/internal/models"
	"microblog/internal/validation"
)

// RowError reports a malformed data row. Row is 1-based and counts the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// MetricColumns is the header every metric spreadsheet must start with.
func MetricColumns() []string {
	return append([]string(nil), models.MetricColumns...)
}

// MetricsFromRows turns spreadsheet rows into unsaved metrics. The first row must be
// the MetricColumns header (case and surrounding spaces ignored). Blank rows are skipped.
// Cells longer than their column allows fail the row.
func MetricsFromRows(rows [][]string) ([]*models.Metric, error) {
	rows = trimBlankTail(rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, &RowError{Row: 1, Err: err}
	}

	width := len(models.MetricColumns)
	metrics := make([]*models.Metric, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}
		if len(row) != width {
			return nil, &RowError{Row: rowNum, Err: fmt.Errorf("expected %d columns, got %d", width, len(row))}
		}
		m, err := models.MetricFromValues(row)
		if err != nil {
			return nil, &RowError{Row: rowNum, Err: err}
		}
		if err := validation.Struct(m); err != nil {
			return nil, &RowError{Row: rowNum, Err: err}
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// MetricRows renders metrics as spreadsheet rows in MetricColumns order.
func MetricRows(metrics []*models.Metric) [][]string {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, m.Values())
	}
	return rows
}

func checkHeader(header []string) error {
	header = trimTrailingEmpty(header)
	if len(header) != len(models.MetricColumns) {
		return fmt.Errorf("header has %d columns, expected %d", len(header), len(models.MetricColumns))
	}
	for i, want := range models.MetricColumns {
		if got := strings.ToLower(strings.TrimSpace(header[i])); got != want {
			return fmt.Errorf("column %d is %q, expected %q", i+1, header[i], want)
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimBlankTail(rows [][]string) [][]string {
	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func trimTrailingEmpty(row []string) []string {
	for len(row) > 0 && strings.TrimSpace(row[len(row)-1]) == "" {
		row = row[:len(row)-1]
	}
	return row
}
