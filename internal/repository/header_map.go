package repository

import (
	"fmt"
	"strings"
)

// recordHeaderFields are the column names of a record file header, in record field order
var recordHeaderFields = []string{"date", "counterparty", "amount", "target"}

// createHeaderMap creates a map of column names to their indices
func createHeaderMap(header []string, expectedHeader []string) (map[string]int, error) {
	columnMap := make(map[string]int)

	for _, column := range expectedHeader {
		found := false
		for i, field := range header {
			if strings.EqualFold(column, strings.TrimSpace(field)) {
				columnMap[column] = i
				found = true
				break
			}
		}

		if !found {
			return nil, fmt.Errorf("required field '%s' not found in CSV header", column)
		}
	}

	return columnMap, nil
}

// projectRow reorders row into record field order.
// Rows whose width differs from the header are returned untouched so shape validation still sees them.
func projectRow(row []string, columnMap map[string]int, headerWidth int) []string {
	if len(row) != headerWidth {
		return row
	}

	projected := make([]string, 0, len(recordHeaderFields))
	for _, column := range recordHeaderFields {
		projected = append(projected, row[columnMap[column]])
	}

	return projected
}
