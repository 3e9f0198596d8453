package services

import (
	"fmt"
	"strings"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Derived columns appended to every exported table.
const (
	ColumnSerial   = "IN-HOUSE SERIAL NUMBER"
	ColumnIssuedAt = "DATE OF ISSUANCE"
	ColumnQRTarget = "QR TARGET"
)

// Table is a parsed upload: ordered column names and rows of cell values.
// Rows may be shorter than the header; missing cells read as empty strings.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ValidationError reports the required columns an upload is missing. Both
// lists are surfaced verbatim to the caller.
type ValidationError struct {
	Missing []string
	Found   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required columns: %s (found: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}
