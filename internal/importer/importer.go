// Package importer parses donor-list CSV files into receipt field sets.
// The trust receives these lists as spreadsheet exports; a header row
// names the columns and may be preceded by title or banner rows, so the
// parser searches for it instead of assuming row zero.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	enc "github.com/nileshdj/pavti/internal/encoding"
	"github.com/nileshdj/pavti/internal/receipt"
)

// requiredCols must all appear in the header row for it to count as the
// header. They mirror the full-write field set minus the image uploads,
// which never travel in a CSV.
var requiredCols = []string{
	"account_head",
	"account_number",
	"receipt_number",
	"name",
	"address1",
	"taluka",
	"district",
	"pin_code",
	"state",
	"mobile",
	"gotra",
	"gross_weight",
	"net_weight",
	"goods",
}

// optionalCols are picked up when present.
var optionalCols = []string{"address2", "receipt_type"}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// colIndex maps column names to their position in the row.
type colIndex map[string]int

// RowError ties a validation failure to its 1-based row in the file.
type RowError struct {
	Row int
	Err error
}

// RowErrors is the aggregate of every bad row; the import is
// all-or-nothing, so one bad row fails the whole file.
type RowErrors []RowError

func (e RowErrors) Error() string {
	var sb strings.Builder

	sb.WriteString("invalid rows:")

	for i, re := range e {
		if i > 0 {
			sb.WriteString(";")
		}

		sb.WriteString(" row ")
		sb.WriteString(strconv.Itoa(re.Row))
		sb.WriteString(": ")
		sb.WriteString(re.Err.Error())
	}

	return sb.String()
}

// Parse reads a donor-list CSV and returns one CreateParams per data row.
func (p *Parser) Parse(r io.Reader) ([]receipt.CreateParams, error) {
	utf8r, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx := findHeader(rows)
	if cols == nil {
		return nil, fmt.Errorf("no header row found: expected columns %s", strings.Join(requiredCols, ", "))
	}

	return parseRows(cols, rows, headerIdx)
}

// findHeader scans rows for one containing every required column name.
func findHeader(rows [][]string) (colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		if hasRequiredCols(cols) {
			return cols, rowIdx
		}
	}

	return nil, 0
}

func hasRequiredCols(cols colIndex) bool {
	for _, name := range requiredCols {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(cols colIndex, rows [][]string, headerIdx int) ([]receipt.CreateParams, error) {
	var (
		params  []receipt.CreateParams
		rowErrs RowErrors
	)

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2 // 1-based, after the header

		if isBlank(row) {
			continue
		}

		form := url.Values{}

		for _, name := range requiredCols {
			form.Set(name, cellValue(row, cols[name]))
		}

		for _, name := range optionalCols {
			idx, ok := cols[name]
			if !ok {
				continue
			}

			if v := cellValue(row, idx); v != "" {
				form.Set(name, v)
			}
		}

		p, err := receipt.ParseCreate(form)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Err: err})
			continue
		}

		params = append(params, p)
	}

	if len(rowErrs) > 0 {
		return nil, rowErrs
	}

	return params, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
