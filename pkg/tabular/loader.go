package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"support-assistant-be/pkg/store"
)

// DataFormatError means the input could not be parsed as a spreadsheet.
// Surfaced to clients as a 400.
type DataFormatError struct {
	Filename string
	Err      error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("unreadable spreadsheet %q: %v", e.Filename, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// Table is a parsed spreadsheet: a header row plus data rows, cells as strings.
type Table struct {
	Columns []string
	Rows    [][]string
}

// SupportedExtension reports whether the filename carries a spreadsheet
// extension this loader accepts.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls", ".csv":
		return true
	}
	return false
}

// Load parses the file at path and converts it per Ingest. filename is the
// display name recorded in metadata (the upload path is usually a temp file).
func Load(path, filename, sourceType string) ([]store.Document, *Table, error) {
	table, err := Parse(path, filename)
	if err != nil {
		return nil, nil, err
	}
	return Ingest(table, filename, sourceType), table, nil
}

// Parse reads the spreadsheet into a Table. The first sheet (or the whole
// CSV) is used; the first row is the header.
func Parse(path, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(path, filename)
	default:
		return parseExcel(path, filename)
	}
}

func parseExcel(path, filename string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DataFormatError{Filename: filename, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DataFormatError{Filename: filename, Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DataFormatError{Filename: filename, Err: err}
	}
	return tableFromRows(rows, filename)
}

func parseCSV(path, filename string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DataFormatError{Filename: filename, Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &DataFormatError{Filename: filename, Err: err}
	}
	return tableFromRows(records, filename)
}

func tableFromRows(rows [][]string, filename string) (*Table, error) {
	if len(rows) == 0 {
		return nil, &DataFormatError{Filename: filename, Err: fmt.Errorf("file is empty")}
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		columns[i] = h
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// Pad short rows so every row has one cell per column.
		cells := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				cells[i] = strings.TrimSpace(row[i])
			}
		}
		data = append(data, cells)
	}

	return &Table{Columns: columns, Rows: data}, nil
}

// Ingest converts a table into documents: one per row with at least one
// non-empty cell ("col: value" lines), plus one column-summary document per
// column with at least one non-empty value. Fully empty rows produce nothing.
func Ingest(table *Table, filename, sourceType string) []store.Document {
	documents := make([]store.Document, 0, len(table.Rows)+len(table.Columns))

	for idx, row := range table.Rows {
		var content strings.Builder
		metadata := map[string]any{
			store.MetaRowIndex:   idx,
			store.MetaFilename:   filename,
			store.MetaSourceType: sourceType,
		}

		for i, col := range table.Columns {
			if row[i] == "" {
				continue
			}
			content.WriteString(col)
			content.WriteString(": ")
			content.WriteString(row[i])
			content.WriteString("\n")
			metadata[col] = row[i]
		}

		text := strings.TrimSpace(content.String())
		if text == "" {
			continue
		}
		documents = append(documents, store.Document{Content: text, Metadata: metadata})
	}

	for i, col := range table.Columns {
		summary, ok := summarizeColumn(table, i)
		if !ok {
			continue
		}
		documents = append(documents, store.Document{
			Content: summary,
			Metadata: map[string]any{
				store.MetaColumn:     col,
				store.MetaFilename:   filename,
				store.MetaSourceType: store.SourceColumnSummary,
			},
		})
	}

	return documents
}

func summarizeColumn(table *Table, col int) (string, bool) {
	values := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		if row[col] != "" {
			values = append(values, row[col])
		}
	}
	if len(values) == 0 {
		return "", false
	}

	samples := values
	if len(samples) > 10 {
		samples = samples[:10]
	}

	var content strings.Builder
	fmt.Fprintf(&content, "Column: %s\n", table.Columns[col])
	fmt.Fprintf(&content, "Data type: %s\n", inferType(values))
	fmt.Fprintf(&content, "Sample values: %s\n", strings.Join(samples, ", "))
	fmt.Fprintf(&content, "Total non-null values: %d", len(values))
	return content.String(), true
}

// inferType guesses a column's data type from its non-empty values.
func inferType(values []string) string {
	allInt, allFloat := true, true
	for _, v := range values {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allFloat = false
		}
		if !allInt && !allFloat {
			return "string"
		}
	}
	if allInt {
		return "integer"
	}
	if allFloat {
		return "float"
	}
	return "string"
}
