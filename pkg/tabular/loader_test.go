package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"support-assistant-be/pkg/store"
)

func ticketTable() *Table {
	return &Table{
		Columns: []string{"Error Code", "Description", "Priority"},
		Rows: [][]string{
			{"PAY502", "Payment gateway timeout at checkout", "1"},
			{"SHP101", "Label printing fails for bulk orders", "2"},
			{"", "", ""},
			{"API301", "", "3"},
		},
	}
}

func TestIngestRowDocuments(t *testing.T) {
	docs := Ingest(ticketTable(), "tickets.xlsx", store.SourceDefaultFile)

	var rows []store.Document
	for _, d := range docs {
		if d.SourceType() != store.SourceColumnSummary {
			rows = append(rows, d)
		}
	}

	// The fully empty row produces nothing.
	if len(rows) != 3 {
		t.Fatalf("row documents = %d, want 3", len(rows))
	}

	first := rows[0]
	wantContent := "Error Code: PAY502\nDescription: Payment gateway timeout at checkout\nPriority: 1"
	if first.Content != wantContent {
		t.Errorf("content = %q, want %q", first.Content, wantContent)
	}
	if first.Metadata[store.MetaRowIndex] != 0 {
		t.Errorf("row_index = %v, want 0", first.Metadata[store.MetaRowIndex])
	}
	if first.Metadata[store.MetaFilename] != "tickets.xlsx" {
		t.Errorf("filename = %v, want tickets.xlsx", first.Metadata[store.MetaFilename])
	}
	if first.Metadata["Error Code"] != "PAY502" {
		t.Errorf("Error Code metadata = %v, want PAY502", first.Metadata["Error Code"])
	}

	// Empty cells are left out of content and metadata; the original row
	// index is preserved even after the skipped row.
	partial := rows[2]
	if strings.Contains(partial.Content, "Description") {
		t.Errorf("empty cell leaked into content: %q", partial.Content)
	}
	if _, ok := partial.Metadata["Description"]; ok {
		t.Error("empty cell leaked into metadata")
	}
	if partial.Metadata[store.MetaRowIndex] != 3 {
		t.Errorf("row_index = %v, want 3", partial.Metadata[store.MetaRowIndex])
	}
}

func TestIngestColumnSummaries(t *testing.T) {
	docs := Ingest(ticketTable(), "tickets.xlsx", store.SourceDefaultFile)

	var summaries []store.Document
	for _, d := range docs {
		if d.IsColumnSummary() {
			summaries = append(summaries, d)
		}
	}
	if len(summaries) != 3 {
		t.Fatalf("summaries = %d, want 3", len(summaries))
	}

	priority := summaries[2]
	if priority.Metadata[store.MetaColumn] != "Priority" {
		t.Fatalf("column = %v, want Priority", priority.Metadata[store.MetaColumn])
	}
	for _, line := range []string{
		"Column: Priority",
		"Data type: integer",
		"Sample values: 1, 2, 3",
		"Total non-null values: 3",
	} {
		if !strings.Contains(priority.Content, line) {
			t.Errorf("summary missing %q:\n%s", line, priority.Content)
		}
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"integers", []string{"1", "42", "-7"}, "integer"},
		{"floats", []string{"1.5", "2", "3.25"}, "float"},
		{"strings", []string{"PAY502", "2"}, "string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferType(tt.values); got != tt.want {
				t.Errorf("inferType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSupportedExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"tickets.xlsx", true},
		{"tickets.XLS", true},
		{"tickets.csv", true},
		{"tickets.pdf", false},
		{"tickets", false},
	}
	for _, tt := range tests {
		if got := SupportedExtension(tt.filename); got != tt.want {
			t.Errorf("SupportedExtension(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestParseCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.csv")
	csvContent := "Error Code,Description\nPAY502,Payment gateway timeout\nSHP101,Label printing fails\n"
	if err := os.WriteFile(path, []byte(csvContent), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Parse(path, "tickets.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(table.Columns) != 2 || table.Columns[0] != "Error Code" {
		t.Errorf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(table.Rows))
	}
}

func TestParseBlankHeaderDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.csv")
	if err := os.WriteFile(path, []byte(",Description\nPAY502,timeout\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Parse(path, "tickets.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if table.Columns[0] != "Column 1" {
		t.Errorf("blank header = %q, want \"Column 1\"", table.Columns[0])
	}
}

func TestParseUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a workbook"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Parse(path, "broken.xlsx")
	var formatErr *DataFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("error = %v, want *DataFormatError", err)
	}
	if formatErr.Filename != "broken.xlsx" {
		t.Errorf("filename = %q, want broken.xlsx", formatErr.Filename)
	}
}
