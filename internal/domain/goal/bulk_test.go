package goal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, header []any, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("failed to name cell: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return buf
}

func templateHeader() []any {
	header := make([]any, len(BulkTemplateColumns))
	for i, name := range BulkTemplateColumns {
		header[i] = name
	}
	return header
}

func TestParseBulkWorkbook(t *testing.T) {
	buf := buildWorkbook(t, templateHeader(),
		[]any{"alice@company.com", "Increase Q3 sales", "enterprise focus", "performance", "high", "2026-03-01", "2026-06-30", "Close 5 deals", "Build pipeline", ""},
		[]any{"", "", "", "", "", "", "", "", "", ""},
		[]any{"", "Title without an email", "", "", "", "2026-03-01", "2026-06-30", "", "", ""},
		[]any{"bob@company.com", "ab", "", "", "", "2026-03-01", "2026-06-30", "", "", ""},
		[]any{"carol@company.com", "Mentor two juniors", "", "mystery", "urgent", "2026-03-01", "not-a-date", "", "", ""},
	)

	rows, skipped, rowErrs, err := ParseBulkWorkbook(buf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("expected one blank row skipped, got %d", skipped)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one importable row, got %d", len(rows))
	}
	row := rows[0]
	if row.RowNumber != 2 || row.EmployeeEmail != "alice@company.com" {
		t.Fatalf("unexpected parsed row: %+v", row)
	}
	if row.Category != CategoryPerformance || row.Priority != PriorityHigh {
		t.Fatalf("unexpected enums: %+v", row)
	}
	if row.StartDate.Format("2006-01-02") != "2026-03-01" || row.TargetDate.Format("2006-01-02") != "2026-06-30" {
		t.Fatalf("unexpected dates: %+v", row)
	}
	if len(row.KeyResults) != 2 || row.KeyResults[0] != "Close 5 deals" {
		t.Fatalf("unexpected key results: %+v", row.KeyResults)
	}

	if len(rowErrs) != 3 {
		t.Fatalf("expected three row errors, got %d: %+v", len(rowErrs), rowErrs)
	}
	wantRows := []int{4, 5, 6}
	for i, re := range rowErrs {
		if re.Row != wantRows[i] {
			t.Errorf("error %d reported row %d, want %d (%s)", i, re.Row, wantRows[i], re.Message)
		}
	}
}

func TestParseBulkWorkbookDefaultsUnknownEnums(t *testing.T) {
	buf := buildWorkbook(t, templateHeader(),
		[]any{"dave@company.com", "Ship the migration", "", "mystery", "urgent", "2026-01-15", "2026-09-30", "", "", ""},
	)
	rows, _, rowErrs, err := ParseBulkWorkbook(buf)
	if err != nil || len(rowErrs) != 0 {
		t.Fatalf("parse failed: %v %+v", err, rowErrs)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0].Category != CategoryPerformance || rows[0].Priority != PriorityMedium {
		t.Fatalf("expected defaulted enums, got %+v", rows[0])
	}
}

func TestParseBulkWorkbookRejectsMissingColumns(t *testing.T) {
	buf := buildWorkbook(t, []any{"employee_email", "title"},
		[]any{"alice@company.com", "Some goal"},
	)
	_, _, _, err := ParseBulkWorkbook(buf)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing columns, got %v", err)
	}
}

func TestParseBulkWorkbookRejectsEmptyWorkbook(t *testing.T) {
	buf := buildWorkbook(t, templateHeader())
	_, _, _, err := ParseBulkWorkbook(buf)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for header-only workbook, got %v", err)
	}

	if _, _, _, err := ParseBulkWorkbook(bytes.NewReader([]byte("not a workbook"))); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for a non-xlsx payload, got %v", err)
	}
}

func TestBuildBulkTemplateRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := BuildBulkTemplate(&buf); err != nil {
		t.Fatalf("template build failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("template is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(bulkSheet)
	if err != nil {
		t.Fatalf("failed to read template sheet: %v", err)
	}
	if len(rows) < 2 {
		t.Fatal("expected a header and an example row")
	}
	for i, want := range BulkTemplateColumns {
		if i >= len(rows[0]) || rows[0][i] != want {
			t.Fatalf("header column %d = %q, want %q", i, rows[0][i], want)
		}
	}
}
