package goal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Bulk goal upload: managers and HR fill an .xlsx template to assign goals
// to many employees at once. The workbook's first sheet carries one goal per
// row; up to three key results can be seeded inline.

const bulkSheet = "Goals"

var BulkTemplateColumns = []string{
	"employee_email",
	"title",
	"description",
	"category",
	"priority",
	"start_date",
	"target_date",
	"key_result_1",
	"key_result_2",
	"key_result_3",
}

var bulkRequiredColumns = []string{"employee_email", "title", "start_date", "target_date"}

var bulkColumnWidths = []float64{30, 35, 45, 18, 12, 15, 15, 30, 30, 30}

// BulkRow is one parsed data row from an upload workbook.
type BulkRow struct {
	RowNumber     int
	EmployeeEmail string
	Title         string
	Description   string
	Category      string
	Priority      string
	StartDate     time.Time
	TargetDate    time.Time
	KeyResults    []string
}

// BulkRowError reports why a single row was not imported.
type BulkRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BuildBulkTemplate writes the upload template: a Goals sheet with the
// column header and an example row, plus an Instructions sheet describing
// each column.
func BuildBulkTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", bulkSheet); err != nil {
		return err
	}

	header := make([]any, len(BulkTemplateColumns))
	for i, name := range BulkTemplateColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(bulkSheet, "A1", &header); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"6C3FC5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	lastCol, err := excelize.CoordinatesToCellName(len(BulkTemplateColumns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(bulkSheet, "A1", lastCol, headerStyle); err != nil {
		return err
	}
	for i, width := range bulkColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(bulkSheet, col, col, width); err != nil {
			return err
		}
	}

	example := []any{
		"employee@company.com",
		"Increase Q3 sales by 15%",
		"Focus on enterprise accounts in the APAC region",
		CategoryPerformance,
		PriorityHigh,
		"2026-03-01",
		"2026-06-30",
		"Close 5 enterprise deals",
		"Generate $500K pipeline",
		"",
	}
	if err := f.SetSheetRow(bulkSheet, "A2", &example); err != nil {
		return err
	}
	exampleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Color: "999999"},
	})
	if err != nil {
		return err
	}
	endCol, err := excelize.CoordinatesToCellName(len(example), 2)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(bulkSheet, "A2", endCol, exampleStyle); err != nil {
		return err
	}

	if err := writeBulkInstructions(f); err != nil {
		return err
	}
	return f.Write(w)
}

func writeBulkInstructions(f *excelize.File) error {
	const sheet = "Instructions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Bulk Goal Upload"},
		{""},
		{"Column", "Required", "Description"},
		{"employee_email", "Yes", "Email address of the team member"},
		{"title", "Yes", "Goal title (min 3 characters)"},
		{"description", "No", "Detailed description"},
		{"category", "No", "performance | development | project | mission_aligned (default: performance)"},
		{"priority", "No", "low | medium | high | critical (default: medium)"},
		{"start_date", "Yes", "YYYY-MM-DD format"},
		{"target_date", "Yes", "YYYY-MM-DD format"},
		{"key_result_1", "No", "First key result title"},
		{"key_result_2", "No", "Second key result title"},
		{"key_result_3", "No", "Third key result title"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 12); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "C", 60)
}

// ParseBulkWorkbook reads an upload workbook and returns the importable
// rows, the number of blank rows skipped, and per-row errors. A workbook
// that cannot be read at all fails with ErrValidation.
func ParseBulkWorkbook(r io.Reader) ([]BulkRow, int, []BulkRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: cannot read workbook: %v", ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, nil, fmt.Errorf("%w: workbook has no sheets", ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: cannot read workbook: %v", ErrValidation, err)
	}
	if len(rows) < 2 {
		return nil, 0, nil, fmt.Errorf("%w: no data rows below the header", ErrValidation)
	}

	colIndex := map[string]int{}
	for i, name := range rows[0] {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range bulkRequiredColumns {
		if _, ok := colIndex[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, 0, nil, fmt.Errorf("%w: missing required columns: %s", ErrValidation, strings.Join(missing, ", "))
	}

	var (
		parsed  []BulkRow
		skipped int
		rowErrs []BulkRowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		cell := func(name string) string {
			idx, ok := colIndex[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		email := strings.ToLower(cell("employee_email"))
		title := cell("title")
		if email == "" && title == "" {
			skipped++
			continue
		}
		if email == "" {
			rowErrs = append(rowErrs, BulkRowError{Row: rowNum, Message: "missing employee_email"})
			continue
		}
		if err := ValidateTitle(title); err != nil {
			rowErrs = append(rowErrs, BulkRowError{Row: rowNum, Message: fmt.Sprintf("title must be at least %d characters", MinTitleLength)})
			continue
		}
		startDate, ok := parseBulkDate(cell("start_date"))
		if !ok {
			rowErrs = append(rowErrs, BulkRowError{Row: rowNum, Message: "invalid or missing start_date (use YYYY-MM-DD)"})
			continue
		}
		targetDate, ok := parseBulkDate(cell("target_date"))
		if !ok {
			rowErrs = append(rowErrs, BulkRowError{Row: rowNum, Message: "invalid or missing target_date (use YYYY-MM-DD)"})
			continue
		}

		// Unknown enum values fall back to the defaults rather than
		// rejecting the row.
		category := strings.ToLower(cell("category"))
		if ValidateCategory(category) != nil {
			category = CategoryPerformance
		}
		priority := strings.ToLower(cell("priority"))
		if ValidatePriority(priority) != nil {
			priority = PriorityMedium
		}

		var keyResults []string
		for _, name := range []string{"key_result_1", "key_result_2", "key_result_3"} {
			if kr := cell(name); kr != "" {
				keyResults = append(keyResults, kr)
			}
		}

		parsed = append(parsed, BulkRow{
			RowNumber:     rowNum,
			EmployeeEmail: email,
			Title:         title,
			Description:   cell("description"),
			Category:      category,
			Priority:      priority,
			StartDate:     startDate,
			TargetDate:    targetDate,
			KeyResults:    keyResults,
		})
	}
	return parsed, skipped, rowErrs, nil
}

// parseBulkDate tolerates the formats Excel tends to hand back for a date
// cell alongside the documented YYYY-MM-DD.
func parseBulkDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02", "01-02-06", "1/2/06", "01/02/2006"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
