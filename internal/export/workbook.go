// Package export writes a test case collection to an xlsx workbook and
// to/from the JSON interchange file used between CLI invocations.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/RUBESHR7/compass-qa/internal/logging"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// DefaultSheetName is the worksheet holding the cases.
const DefaultSheetName = "Test Cases"

// ErrNothingToExport is returned for an empty collection.
var ErrNothingToExport = errors.New("no test cases to export")

// Column is one fixed workbook column.
type Column struct {
	Header string
	Width  float64
	// CaseLevel columns hold test case fields: written on the first step
	// row only and merged across the case's rows.
	CaseLevel bool
	value     func(tc *testcase.TestCase, st *testcase.Step) any
}

// Columns is the workbook layout, A through N.
var Columns = []Column{
	{"Test Case ID", 15, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return tc.ID }},
	{"Summary", 30, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return tc.Summary }},
	{"Test Case Description", 40, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return tc.Description }},
	{"Precondition", 30, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return tc.PreConditions }},
	{"Test Steps", 10, false, func(_ *testcase.TestCase, st *testcase.Step) any { return st.StepNumber }},
	{"Step Description", 40, false, func(_ *testcase.TestCase, st *testcase.Step) any { return st.Description }},
	{"Step Input Data", 20, false, func(_ *testcase.TestCase, st *testcase.Step) any { return st.InputData }},
	{"Step Expected Outcome", 30, false, func(_ *testcase.TestCase, st *testcase.Step) any { return st.ExpectedOutcome }},
	{"Label", 15, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return tc.Label }},
	{"Priority", 10, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return string(tc.Priority) }},
	{"Status", 10, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return tc.Status }},
	{"Execution Minutes", 15, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return tc.ExecutionMinutes }},
	{"Case Folder", 20, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return tc.CaseFolder }},
	{"Test Category", 20, true, func(tc *testcase.TestCase, _ *testcase.Step) any { return tc.TestCategory }},
}

// Options tunes the workbook.
type Options struct {
	SheetName string
}

func (o Options) sheet() string {
	if o.SheetName == "" {
		return DefaultSheetName
	}
	return o.SheetName
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// Build lays out result in a new workbook. The caller closes the file.
func Build(result *testcase.GenerationResult, opts Options) (*excelize.File, error) {
	if result == nil || len(result.TestCases) == 0 {
		return nil, ErrNothingToExport
	}
	sheet := opts.sheet()

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := layout(f, sheet, result.TestCases); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func layout(f *excelize.File, sheet string, cases []testcase.TestCase) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder,
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		Border:    thinBorder,
	})
	if err != nil {
		return fmt.Errorf("failed to create cell style: %w", err)
	}

	last, _ := excelize.ColumnNumberToName(len(Columns))
	for i, col := range Columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name+"1", col.Header); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}

	row := 2
	for i := range cases {
		tc := &cases[i]
		start := row
		for j := range tc.Steps {
			for c, col := range Columns {
				if col.CaseLevel && j > 0 {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(c+1, row)
				if err := f.SetCellValue(sheet, cell, col.value(tc, &tc.Steps[j])); err != nil {
					return err
				}
			}
			row++
		}
		end := row - 1
		if end > start {
			for c, col := range Columns {
				if !col.CaseLevel {
					continue
				}
				top, _ := excelize.CoordinatesToCellName(c+1, start)
				bottom, _ := excelize.CoordinatesToCellName(c+1, end)
				if err := f.MergeCell(sheet, top, bottom); err != nil {
					return fmt.Errorf("failed to merge %s:%s: %w", top, bottom, err)
				}
			}
		}
	}

	if row > 2 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("%s%d", last, row-1), cellStyle); err != nil {
			return err
		}
	}
	return nil
}

// WriteWorkbook writes the xlsx bytes for result to w.
func WriteWorkbook(w io.Writer, result *testcase.GenerationResult, opts Options) error {
	f, err := Build(result, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes result to dir under its suggested filename, falling
// back to fallback, and returns the path written.
func SaveWorkbook(dir string, result *testcase.GenerationResult, fallback string, opts Options) (string, error) {
	timer := logging.StartTimer(logging.CategoryExport, "SaveWorkbook")
	defer timer.Stop()

	if result == nil || len(result.TestCases) == 0 {
		return "", ErrNothingToExport
	}
	path := filepath.Join(dir, EnsureExtension(result.SuggestedFilename, fallback))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := Build(result, opts)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		logging.ExportError("failed to save workbook %s: %v", path, err)
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	logging.Export("wrote %d test cases to %s", len(result.TestCases), path)
	return path, nil
}
