package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateBoqExcel creates an Excel file from the given BoqExportData and
// returns the file contents as a byte slice.
func GenerateBoqExcel(data BoqExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Determine sheet name (max 31 chars).
	sheetName := data.Title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "BOQ"
	}

	// Rename default sheet.
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Column references (A through G).
	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1] // "G"

	// Set column widths.
	widths := []float64{10, 42, 42, 8, 12, 14, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// Section/subsection headings: bold with borders.
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}

	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if data.ProjectName != "" {
		if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
			return nil, fmt.Errorf("merge project: %w", err)
		}
		f.SetCellValue(sheetName, "A2", fmt.Sprintf("Project: %s (%s sheet)", data.ProjectName, data.Kind))
		f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)
	}

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "Date: "+data.Date)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// ── Row 5: Column Headers ───────────────────────────────────────────

	headers := []string{"Code", "Designation", "Désignation", "Unit", "Qty", "Unit Price", "Total"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s5", columns[i])
		f.SetCellValue(sheetName, cell, h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// ── Data Rows (starting row 6) ──────────────────────────────────────

	row := 6
	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(r.Code))

		// Indent ITEM designations under their section headings.
		descEN := r.DesignationEN
		descFR := r.DesignationFR
		if r.Tone == "ITEM" {
			descEN = "  " + descEN
			descFR = "  " + descFR
		}
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(descEN))
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(descFR))

		// Quantities and prices only make sense on ITEM rows.
		if r.Tone == "ITEM" {
			f.SetCellValue(sheetName, "D"+rowStr, sanitizeExcelCell(r.Unit))
			f.SetCellValue(sheetName, "E"+rowStr, r.Quantity)
			f.SetCellValue(sheetName, "F"+rowStr, FormatMoney(r.UnitPrice))
			f.SetCellValue(sheetName, "G"+rowStr, FormatMoney(r.TotalPrice))
		}

		style := itemStyle
		if r.Tone != "ITEM" {
			style = sectionStyle
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, style)

		row++
	}

	// ── Summary Row ─────────────────────────────────────────────────────

	row++
	summaryRow := fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "F"+summaryRow, "Grand Total:")
	f.SetCellStyle(sheetName, "F"+summaryRow, "F"+summaryRow, summaryLabelStyle)
	f.SetCellValue(sheetName, "G"+summaryRow, FormatMoney(data.TotalAmount))
	f.SetCellStyle(sheetName, "G"+summaryRow, "G"+summaryRow, summaryValueStyle)

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// thinBorders returns a thin border on all four sides.
func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#CCCCCC", Style: 1},
		{Type: "right", Color: "#CCCCCC", Style: 1},
		{Type: "top", Color: "#CCCCCC", Style: 1},
		{Type: "bottom", Color: "#CCCCCC", Style: 1},
	}
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
