package services

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// BoqExportRow is one printable BOQ line.
type BoqExportRow struct {
	Code          string
	DesignationEN string
	DesignationFR string
	Unit          string
	Quantity      float64
	UnitPrice     float64
	TotalPrice    float64
	Tone          string
}

// BoqExportData carries everything the Excel export needs for one sheet.
type BoqExportData struct {
	Title       string
	ProjectName string
	Kind        string
	Date        string
	Rows        []BoqExportRow
	TotalAmount float64
}

// BuildBoqExportData loads a BOQ sheet and its lines in display order.
// Inactive lines are skipped; the grand total sums ITEM rows only, since
// SECTION/SUBSECTION/TOTAL rows are structural.
func BuildBoqExportData(app core.App, sheetID string) (BoqExportData, error) {
	sheet, err := app.FindRecordById("boq_sheets", sheetID)
	if err != nil {
		return BoqExportData{}, &NotFoundError{Entity: "BOQ sheet", ID: sheetID}
	}

	data := BoqExportData{
		Title: sheet.GetString("title"),
		Kind:  sheet.GetString("kind"),
		Date:  time.Now().Format("2006-01-02"),
	}
	if project, err := app.FindRecordById("projects", sheet.GetString("project")); err == nil {
		data.ProjectName = project.GetString("name")
	}

	items, err := app.FindRecordsByFilter(
		"boq_items",
		"sheet = {:sheet} && is_active = true",
		"sort_order", 0, 0,
		map[string]any{"sheet": sheetID},
	)
	if err != nil {
		return BoqExportData{}, err
	}

	for _, item := range items {
		row := BoqExportRow{
			Code:          item.GetString("code"),
			DesignationEN: item.GetString("designation_en"),
			DesignationFR: item.GetString("designation_fr"),
			Unit:          item.GetString("unit"),
			Quantity:      item.GetFloat("quantity"),
			UnitPrice:     item.GetFloat("unit_price"),
			TotalPrice:    item.GetFloat("total_price"),
			Tone:          item.GetString("tone"),
		}
		if row.Tone == "ITEM" {
			data.TotalAmount += row.TotalPrice
		}
		data.Rows = append(data.Rows, row)
	}

	return data, nil
}
