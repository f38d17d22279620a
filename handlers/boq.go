package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/services"
	"roadworks/templates"
)

// HandleBoqSheetList returns a handler that renders the BOQ sheets of a
// project with per-sheet line counts and totals.
func HandleBoqSheetList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return e.String(http.StatusNotFound, "Project not found")
		}

		sheets, err := app.FindRecordsByFilter(
			"boq_sheets",
			"project = {:project}",
			"kind, title", 0, 0,
			map[string]any{"project": projectID},
		)
		if err != nil {
			log.Printf("boq_list: could not query sheets of %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		data := templates.BoqSheetListData{
			Header:    GetHeaderData(e.Request),
			ProjectID: projectID,
		}
		for _, sheet := range sheets {
			lines, err := app.FindRecordsByFilter(
				"boq_items",
				"sheet = {:sheet} && is_active = true",
				"", 0, 0,
				map[string]any{"sheet": sheet.Id},
			)
			if err != nil {
				log.Printf("boq_list: could not query lines of %s: %v", sheet.Id, err)
				lines = nil
			}

			var total float64
			for _, line := range lines {
				if line.GetString("tone") == "ITEM" {
					total += line.GetFloat("total_price")
				}
			}

			data.Sheets = append(data.Sheets, templates.BoqSheetListRow{
				ID:    sheet.Id,
				Title: sheet.GetString("title"),
				Kind:  sheet.GetString("kind"),
				Lines: len(lines),
				Total: services.FormatMoney(total),
			})
		}

		component := templates.BoqSheetListPage(data)
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleBoqSheetView returns a handler that renders one BOQ sheet with its
// lines in display order.
func HandleBoqSheetView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sheetID := e.Request.PathValue("id")

		data, err := services.BuildBoqExportData(app, sheetID)
		if err != nil {
			return respondError(e, "boq_view", err)
		}

		page := templates.BoqSheetData{
			Header:    GetHeaderData(e.Request),
			SheetID:   sheetID,
			ProjectID: e.Request.PathValue("projectId"),
			Title:     data.Title,
			Kind:      data.Kind,
			Total:     services.FormatMoney(data.TotalAmount),
		}
		for _, row := range data.Rows {
			sheetRow := templates.BoqSheetRow{
				Code:          row.Code,
				DesignationEN: row.DesignationEN,
				DesignationFR: row.DesignationFR,
				Unit:          row.Unit,
				Tone:          row.Tone,
				IsActive:      true,
			}
			if row.Tone == "ITEM" {
				sheetRow.Quantity = services.FormatQuantity(row.Quantity)
				sheetRow.UnitPrice = services.FormatMoney(row.UnitPrice)
				sheetRow.TotalPrice = services.FormatMoney(row.TotalPrice)
			}
			page.Rows = append(page.Rows, sheetRow)
		}

		component := templates.BoqSheetPage(page)
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleBoqItemPatch returns a handler that updates single fields of a BOQ
// line (auto-save from the sheet editor). Quantity or price changes
// recompute the line total.
func HandleBoqItemPatch(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("itemId")

		item, err := app.FindRecordById("boq_items", itemID)
		if err != nil {
			return e.String(http.StatusNotFound, "BOQ item not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			log.Printf("boq_patch: could not parse form: %v", err)
			return e.String(http.StatusBadRequest, "Invalid form data")
		}

		for field, values := range e.Request.PostForm {
			if len(values) == 0 {
				continue
			}
			value := strings.TrimSpace(values[0])
			switch field {
			case "designation_en", "designation_fr", "code", "unit":
				item.Set(field, value)
			case "quantity", "unit_price":
				num, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return ErrorToast(e, http.StatusBadRequest, field+" must be a number")
				}
				item.Set(field, num)
			case "is_active":
				item.Set("is_active", value == "true" || value == "on")
			}
		}
		item.Set("total_price", item.GetFloat("quantity")*item.GetFloat("unit_price"))

		if err := app.Save(item); err != nil {
			log.Printf("boq_patch: could not save item: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.NoContent(http.StatusNoContent)
	}
}

// HandleBoqItemCreate returns a handler that appends a line to a BOQ sheet
// from a form submission. ITEM lines get their total computed; heading
// tones carry no pricing.
func HandleBoqItemCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sheetID := e.Request.PathValue("id")
		sheet, err := app.FindRecordById("boq_sheets", sheetID)
		if err != nil {
			return e.String(http.StatusNotFound, "BOQ sheet not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			log.Printf("boq_item_create: could not parse form: %v", err)
			return e.String(http.StatusBadRequest, "Invalid form data")
		}

		code := strings.TrimSpace(e.Request.FormValue("code"))
		if code == "" {
			return ErrorToast(e, http.StatusBadRequest, "Code is required")
		}
		tone := e.Request.FormValue("tone")
		switch tone {
		case "":
			tone = "ITEM"
		case "SECTION", "SUBSECTION", "ITEM", "TOTAL":
		default:
			return ErrorToast(e, http.StatusBadRequest, "Unknown tone "+tone)
		}

		var quantity, unitPrice float64
		if tone == "ITEM" {
			for field, dst := range map[string]*float64{
				"quantity":   &quantity,
				"unit_price": &unitPrice,
			} {
				raw := strings.TrimSpace(e.Request.FormValue(field))
				if raw == "" {
					continue
				}
				num, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return ErrorToast(e, http.StatusBadRequest, field+" must be a number")
				}
				*dst = num
			}
		}

		itemsCol, err := app.FindCollectionByNameOrId("boq_items")
		if err != nil {
			log.Printf("boq_item_create: could not find boq_items collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		existing, err := app.FindRecordsByFilter(
			"boq_items",
			"sheet = {:sheet}",
			"", 0, 0,
			map[string]any{"sheet": sheet.Id},
		)
		if err != nil {
			log.Printf("boq_item_create: could not count lines of %s: %v", sheet.Id, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		record := core.NewRecord(itemsCol)
		record.Set("sheet", sheet.Id)
		record.Set("code", code)
		record.Set("designation_en", strings.TrimSpace(e.Request.FormValue("designation_en")))
		record.Set("designation_fr", strings.TrimSpace(e.Request.FormValue("designation_fr")))
		record.Set("unit", strings.TrimSpace(e.Request.FormValue("unit")))
		record.Set("tone", tone)
		record.Set("quantity", quantity)
		record.Set("unit_price", unitPrice)
		record.Set("total_price", quantity*unitPrice)
		record.Set("is_active", true)
		record.Set("sort_order", len(existing)+1)

		if err := app.Save(record); err != nil {
			log.Printf("boq_item_create: could not save line: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		SetToast(e, "success", "Line "+code+" added")
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleBoqExportExcel returns a handler that streams a BOQ sheet as an
// Excel download.
func HandleBoqExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sheetID := e.Request.PathValue("id")

		data, err := services.BuildBoqExportData(app, sheetID)
		if err != nil {
			return respondError(e, "boq_export_excel", err)
		}

		fileBytes, err := services.GenerateBoqExcel(data)
		if err != nil {
			return respondError(e, "boq_export_excel", err)
		}

		filename := fmt.Sprintf("boq-%s.xlsx", sheetID)
		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		_, err = e.Response.Write(fileBytes)
		return err
	}
}
