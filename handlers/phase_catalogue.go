package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/services"
	"roadworks/templates"
)

// HandlePhaseCatalogue returns a handler that renders the phase catalogue:
// every phase definition with its items and formula expressions.
func HandlePhaseCatalogue(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		defsCol, err := app.FindCollectionByNameOrId("phase_definitions")
		if err != nil {
			log.Printf("phase_catalogue: could not find phase_definitions collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		defs, err := app.FindAllRecords(defsCol)
		if err != nil {
			log.Printf("phase_catalogue: could not load phase definitions: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		data := templates.PhaseCatalogueData{Header: GetHeaderData(e.Request)}
		for _, def := range defs {
			group := templates.PhaseCatalogueGroup{
				ID:   def.Id,
				Name: def.GetString("name"),
			}

			items, err := app.FindRecordsByFilter(
				"phase_items",
				"phase_definition = {:def}",
				"sort_order", 0, 0,
				map[string]any{"def": def.Id},
			)
			if err != nil {
				log.Printf("phase_catalogue: could not load items of %s: %v", def.Id, err)
				continue
			}

			for _, item := range items {
				row := templates.PhaseItemRow{
					ID:          item.Id,
					Name:        item.GetString("name"),
					MeasureMode: item.GetString("measure_mode"),
					Unit:        item.GetString("unit"),
					IsActive:    item.GetBool("is_active"),
				}
				if expression, _, _, ok := services.LoadFormula(app, item.Id); ok {
					row.Expression = expression
				}
				group.Items = append(group.Items, row)
			}
			data.Phases = append(data.Phases, group)
		}

		component := templates.PhaseCataloguePage(data)
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandlePhaseDefinitionCreate returns a handler that adds a phase
// definition to the catalogue.
func HandlePhaseDefinitionCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			log.Printf("phase_def_create: could not parse form: %v", err)
			return e.String(http.StatusBadRequest, "Invalid form data")
		}

		name := strings.TrimSpace(e.Request.FormValue("name"))
		if name == "" {
			return ErrorToast(e, http.StatusBadRequest, "Phase name is required")
		}

		defsCol, err := app.FindCollectionByNameOrId("phase_definitions")
		if err != nil {
			log.Printf("phase_def_create: could not find phase_definitions collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		existing, err := app.FindAllRecords(defsCol)
		if err != nil {
			log.Printf("phase_def_create: could not count definitions: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		record := core.NewRecord(defsCol)
		record.Set("name", name)
		record.Set("sort_order", len(existing)+1)

		if err := app.Save(record); err != nil {
			log.Printf("phase_def_create: could not save definition: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		SetToast(e, "success", "Phase "+name+" created")
		return e.Redirect(http.StatusFound, "/phases")
	}
}

// HandlePhaseItemCreate returns a handler that creates a phase item under a
// phase definition from a form submission.
func HandlePhaseItemCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		defID := e.Request.PathValue("defId")
		if _, err := app.FindRecordById("phase_definitions", defID); err != nil {
			return e.String(http.StatusNotFound, "Phase definition not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			log.Printf("phase_item_create: could not parse form: %v", err)
			return e.String(http.StatusBadRequest, "Invalid form data")
		}

		name := strings.TrimSpace(e.Request.FormValue("name"))
		if name == "" {
			return ErrorToast(e, http.StatusBadRequest, "Item name is required")
		}
		measureMode := e.Request.FormValue("measure_mode")
		if measureMode == "" {
			measureMode = "LINEAR"
		}

		itemsCol, err := app.FindCollectionByNameOrId("phase_items")
		if err != nil {
			log.Printf("phase_item_create: could not find phase_items collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		record := core.NewRecord(itemsCol)
		record.Set("phase_definition", defID)
		record.Set("name", name)
		record.Set("specification", strings.TrimSpace(e.Request.FormValue("specification")))
		record.Set("measure_mode", measureMode)
		record.Set("unit", e.Request.FormValue("unit"))
		record.Set("is_active", true)
		record.Set("sort_order", 1)

		if err := app.Save(record); err != nil {
			log.Printf("phase_item_create: could not save item: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		SetToast(e, "success", "Phase item created")
		return e.Redirect(http.StatusFound, "/phases")
	}
}

// HandlePhaseItemEdit returns a handler that updates the descriptive fields
// of a phase item from a form submission. Only submitted fields change.
func HandlePhaseItemEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")

		item, err := app.FindRecordById("phase_items", itemID)
		if err != nil {
			return e.String(http.StatusNotFound, "Phase item not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			log.Printf("phase_item_edit: could not parse form: %v", err)
			return e.String(http.StatusBadRequest, "Invalid form data")
		}

		for field, values := range e.Request.PostForm {
			if len(values) == 0 {
				continue
			}
			value := strings.TrimSpace(values[0])
			switch field {
			case "name":
				if value == "" {
					return ErrorToast(e, http.StatusBadRequest, "Item name is required")
				}
				item.Set("name", value)
			case "specification", "unit":
				item.Set(field, value)
			case "measure_mode":
				if value != "LINEAR" && value != "POINT" {
					return ErrorToast(e, http.StatusBadRequest, "Unknown measure mode "+value)
				}
				item.Set("measure_mode", value)
			}
		}

		if err := app.Save(item); err != nil {
			log.Printf("phase_item_edit: could not save item: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		SetToast(e, "success", "Updated "+item.GetString("name"))
		return e.NoContent(http.StatusNoContent)
	}
}

// HandlePhaseItemDeactivate returns a handler that soft-deactivates a phase
// item. Measurements stay in place; the item stops accepting new ones and
// drops out of binding lookups.
func HandlePhaseItemDeactivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")

		item, err := app.FindRecordById("phase_items", itemID)
		if err != nil {
			return e.String(http.StatusNotFound, "Phase item not found")
		}

		item.Set("is_active", false)
		if err := app.Save(item); err != nil {
			log.Printf("phase_item_deactivate: could not save item: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		SetToast(e, "success", "Deactivated "+item.GetString("name"))
		return e.NoContent(http.StatusNoContent)
	}
}
