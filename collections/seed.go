package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type variableDef struct {
	name  string
	label string
	unit  string
}

type itemDef struct {
	sortOrder     int
	name          string
	specification string
	measureMode   string
	unit          string
	expression    string
	variables     []variableDef
}

type phaseDef struct {
	sortOrder int
	name      string
	items     []itemDef
}

type boqLineDef struct {
	sortOrder     int
	code          string
	designationEN string
	designationFR string
	unit          string
	quantity      float64
	unitPrice     float64
	tone          string
}

// phaseCatalogue is the default road-construction phase catalogue.
var phaseCatalogue = []phaseDef{
	{
		sortOrder: 1,
		name:      "Earthworks",
		items: []itemDef{
			{
				sortOrder:     1,
				name:          "Excavation to formation level",
				specification: "Cut to design profile incl. haulage",
				measureMode:   "LINEAR",
				unit:          "m3",
				expression:    "length * width * depth",
				variables: []variableDef{
					{name: "length", label: "Length", unit: "m"},
					{name: "width", label: "Width", unit: "m"},
					{name: "depth", label: "Depth", unit: "m"},
				},
			},
			{
				sortOrder:     2,
				name:          "Backfill including base layer",
				specification: "Compacted in 20cm layers",
				measureMode:   "LINEAR",
				unit:          "m3",
				expression:    "length * width * thickness",
				variables: []variableDef{
					{name: "length", label: "Length", unit: "m"},
					{name: "width", label: "Width", unit: "m"},
					{name: "thickness", label: "Thickness", unit: "m"},
				},
			},
		},
	},
	{
		sortOrder: 2,
		name:      "Base layer",
		items: []itemDef{
			{
				sortOrder:     1,
				name:          "Crushed stone base course",
				specification: "GNT 0/31.5",
				measureMode:   "LINEAR",
				unit:          "m3",
				expression:    "length * width * thickness",
				variables: []variableDef{
					{name: "length", label: "Length", unit: "m"},
					{name: "width", label: "Width", unit: "m"},
					{name: "thickness", label: "Thickness", unit: "m"},
				},
			},
		},
	},
	{
		sortOrder: 3,
		name:      "Wearing course",
		items: []itemDef{
			{
				sortOrder:     1,
				name:          "Asphalt concrete overlay",
				specification: "BBSG 0/10, 6cm",
				measureMode:   "LINEAR",
				unit:          "t",
				expression:    "length * width * thickness * density",
				variables: []variableDef{
					{name: "length", label: "Length", unit: "m"},
					{name: "width", label: "Width", unit: "m"},
					{name: "thickness", label: "Thickness", unit: "m"},
					{name: "density", label: "Density", unit: "t/m3"},
				},
			},
		},
	},
	{
		sortOrder: 4,
		name:      "Drainage & signage",
		items: []itemDef{
			{
				sortOrder:   1,
				name:        "Concrete lined ditch",
				measureMode: "LINEAR",
				unit:        "ml",
			},
			{
				sortOrder:   2,
				name:        "Road sign installation",
				measureMode: "POINT",
				unit:        "u",
			},
		},
	},
}

// contractBoq is the seeded CONTRACT sheet for the demo project.
var contractBoq = []boqLineDef{
	{1, "100", "Earthworks", "Terrassements", "", 0, 0, "SECTION"},
	{2, "101", "Excavation to formation level", "Déblais", "m3", 12000, 8.5, "ITEM"},
	{3, "102", "Backfill including base layer", "Remblais", "m3", 9500, 11.2, "ITEM"},
	{4, "200", "Pavement", "Chaussée", "", 0, 0, "SECTION"},
	{5, "201", "Crushed stone base course", "Grave non traitée", "m3", 6400, 26.0, "ITEM"},
	{6, "202", "Asphalt concrete overlay", "Béton bitumineux", "t", 4100, 95.0, "ITEM"},
	{7, "300", "Drainage & signage", "Assainissement et signalisation", "", 0, 0, "SECTION"},
	{8, "301", "Concrete lined ditch", "Fossé bétonné", "ml", 3800, 32.0, "ITEM"},
	{9, "302", "Road sign installation", "Pose de panneaux", "u", 46, 180.0, "ITEM"},
	{10, "999", "Grand total", "Total général", "", 0, 0, "TOTAL"},
}

// Seed inserts the default phase catalogue plus a demo project with one
// road, instantiated phases, intervals and a CONTRACT BOQ sheet.
// Returns early if any project records already exist.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if projects already exist ──────────────────
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: projects collection is empty – inserting seed data …")

	// ── lookup helper collections ────────────────────────────────────
	roadsCol, err := app.FindCollectionByNameOrId("roads")
	if err != nil {
		return fmt.Errorf("seed: could not find roads collection: %w", err)
	}
	phaseDefsCol, err := app.FindCollectionByNameOrId("phase_definitions")
	if err != nil {
		return fmt.Errorf("seed: could not find phase_definitions collection: %w", err)
	}
	phaseItemsCol, err := app.FindCollectionByNameOrId("phase_items")
	if err != nil {
		return fmt.Errorf("seed: could not find phase_items collection: %w", err)
	}
	formulasCol, err := app.FindCollectionByNameOrId("phase_item_formulas")
	if err != nil {
		return fmt.Errorf("seed: could not find phase_item_formulas collection: %w", err)
	}
	phasesCol, err := app.FindCollectionByNameOrId("phases")
	if err != nil {
		return fmt.Errorf("seed: could not find phases collection: %w", err)
	}
	intervalsCol, err := app.FindCollectionByNameOrId("intervals")
	if err != nil {
		return fmt.Errorf("seed: could not find intervals collection: %w", err)
	}
	sheetsCol, err := app.FindCollectionByNameOrId("boq_sheets")
	if err != nil {
		return fmt.Errorf("seed: could not find boq_sheets collection: %w", err)
	}
	boqItemsCol, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		return fmt.Errorf("seed: could not find boq_items collection: %w", err)
	}

	// ── phase catalogue ──────────────────────────────────────────────
	defIDs := make(map[string]string, len(phaseCatalogue))
	for _, pd := range phaseCatalogue {
		defRecord := core.NewRecord(phaseDefsCol)
		defRecord.Set("name", pd.name)
		defRecord.Set("sort_order", pd.sortOrder)
		if err := app.Save(defRecord); err != nil {
			return fmt.Errorf("seed: save phase definition %q: %w", pd.name, err)
		}
		defIDs[pd.name] = defRecord.Id

		for _, item := range pd.items {
			itemRecord := core.NewRecord(phaseItemsCol)
			itemRecord.Set("phase_definition", defRecord.Id)
			itemRecord.Set("name", item.name)
			itemRecord.Set("specification", item.specification)
			itemRecord.Set("measure_mode", item.measureMode)
			itemRecord.Set("unit", item.unit)
			itemRecord.Set("is_active", true)
			itemRecord.Set("sort_order", item.sortOrder)
			if err := app.Save(itemRecord); err != nil {
				return fmt.Errorf("seed: save phase item %q: %w", item.name, err)
			}

			if item.expression == "" {
				continue
			}
			variables := make([]map[string]any, 0, len(item.variables))
			for _, v := range item.variables {
				variables = append(variables, map[string]any{
					"name":  v.name,
					"label": v.label,
					"unit":  v.unit,
				})
			}
			formulaRecord := core.NewRecord(formulasCol)
			formulaRecord.Set("phase_item", itemRecord.Id)
			formulaRecord.Set("expression", item.expression)
			formulaRecord.Set("variables", variables)
			formulaRecord.Set("unit", item.unit)
			if err := app.Save(formulaRecord); err != nil {
				return fmt.Errorf("seed: save formula for %q: %w", item.name, err)
			}
		}
	}

	// ── demo project, road, phases, intervals ────────────────────────
	project := core.NewRecord(projectsCol)
	project.Set("name", "RN12 Rehabilitation")
	project.Set("code", "RN12")
	project.Set("client", "Regional Roads Authority")
	project.Set("status", "active")
	if err := app.Save(project); err != nil {
		return fmt.Errorf("seed: save demo project: %w", err)
	}

	road := core.NewRecord(roadsCol)
	road.Set("project", project.Id)
	road.Set("name", "RN12 Section 3")
	road.Set("code", "RN12-S3")
	road.Set("length_m", 4500.0)
	if err := app.Save(road); err != nil {
		return fmt.Errorf("seed: save demo road: %w", err)
	}

	for _, pd := range phaseCatalogue {
		phase := core.NewRecord(phasesCol)
		phase.Set("road", road.Id)
		phase.Set("phase_definition", defIDs[pd.name])
		if err := app.Save(phase); err != nil {
			return fmt.Errorf("seed: save phase %q: %w", pd.name, err)
		}

		// three 1.5km intervals per phase
		for i := 0; i < 3; i++ {
			interval := core.NewRecord(intervalsCol)
			interval.Set("phase", phase.Id)
			interval.Set("start_pos", float64(i)*1500)
			interval.Set("end_pos", float64(i+1)*1500)
			interval.Set("side", "BOTH")
			interval.Set("bill_quantity", 1500.0)
			if err := app.Save(interval); err != nil {
				return fmt.Errorf("seed: save interval %d of %q: %w", i+1, pd.name, err)
			}
		}
	}

	// ── contract BOQ sheet ───────────────────────────────────────────
	sheet := core.NewRecord(sheetsCol)
	sheet.Set("project", project.Id)
	sheet.Set("kind", "CONTRACT")
	sheet.Set("title", "RN12 Section 3 — Contract BOQ")
	if err := app.Save(sheet); err != nil {
		return fmt.Errorf("seed: save contract sheet: %w", err)
	}

	for _, line := range contractBoq {
		item := core.NewRecord(boqItemsCol)
		item.Set("sheet", sheet.Id)
		item.Set("code", line.code)
		item.Set("designation_en", line.designationEN)
		item.Set("designation_fr", line.designationFR)
		item.Set("unit", line.unit)
		item.Set("quantity", line.quantity)
		item.Set("unit_price", line.unitPrice)
		item.Set("total_price", line.quantity*line.unitPrice)
		item.Set("tone", line.tone)
		item.Set("is_active", true)
		item.Set("sort_order", line.sortOrder)
		if err := app.Save(item); err != nil {
			return fmt.Errorf("seed: save BOQ line %q: %w", line.code, err)
		}
	}

	log.Println("seed: done.")
	return nil
}
