// Package collections creates the application's PocketBase collections and
// seeds reference data.
package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures all collections used by the app:
// projects, roads, the phase catalogue, intervals, measurement rows, BOQ
// sheets/items and phase-item↔BOQ links.
func Setup(app *pocketbase.PocketBase) {
	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.TextField{Name: "client", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "archived"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	roads := ensureCollection(app, "roads", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.NumberField{Name: "length_m", Required: false})
	})

	phaseDefinitions := ensureCollection(app, "phase_definitions", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
	})

	phaseItems := ensureCollection(app, "phase_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "phase_definition",
			Required:      true,
			CollectionId:  phaseDefinitions.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "specification", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "measure_mode",
			Required:  true,
			Values:    []string{"LINEAR", "POINT"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false})
		c.Fields.Add(&core.BoolField{Name: "is_active"})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
	})

	ensureCollection(app, "phase_item_formulas", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "phase_item",
			Required:      true,
			CollectionId:  phaseItems.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "expression", Required: true})
		// ordered list of {name, label, unit} objects
		c.Fields.Add(&core.JSONField{Name: "variables"})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false})
	})

	phases := ensureCollection(app, "phases", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "road",
			Required:      true,
			CollectionId:  roads.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "phase_definition",
			Required:      true,
			CollectionId:  phaseDefinitions.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
	})

	intervals := ensureCollection(app, "intervals", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "phase",
			Required:      true,
			CollectionId:  phases.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "start_pos", Required: false})
		c.Fields.Add(&core.NumberField{Name: "end_pos", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "side",
			Required:  true,
			Values:    []string{"LEFT", "RIGHT", "BOTH"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "bill_quantity", Required: false})
	})

	ensureCollection(app, "phase_item_inputs", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "phase_item",
			Required:      true,
			CollectionId:  phaseItems.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "interval",
			Required:      true,
			CollectionId:  intervals.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.JSONField{Name: "values"})
		// JSON so null (unmeasured) stays distinct from a measured 0
		c.Fields.Add(&core.JSONField{Name: "manual_quantity"})
		c.Fields.Add(&core.JSONField{Name: "computed_quantity"})
		c.Fields.Add(&core.TextField{Name: "computed_error", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	boqSheets := ensureCollection(app, "boq_sheets", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"CONTRACT", "ACTUAL"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})

	boqItems := ensureCollection(app, "boq_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "sheet",
			Required:      true,
			CollectionId:  boqSheets.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.TextField{Name: "designation_en", Required: false})
		c.Fields.Add(&core.TextField{Name: "designation_fr", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false})
		c.Fields.Add(&core.NumberField{Name: "unit_price", Required: false})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total_price", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "tone",
			Required:  true,
			Values:    []string{"SECTION", "SUBSECTION", "ITEM", "TOTAL"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.BoolField{Name: "is_active"})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
	})

	ensureCollection(app, "phase_item_boq_links", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "phase_item",
			Required:      true,
			CollectionId:  phaseItems.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "boq_item",
			Required:      true,
			CollectionId:  boqItems.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		// set only on the legacy single-binding path
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      false,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.BoolField{Name: "is_active"})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
