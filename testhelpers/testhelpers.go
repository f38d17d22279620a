// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProject creates a project record with the given name and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestRoad creates a road record linked to a project and returns it.
func CreateTestRoad(t *testing.T, app *pocketbase.PocketBase, projectID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("roads")
	if err != nil {
		t.Fatalf("failed to find roads collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("name", name)
	record.Set("length_m", 4500.0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test road: %v", err)
	}

	return record
}

// CreateTestPhaseDefinition creates a phase catalogue entry.
func CreateTestPhaseDefinition(t *testing.T, app *pocketbase.PocketBase, name string, sortOrder int) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("phase_definitions")
	if err != nil {
		t.Fatalf("failed to find phase_definitions collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("sort_order", sortOrder)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test phase definition: %v", err)
	}

	return record
}

// CreateTestPhaseItem creates an active phase item under a phase definition.
func CreateTestPhaseItem(t *testing.T, app *pocketbase.PocketBase, phaseDefID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("phase_items")
	if err != nil {
		t.Fatalf("failed to find phase_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("phase_definition", phaseDefID)
	record.Set("name", name)
	record.Set("measure_mode", "LINEAR")
	record.Set("unit", "m3")
	record.Set("is_active", true)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test phase item: %v", err)
	}

	return record
}

// CreateTestFormula creates a formula for a phase item.
func CreateTestFormula(t *testing.T, app *pocketbase.PocketBase, phaseItemID, expression string, variables []map[string]any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("phase_item_formulas")
	if err != nil {
		t.Fatalf("failed to find phase_item_formulas collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("phase_item", phaseItemID)
	record.Set("expression", expression)
	record.Set("variables", variables)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test formula: %v", err)
	}

	return record
}

// CreateTestPhase instantiates a phase definition on a road.
func CreateTestPhase(t *testing.T, app *pocketbase.PocketBase, roadID, phaseDefID string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("phases")
	if err != nil {
		t.Fatalf("failed to find phases collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("road", roadID)
	record.Set("phase_definition", phaseDefID)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test phase: %v", err)
	}

	return record
}

// CreateTestInterval creates an interval under a phase.
func CreateTestInterval(t *testing.T, app *pocketbase.PocketBase, phaseID string, startPos, endPos, billQty float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("intervals")
	if err != nil {
		t.Fatalf("failed to find intervals collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("phase", phaseID)
	record.Set("start_pos", startPos)
	record.Set("end_pos", endPos)
	record.Set("side", "BOTH")
	record.Set("bill_quantity", billQty)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test interval: %v", err)
	}

	return record
}

// CreateTestBoqSheet creates a BOQ sheet for a project.
func CreateTestBoqSheet(t *testing.T, app *pocketbase.PocketBase, projectID, kind, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("boq_sheets")
	if err != nil {
		t.Fatalf("failed to find boq_sheets collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("kind", kind)
	record.Set("title", title)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test BOQ sheet: %v", err)
	}

	return record
}

// CreateTestBoqItem creates a BOQ line with the given tone on a sheet.
func CreateTestBoqItem(t *testing.T, app *pocketbase.PocketBase, sheetID, code, tone string, active bool) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		t.Fatalf("failed to find boq_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("sheet", sheetID)
	record.Set("code", code)
	record.Set("designation_en", "Test designation "+code)
	record.Set("unit", "m3")
	record.Set("unit_price", 120.0)
	record.Set("quantity", 1000.0)
	record.Set("total_price", 120000.0)
	record.Set("tone", tone)
	record.Set("is_active", active)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test BOQ item: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
