package collections_test

import (
	"testing"

	"roadworks/collections"
	"roadworks/testhelpers"
)

func TestMigrateActualSheets_ClonesContract(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Clone Project")
	contract := testhelpers.CreateTestBoqSheet(t, app, project.Id, "CONTRACT", "Contract BOQ")
	testhelpers.CreateTestBoqItem(t, app, contract.Id, "100", "SECTION", true)
	testhelpers.CreateTestBoqItem(t, app, contract.Id, "101", "ITEM", true)

	if err := collections.MigrateActualSheets(app); err != nil {
		t.Fatalf("MigrateActualSheets() error: %v", err)
	}

	actuals, err := app.FindRecordsByFilter(
		"boq_sheets",
		"project = {:project} && kind = 'ACTUAL'",
		"", 0, 0,
		map[string]any{"project": project.Id},
	)
	if err != nil || len(actuals) != 1 {
		t.Fatalf("expected 1 actual sheet, got %d (%v)", len(actuals), err)
	}
	if actuals[0].GetString("title") != "Contract BOQ (as-built)" {
		t.Errorf("actual title = %q", actuals[0].GetString("title"))
	}

	lines, err := app.FindRecordsByFilter(
		"boq_items",
		"sheet = {:sheet}",
		"sort_order", 0, 0,
		map[string]any{"sheet": actuals[0].Id},
	)
	if err != nil || len(lines) != 2 {
		t.Fatalf("expected 2 cloned lines, got %d (%v)", len(lines), err)
	}
	for _, line := range lines {
		if line.GetString("sheet") != actuals[0].Id {
			t.Errorf("clone points at sheet %q", line.GetString("sheet"))
		}
	}
}

func TestMigrateActualSheets_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Clone Project")
	contract := testhelpers.CreateTestBoqSheet(t, app, project.Id, "CONTRACT", "Contract BOQ")
	testhelpers.CreateTestBoqItem(t, app, contract.Id, "101", "ITEM", true)

	if err := collections.MigrateActualSheets(app); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if err := collections.MigrateActualSheets(app); err != nil {
		t.Fatalf("second run error: %v", err)
	}

	actuals, _ := app.FindRecordsByFilter(
		"boq_sheets",
		"project = {:project} && kind = 'ACTUAL'",
		"", 0, 0,
		map[string]any{"project": project.Id},
	)
	if len(actuals) != 1 {
		t.Errorf("second run duplicated the actual sheet: %d", len(actuals))
	}
}

func TestMigrateActualSheets_NothingToDo(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.MigrateActualSheets(app); err != nil {
		t.Errorf("empty database should migrate cleanly, got %v", err)
	}
}
