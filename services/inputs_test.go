package services

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/testhelpers"
)

// measurementFixture wires a project, road, phase definition with one
// phase item (formula length * width), an instantiated phase and one
// interval.
type measurementFixture struct {
	app      *pocketbase.PocketBase
	project  *core.Record
	item     *core.Record
	interval *core.Record
}

func newMeasurementFixture(t *testing.T) measurementFixture {
	t.Helper()

	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "RN12 Rehabilitation")
	road := testhelpers.CreateTestRoad(t, app, project.Id, "RN12 Section 3")
	def := testhelpers.CreateTestPhaseDefinition(t, app, "Earthworks", 1)
	item := testhelpers.CreateTestPhaseItem(t, app, def.Id, "Excavation")
	testhelpers.CreateTestFormula(t, app, item.Id, "length * width", []map[string]any{
		{"name": "length", "unit": "m"},
		{"name": "width", "unit": "m"},
	})
	phase := testhelpers.CreateTestPhase(t, app, road.Id, def.Id)
	interval := testhelpers.CreateTestInterval(t, app, phase.Id, 0, 500, 1000)

	return measurementFixture{app: app, project: project, item: item, interval: interval}
}

func TestSavePhaseItemInputs_RoundTrip(t *testing.T) {
	fx := newMeasurementFixture(t)

	results, err := SavePhaseItemInputs(fx.app, []InputSave{{
		PhaseItemID: fx.item.Id,
		IntervalID:  fx.interval.Id,
		Values:      map[string]any{"length": "10", "width": 2},
	}})
	if err != nil {
		t.Fatalf("SavePhaseItemInputs() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Computed == nil || *results[0].Computed != 20 {
		t.Fatalf("computed = %v, want 20", results[0].Computed)
	}

	// Reload the stored row and check it resolves to the same quantity.
	record, err := fx.app.FindRecordById("phase_item_inputs", results[0].RecordID)
	if err != nil {
		t.Fatalf("failed to reload input row: %v", err)
	}
	loaded := LoadInputResult(record)
	if loaded.Computed == nil || *loaded.Computed != 20 {
		t.Errorf("reloaded computed = %v, want 20", loaded.Computed)
	}
	if eff := loaded.Effective(); eff == nil || *eff != 20 {
		t.Errorf("reloaded effective = %v, want 20", eff)
	}
}

func TestSavePhaseItemInputs_UpsertKeepsSingleRow(t *testing.T) {
	fx := newMeasurementFixture(t)

	save := InputSave{
		PhaseItemID: fx.item.Id,
		IntervalID:  fx.interval.Id,
		Values:      map[string]any{"length": 10, "width": 2},
	}
	if _, err := SavePhaseItemInputs(fx.app, []InputSave{save}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	save.Values = map[string]any{"length": 10, "width": 3}
	results, err := SavePhaseItemInputs(fx.app, []InputSave{save})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if results[0].Computed == nil || *results[0].Computed != 30 {
		t.Fatalf("computed after update = %v, want 30", results[0].Computed)
	}

	rows, err := fx.app.FindRecordsByFilter(
		"phase_item_inputs",
		"phase_item = {:item} && interval = {:interval}",
		"", 0, 0,
		map[string]any{"item": fx.item.Id, "interval": fx.interval.Id},
	)
	if err != nil {
		t.Fatalf("failed to list input rows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected a single upserted row, got %d", len(rows))
	}
}

func TestSavePhaseItemInputs_ManualOverride(t *testing.T) {
	fx := newMeasurementFixture(t)

	results, err := SavePhaseItemInputs(fx.app, []InputSave{{
		PhaseItemID:    fx.item.Id,
		IntervalID:     fx.interval.Id,
		Values:         map[string]any{"length": 1, "width": 3},
		ManualQuantity: floatPtr(7),
	}})
	if err != nil {
		t.Fatalf("SavePhaseItemInputs() error = %v", err)
	}

	record, err := fx.app.FindRecordById("phase_item_inputs", results[0].RecordID)
	if err != nil {
		t.Fatalf("failed to reload input row: %v", err)
	}
	loaded := LoadInputResult(record)
	if loaded.Manual == nil || *loaded.Manual != 7 {
		t.Errorf("manual = %v, want 7", loaded.Manual)
	}
	if loaded.Computed == nil || *loaded.Computed != 3 {
		t.Errorf("computed = %v, want 3 kept alongside the override", loaded.Computed)
	}
	if eff := loaded.Effective(); eff == nil || *eff != 7 {
		t.Errorf("effective = %v, want 7", eff)
	}
}

func TestSavePhaseItemInputs_FormulaErrorRecordedOnRow(t *testing.T) {
	fx := newMeasurementFixture(t)

	results, err := SavePhaseItemInputs(fx.app, []InputSave{{
		PhaseItemID: fx.item.Id,
		IntervalID:  fx.interval.Id,
		Values:      map[string]any{"length": 10}, // width not measured
	}})
	if err != nil {
		t.Fatalf("save should succeed despite the formula failure, got %v", err)
	}
	if results[0].ErrorText == "" {
		t.Error("expected diagnostic text for the missing variable")
	}
	if results[0].Computed != nil {
		t.Errorf("computed = %v, want nil after failed evaluation", results[0].Computed)
	}

	record, err := fx.app.FindRecordById("phase_item_inputs", results[0].RecordID)
	if err != nil {
		t.Fatalf("failed to reload input row: %v", err)
	}
	if record.GetString("computed_error") == "" {
		t.Error("error text was not persisted on the row")
	}
}

func TestSavePhaseItemInputs_UnknownStaysUnknown(t *testing.T) {
	fx := newMeasurementFixture(t)

	results, err := SavePhaseItemInputs(fx.app, []InputSave{{
		PhaseItemID: fx.item.Id,
		IntervalID:  fx.interval.Id,
		Values:      map[string]any{"length": "", "width": nil},
	}})
	if err != nil {
		t.Fatalf("SavePhaseItemInputs() error = %v", err)
	}

	record, err := fx.app.FindRecordById("phase_item_inputs", results[0].RecordID)
	if err != nil {
		t.Fatalf("failed to reload input row: %v", err)
	}
	loaded := LoadInputResult(record)
	if loaded.Manual != nil || loaded.Computed != nil {
		t.Errorf("blank inputs must not turn into zero: manual=%v computed=%v", loaded.Manual, loaded.Computed)
	}
	if eff := loaded.Effective(); eff != nil {
		t.Errorf("effective = %v, want nil", *eff)
	}
}

func TestSavePhaseItemInputs_InactiveItemRejected(t *testing.T) {
	fx := newMeasurementFixture(t)

	fx.item.Set("is_active", false)
	if err := fx.app.Save(fx.item); err != nil {
		t.Fatalf("failed to deactivate phase item: %v", err)
	}

	_, err := SavePhaseItemInputs(fx.app, []InputSave{{
		PhaseItemID: fx.item.Id,
		IntervalID:  fx.interval.Id,
		Values:      map[string]any{"length": 10, "width": 2},
	}})
	if !IsConstraint(err) {
		t.Errorf("expected constraint error for inactive item, got %v", err)
	}
}

func TestSavePhaseItemInputs_UnknownInterval(t *testing.T) {
	fx := newMeasurementFixture(t)

	_, err := SavePhaseItemInputs(fx.app, []InputSave{{
		PhaseItemID: fx.item.Id,
		IntervalID:  "missing000000id",
		Values:      map[string]any{"length": 10, "width": 2},
	}})
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSavePhaseItemInputs_EmptyBatch(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := SavePhaseItemInputs(app, nil); !IsValidation(err) {
		t.Errorf("expected validation error for empty batch, got %v", err)
	}
}
