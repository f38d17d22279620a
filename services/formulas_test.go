package services

import (
	"testing"

	"roadworks/testhelpers"
)

func TestSaveFormula_CreateAndLoad(t *testing.T) {
	fx := newMeasurementFixture(t)
	def := testhelpers.CreateTestPhaseDefinition(t, fx.app, "Drainage", 2)
	item := testhelpers.CreateTestPhaseItem(t, fx.app, def.Id, "Culvert")

	variables := []FormulaVariable{
		{Name: "count", Label: "Number of culverts"},
		{Name: "length", Unit: "m"},
	}
	if err := SaveFormula(fx.app, item.Id, "count * length", variables, "m"); err != nil {
		t.Fatalf("SaveFormula() error = %v", err)
	}

	expression, loaded, unit, ok := LoadFormula(fx.app, item.Id)
	if !ok {
		t.Fatal("LoadFormula() ok = false, want true")
	}
	if expression != "count * length" {
		t.Errorf("expression = %q", expression)
	}
	if unit != "m" {
		t.Errorf("unit = %q, want m", unit)
	}
	if len(loaded) != 2 || loaded[0].Name != "count" || loaded[1].Unit != "m" {
		t.Errorf("variables = %+v", loaded)
	}
}

func TestSaveFormula_UpdateRecomputesRows(t *testing.T) {
	fx := newMeasurementFixture(t)

	results, err := SavePhaseItemInputs(fx.app, []InputSave{{
		PhaseItemID: fx.item.Id,
		IntervalID:  fx.interval.Id,
		Values:      map[string]any{"length": 10, "width": 2},
	}})
	if err != nil {
		t.Fatalf("save inputs: %v", err)
	}
	if *results[0].Computed != 20 {
		t.Fatalf("computed = %v, want 20", *results[0].Computed)
	}

	variables := []FormulaVariable{{Name: "length"}, {Name: "width"}, {Name: "depth"}}
	if err := SaveFormula(fx.app, fx.item.Id, "length * width * 2", variables, ""); err != nil {
		t.Fatalf("SaveFormula() error = %v", err)
	}

	record, err := fx.app.FindRecordById("phase_item_inputs", results[0].RecordID)
	if err != nil {
		t.Fatalf("failed to reload row: %v", err)
	}
	loaded := LoadInputResult(record)
	if loaded.Computed == nil || *loaded.Computed != 40 {
		t.Errorf("computed after formula change = %v, want 40", loaded.Computed)
	}
}

func TestSaveFormula_BlankExpressionClears(t *testing.T) {
	fx := newMeasurementFixture(t)

	results, err := SavePhaseItemInputs(fx.app, []InputSave{{
		PhaseItemID:    fx.item.Id,
		IntervalID:     fx.interval.Id,
		Values:         map[string]any{"length": 10, "width": 2},
		ManualQuantity: floatPtr(15),
	}})
	if err != nil {
		t.Fatalf("save inputs: %v", err)
	}

	if err := SaveFormula(fx.app, fx.item.Id, "  ", nil, ""); err != nil {
		t.Fatalf("SaveFormula(blank) error = %v", err)
	}

	if _, _, _, ok := LoadFormula(fx.app, fx.item.Id); ok {
		t.Error("formula should be deleted")
	}

	record, err := fx.app.FindRecordById("phase_item_inputs", results[0].RecordID)
	if err != nil {
		t.Fatalf("failed to reload row: %v", err)
	}
	loaded := LoadInputResult(record)
	if loaded.Computed != nil {
		t.Errorf("computed = %v, want nil with no formula", loaded.Computed)
	}
	if loaded.Manual == nil || *loaded.Manual != 15 {
		t.Errorf("manual override must survive the clear, got %v", loaded.Manual)
	}
}

func TestSaveFormula_RejectsBrokenExpression(t *testing.T) {
	fx := newMeasurementFixture(t)

	err := SaveFormula(fx.app, fx.item.Id, "length *", []FormulaVariable{{Name: "length"}}, "")
	if !IsValidation(err) {
		t.Errorf("expected validation error for syntax failure, got %v", err)
	}
}

func TestSaveFormula_RejectsUndeclaredVariable(t *testing.T) {
	fx := newMeasurementFixture(t)

	err := SaveFormula(fx.app, fx.item.Id, "length * width", []FormulaVariable{{Name: "length"}}, "")
	if !IsValidation(err) {
		t.Errorf("expected validation error for undeclared variable, got %v", err)
	}
}

func TestSaveFormula_RejectsDuplicateVariable(t *testing.T) {
	fx := newMeasurementFixture(t)

	err := SaveFormula(fx.app, fx.item.Id, "length", []FormulaVariable{{Name: "length"}, {Name: "length"}}, "")
	if !IsValidation(err) {
		t.Errorf("expected validation error for duplicate declaration, got %v", err)
	}
}

func TestSaveFormula_UnknownPhaseItem(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	err := SaveFormula(app, "missing000000id", "1 + 1", nil, "")
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSaveFormula_SingleFormulaPerItem(t *testing.T) {
	fx := newMeasurementFixture(t)

	variables := []FormulaVariable{{Name: "length"}, {Name: "width"}}
	if err := SaveFormula(fx.app, fx.item.Id, "length + width", variables, ""); err != nil {
		t.Fatalf("SaveFormula() error = %v", err)
	}
	if err := SaveFormula(fx.app, fx.item.Id, "length - width", variables, ""); err != nil {
		t.Fatalf("second SaveFormula() error = %v", err)
	}

	records, err := fx.app.FindRecordsByFilter(
		"phase_item_formulas",
		"phase_item = {:item}",
		"", 0, 0,
		map[string]any{"item": fx.item.Id},
	)
	if err != nil {
		t.Fatalf("failed to list formulas: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected one formula row, got %d", len(records))
	}
	if records[0].GetString("expression") != "length - width" {
		t.Errorf("expression = %q, want the updated one", records[0].GetString("expression"))
	}
}
