package services

import (
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// FormulaVariable is one declared input of a formula: the identifier the
// expression references plus optional display metadata.
type FormulaVariable struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// SaveFormula creates or updates the one formula of a phase item. A blank
// expression deletes the formula instead. The expression must parse and
// every identifier it references must appear in the declared variable
// schema. Existing measurement rows of the phase item are re-resolved
// against the new expression in the same transaction, so no row keeps a
// stale computed quantity.
func SaveFormula(app core.App, phaseItemID, expression string, variables []FormulaVariable, unit string) error {
	if phaseItemID == "" {
		return Validationf("phase item id is required")
	}
	if _, err := app.FindRecordById("phase_items", phaseItemID); err != nil {
		return &NotFoundError{Entity: "phase item", ID: phaseItemID}
	}

	expression = strings.TrimSpace(expression)
	if expression == "" {
		return clearFormula(app, phaseItemID)
	}

	referenced, err := CheckSyntax(expression)
	if err != nil {
		return Validationf("invalid expression: %v", err)
	}

	declared := make(map[string]bool, len(variables))
	for _, v := range variables {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return Validationf("variable schema contains a blank name")
		}
		if declared[name] {
			return Validationf("variable %q declared twice", name)
		}
		declared[name] = true
	}
	for _, name := range referenced {
		if !declared[name] {
			return Validationf("expression references undeclared variable %q", name)
		}
	}

	formulasCol, err := app.FindCollectionByNameOrId("phase_item_formulas")
	if err != nil {
		return fmt.Errorf("find phase_item_formulas collection: %w", err)
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		existing, err := txApp.FindRecordsByFilter(
			"phase_item_formulas",
			"phase_item = {:item}",
			"", 1, 0,
			map[string]any{"item": phaseItemID},
		)
		if err != nil {
			return err
		}

		var record *core.Record
		if len(existing) > 0 {
			record = existing[0]
		} else {
			record = core.NewRecord(formulasCol)
			record.Set("phase_item", phaseItemID)
		}
		record.Set("expression", expression)
		record.Set("variables", variables)
		record.Set("unit", unit)
		if err := txApp.Save(record); err != nil {
			return err
		}

		return recomputeItemInputs(txApp, phaseItemID, expression)
	})
	if err != nil {
		return &TransactionError{Op: "save formula", Err: err}
	}
	return nil
}

// clearFormula deletes the phase item's formula and re-resolves its rows
// with no expression (computed quantity becomes unknown, manual overrides
// survive).
func clearFormula(app core.App, phaseItemID string) error {
	err := app.RunInTransaction(func(txApp core.App) error {
		existing, err := txApp.FindRecordsByFilter(
			"phase_item_formulas",
			"phase_item = {:item}",
			"", 0, 0,
			map[string]any{"item": phaseItemID},
		)
		if err != nil {
			return err
		}
		for _, record := range existing {
			if err := txApp.Delete(record); err != nil {
				return err
			}
		}
		return recomputeItemInputs(txApp, phaseItemID, "")
	})
	if err != nil {
		return &TransactionError{Op: "clear formula", Err: err}
	}
	return nil
}

// recomputeItemInputs re-resolves every stored measurement row of a phase
// item against the given expression.
func recomputeItemInputs(app core.App, phaseItemID, expression string) error {
	rows, err := app.FindRecordsByFilter(
		"phase_item_inputs",
		"phase_item = {:item}",
		"", 0, 0,
		map[string]any{"item": phaseItemID},
	)
	if err != nil {
		return err
	}

	for _, row := range rows {
		values := NormalizeInputs(row.Get("values"))
		resolved := ResolveQuantity(expression, values, JSONFloat(row, "manual_quantity"))
		row.Set("computed_quantity", floatJSON(resolved.Computed))
		row.Set("computed_error", resolved.ErrorText)
		if err := app.Save(row); err != nil {
			return err
		}
	}
	return nil
}

// LoadFormula returns the expression, variable schema and unit override of
// a phase item's formula, or ok=false when the item has none.
func LoadFormula(app core.App, phaseItemID string) (expression string, variables []FormulaVariable, unit string, ok bool) {
	records, err := app.FindRecordsByFilter(
		"phase_item_formulas",
		"phase_item = {:item}",
		"", 1, 0,
		map[string]any{"item": phaseItemID},
	)
	if err != nil || len(records) == 0 {
		return "", nil, "", false
	}

	record := records[0]
	if err := record.UnmarshalJSONField("variables", &variables); err != nil {
		variables = nil
	}
	return record.GetString("expression"), variables, record.GetString("unit"), true
}
