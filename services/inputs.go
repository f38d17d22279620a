package services

import (
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// InputSave is one measurement row to persist: the raw input values for a
// (phase item, interval) pair plus an optional manual quantity override.
type InputSave struct {
	PhaseItemID    string
	IntervalID     string
	Values         any
	ManualQuantity *float64
}

// InputSaveResult reports the stored outcome of one row. A non-empty
// ErrorText means the formula failed for that row; the save as a whole
// still succeeded.
type InputSaveResult struct {
	PhaseItemID string
	IntervalID  string
	RecordID    string
	QuantityResult
}

// SavePhaseItemInputs upserts one phase_item_inputs row per (phase item,
// interval) pair inside a single transaction. Each row's formula is
// re-evaluated against its freshly normalized values, so a stored computed
// quantity can never go stale. A broken formula is recorded on its row as
// diagnostic text without failing the other rows or the batch.
func SavePhaseItemInputs(app core.App, saves []InputSave) ([]InputSaveResult, error) {
	if len(saves) == 0 {
		return nil, Validationf("no measurement rows submitted")
	}

	// Resolve and validate referenced records before opening the transaction.
	type preparedSave struct {
		save       InputSave
		expression string
		resolved   QuantityResult
	}
	prepared := make([]preparedSave, 0, len(saves))

	for _, save := range saves {
		if save.PhaseItemID == "" || save.IntervalID == "" {
			return nil, Validationf("measurement row is missing phase item or interval id")
		}

		item, err := app.FindRecordById("phase_items", save.PhaseItemID)
		if err != nil {
			return nil, &NotFoundError{Entity: "phase item", ID: save.PhaseItemID}
		}
		if !item.GetBool("is_active") {
			return nil, Constraintf("phase item %q is deactivated and cannot receive measurements", item.GetString("name"))
		}
		if _, err := app.FindRecordById("intervals", save.IntervalID); err != nil {
			return nil, &NotFoundError{Entity: "interval", ID: save.IntervalID}
		}

		expression := ""
		formulas, err := app.FindRecordsByFilter(
			"phase_item_formulas",
			"phase_item = {:item}",
			"", 1, 0,
			map[string]any{"item": save.PhaseItemID},
		)
		if err == nil && len(formulas) > 0 {
			expression = formulas[0].GetString("expression")
		}

		values := NormalizeInputs(save.Values)
		prepared = append(prepared, preparedSave{
			save:       save,
			expression: expression,
			resolved:   ResolveQuantity(expression, values, save.ManualQuantity),
		})
	}

	inputsCol, err := app.FindCollectionByNameOrId("phase_item_inputs")
	if err != nil {
		return nil, fmt.Errorf("find phase_item_inputs collection: %w", err)
	}

	results := make([]InputSaveResult, 0, len(prepared))
	err = app.RunInTransaction(func(txApp core.App) error {
		for _, p := range prepared {
			record, err := findInputRow(txApp, p.save.PhaseItemID, p.save.IntervalID)
			if err != nil {
				return err
			}
			if record == nil {
				record = core.NewRecord(inputsCol)
				record.Set("phase_item", p.save.PhaseItemID)
				record.Set("interval", p.save.IntervalID)
			}

			record.Set("values", NormalizeInputs(p.save.Values))
			record.Set("manual_quantity", floatJSON(p.resolved.Manual))
			record.Set("computed_quantity", floatJSON(p.resolved.Computed))
			record.Set("computed_error", p.resolved.ErrorText)

			if err := txApp.Save(record); err != nil {
				return err
			}

			results = append(results, InputSaveResult{
				PhaseItemID:    p.save.PhaseItemID,
				IntervalID:     p.save.IntervalID,
				RecordID:       record.Id,
				QuantityResult: p.resolved,
			})
		}
		return nil
	})
	if err != nil {
		return nil, &TransactionError{Op: "save measurements", Err: err}
	}

	return results, nil
}

// findInputRow returns the existing phase_item_inputs record for the pair,
// or nil when none exists yet.
func findInputRow(app core.App, phaseItemID, intervalID string) (*core.Record, error) {
	rows, err := app.FindRecordsByFilter(
		"phase_item_inputs",
		"phase_item = {:item} && interval = {:interval}",
		"", 1, 0,
		map[string]any{"item": phaseItemID, "interval": intervalID},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// LoadInputResult reads a stored phase_item_inputs record back into the
// same shape SavePhaseItemInputs produced, normalizing the stored values
// identically to a network payload.
func LoadInputResult(record *core.Record) InputSaveResult {
	return InputSaveResult{
		PhaseItemID: record.GetString("phase_item"),
		IntervalID:  record.GetString("interval"),
		RecordID:    record.Id,
		QuantityResult: QuantityResult{
			Manual:    JSONFloat(record, "manual_quantity"),
			Computed:  JSONFloat(record, "computed_quantity"),
			ErrorText: record.GetString("computed_error"),
		},
	}
}

// JSONFloat reads a JSON column holding a number-or-null into a *float64.
func JSONFloat(record *core.Record, field string) *float64 {
	raw, ok := record.Get(field).(types.JSONRaw)
	if !ok || len(raw) == 0 {
		return nil
	}
	var value *float64
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil
	}
	return value
}

// floatJSON converts an optional float into the value stored in a JSON
// column: the number itself, or nil for "unknown".
func floatJSON(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
