package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/services"
)

// formulaPayload is the JSON body of a formula save.
type formulaPayload struct {
	Expression string                     `json:"expression"`
	Variables  []services.FormulaVariable `json:"variables"`
	Unit       string                     `json:"unit"`
}

// HandleFormulaView returns a handler that serves a phase item's formula as
// JSON for the formula editor.
func HandleFormulaView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("phase_items", itemID); err != nil {
			return e.String(http.StatusNotFound, "Phase item not found")
		}

		expression, variables, unit, ok := services.LoadFormula(app, itemID)
		if !ok {
			return e.JSON(http.StatusOK, formulaPayload{})
		}
		return e.JSON(http.StatusOK, formulaPayload{
			Expression: expression,
			Variables:  variables,
			Unit:       unit,
		})
	}
}

// HandleFormulaSave returns a handler that creates, updates or (on an empty
// expression) deletes a phase item's formula. Saving re-resolves the item's
// stored measurements so computed quantities never go stale.
func HandleFormulaSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")

		var payload formulaPayload
		if err := e.BindBody(&payload); err != nil {
			return e.String(http.StatusBadRequest, "Invalid JSON body")
		}

		err := services.SaveFormula(app, itemID, payload.Expression, payload.Variables, payload.Unit)
		if err != nil {
			return respondError(e, "formula_save", err)
		}

		SetToast(e, "success", "Formula saved")
		return e.NoContent(http.StatusNoContent)
	}
}
