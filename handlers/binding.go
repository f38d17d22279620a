package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/services"
)

// HandleSingleBindingSet returns a handler for the legacy single-binding
// path: set or clear the one BOQ item bound to a phase item within a
// project. An empty boqItem clears the binding.
func HandleSingleBindingSet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")

		var payload struct {
			ProjectID string `json:"project"`
			BoqItemID string `json:"boqItem"`
		}
		if err := e.BindBody(&payload); err != nil {
			return e.String(http.StatusBadRequest, "Invalid JSON body")
		}

		if err := services.SetSingleBinding(app, itemID, payload.ProjectID, payload.BoqItemID); err != nil {
			return respondError(e, "binding_single", err)
		}

		SetToast(e, "success", "Binding updated")
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleBindingsReplace returns a handler that atomically replaces a phase
// item's multi-binding set with the submitted BOQ item ids.
func HandleBindingsReplace(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")

		var payload struct {
			BoqItemIDs []string `json:"boqItems"`
		}
		if err := e.BindBody(&payload); err != nil {
			return e.String(http.StatusBadRequest, "Invalid JSON body")
		}

		if err := services.ReplaceBindings(app, itemID, payload.BoqItemIDs); err != nil {
			return respondError(e, "binding_replace", err)
		}

		SetToast(e, "success", "Bindings updated")
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleIntervalBindings returns a handler that lists the active bindings
// of the phase items instantiated on each requested interval. Batches over
// services.MaxBindingLookup intervals are rejected.
func HandleIntervalBindings(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload struct {
			IntervalIDs []string `json:"intervals"`
		}
		if err := e.BindBody(&payload); err != nil {
			return e.String(http.StatusBadRequest, "Invalid JSON body")
		}

		bindings, err := services.ListIntervalBindings(app, payload.IntervalIDs)
		if err != nil {
			return respondError(e, "binding_lookup", err)
		}

		return e.JSON(http.StatusOK, bindings)
	}
}
