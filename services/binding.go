package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
)

// MaxBindingLookup caps how many intervals a batch binding lookup may
// request at once. Larger batches are rejected, never truncated.
const MaxBindingLookup = 500

// BoundBoqItem is one active phase-item↔BOQ binding as seen by lookups.
type BoundBoqItem struct {
	LinkID        string
	PhaseItemID   string
	BoqItemID     string
	Code          string
	DesignationEN string
	DesignationFR string
	Unit          string
	UnitPrice     float64
}

// requireBindableBoqItem loads a BOQ item and checks it can be bound:
// it must exist, be active and have tone ITEM.
func requireBindableBoqItem(app core.App, boqItemID string) (*core.Record, error) {
	item, err := app.FindRecordById("boq_items", boqItemID)
	if err != nil {
		return nil, &NotFoundError{Entity: "BOQ item", ID: boqItemID}
	}
	if tone := item.GetString("tone"); tone != "ITEM" {
		return nil, Constraintf("BOQ item %q has tone %s and cannot be bound", item.GetString("code"), tone)
	}
	if !item.GetBool("is_active") {
		return nil, Constraintf("BOQ item %q is inactive and cannot be bound", item.GetString("code"))
	}
	return item, nil
}

// SetSingleBinding sets or clears the one legacy BOQ binding for a
// (phase item, project) pair. An empty boqItemID clears the binding.
// At most one active single-path link exists per pair afterwards: setting
// a new id deactivates the previous one and activates or creates the new
// link. Links are soft-deactivated, never deleted, so prior bindings stay
// auditable.
func SetSingleBinding(app core.App, phaseItemID, projectID, boqItemID string) error {
	if phaseItemID == "" {
		return Validationf("phase item id is required")
	}
	if projectID == "" {
		return Validationf("project id is required")
	}
	if _, err := app.FindRecordById("phase_items", phaseItemID); err != nil {
		return &NotFoundError{Entity: "phase item", ID: phaseItemID}
	}
	if _, err := app.FindRecordById("projects", projectID); err != nil {
		return &NotFoundError{Entity: "project", ID: projectID}
	}
	if boqItemID != "" {
		if _, err := requireBindableBoqItem(app, boqItemID); err != nil {
			return err
		}
	}

	linksCol, err := app.FindCollectionByNameOrId("phase_item_boq_links")
	if err != nil {
		return fmt.Errorf("find phase_item_boq_links collection: %w", err)
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		active, err := txApp.FindRecordsByFilter(
			"phase_item_boq_links",
			"phase_item = {:item} && project = {:project} && is_active = true",
			"", 0, 0,
			map[string]any{"item": phaseItemID, "project": projectID},
		)
		if err != nil {
			return err
		}

		for _, link := range active {
			if link.GetString("boq_item") == boqItemID {
				// already the active binding, leave the row untouched
				return nil
			}
			link.Set("is_active", false)
			if err := txApp.Save(link); err != nil {
				return err
			}
		}

		if boqItemID == "" {
			return nil
		}

		existing, err := txApp.FindRecordsByFilter(
			"phase_item_boq_links",
			"phase_item = {:item} && project = {:project} && boq_item = {:boq}",
			"", 1, 0,
			map[string]any{"item": phaseItemID, "project": projectID, "boq": boqItemID},
		)
		if err != nil {
			return err
		}

		if len(existing) > 0 {
			existing[0].Set("is_active", true)
			return txApp.Save(existing[0])
		}

		link := core.NewRecord(linksCol)
		link.Set("phase_item", phaseItemID)
		link.Set("boq_item", boqItemID)
		link.Set("project", projectID)
		link.Set("is_active", true)
		return txApp.Save(link)
	})
	if err != nil {
		return &TransactionError{Op: "set single binding", Err: err}
	}
	return nil
}

// ReplaceBindings atomically replaces the full active multi-path binding
// set of a phase item with the requested BOQ item ids. Only the symmetric
// difference is written: links present only in the current set are
// deactivated, links present only in the requested set are reactivated or
// created, and links in both are not rewritten. Resubmitting the same set
// is a no-op.
func ReplaceBindings(app core.App, phaseItemID string, boqItemIDs []string) error {
	if phaseItemID == "" {
		return Validationf("phase item id is required")
	}
	if _, err := app.FindRecordById("phase_items", phaseItemID); err != nil {
		return &NotFoundError{Entity: "phase item", ID: phaseItemID}
	}

	requested := make(map[string]bool, len(boqItemIDs))
	for _, id := range boqItemIDs {
		if id == "" {
			return Validationf("blank BOQ item id in binding set")
		}
		if requested[id] {
			continue
		}
		if _, err := requireBindableBoqItem(app, id); err != nil {
			return err
		}
		requested[id] = true
	}

	linksCol, err := app.FindCollectionByNameOrId("phase_item_boq_links")
	if err != nil {
		return fmt.Errorf("find phase_item_boq_links collection: %w", err)
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		links, err := txApp.FindRecordsByFilter(
			"phase_item_boq_links",
			"phase_item = {:item} && project = ''",
			"", 0, 0,
			map[string]any{"item": phaseItemID},
		)
		if err != nil {
			return err
		}

		covered := make(map[string]bool)
		for _, link := range links {
			boqID := link.GetString("boq_item")
			active := link.GetBool("is_active")
			switch {
			case requested[boqID] && !active:
				link.Set("is_active", true)
				if err := txApp.Save(link); err != nil {
					return err
				}
			case !requested[boqID] && active:
				link.Set("is_active", false)
				if err := txApp.Save(link); err != nil {
					return err
				}
			}
			covered[boqID] = true
		}

		for boqID := range requested {
			if covered[boqID] {
				continue
			}
			link := core.NewRecord(linksCol)
			link.Set("phase_item", phaseItemID)
			link.Set("boq_item", boqID)
			link.Set("is_active", true)
			if err := txApp.Save(link); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return &TransactionError{Op: "replace bindings", Err: err}
	}
	return nil
}

// ListIntervalBindings returns, per interval id, the active bindings of the
// phase items instantiated on that interval (the active items of the
// interval's phase definition). Batches over MaxBindingLookup are rejected.
func ListIntervalBindings(app core.App, intervalIDs []string) (map[string][]BoundBoqItem, error) {
	if len(intervalIDs) > MaxBindingLookup {
		return nil, Validationf("binding lookup limited to %d intervals, got %d", MaxBindingLookup, len(intervalIDs))
	}

	out := make(map[string][]BoundBoqItem, len(intervalIDs))
	for _, intervalID := range intervalIDs {
		if intervalID == "" {
			return nil, Validationf("blank interval id in binding lookup")
		}
		interval, err := app.FindRecordById("intervals", intervalID)
		if err != nil {
			return nil, &NotFoundError{Entity: "interval", ID: intervalID}
		}
		phase, err := app.FindRecordById("phases", interval.GetString("phase"))
		if err != nil {
			return nil, &NotFoundError{Entity: "phase", ID: interval.GetString("phase")}
		}

		items, err := app.FindRecordsByFilter(
			"phase_items",
			"phase_definition = {:def} && is_active = true",
			"sort_order", 0, 0,
			map[string]any{"def": phase.GetString("phase_definition")},
		)
		if err != nil {
			return nil, err
		}

		bindings := []BoundBoqItem{}
		for _, item := range items {
			links, err := app.FindRecordsByFilter(
				"phase_item_boq_links",
				"phase_item = {:item} && is_active = true",
				"", 0, 0,
				map[string]any{"item": item.Id},
			)
			if err != nil {
				return nil, err
			}
			for _, link := range links {
				boqItem, err := app.FindRecordById("boq_items", link.GetString("boq_item"))
				if err != nil {
					continue
				}
				bindings = append(bindings, BoundBoqItem{
					LinkID:        link.Id,
					PhaseItemID:   item.Id,
					BoqItemID:     boqItem.Id,
					Code:          boqItem.GetString("code"),
					DesignationEN: boqItem.GetString("designation_en"),
					DesignationFR: boqItem.GetString("designation_fr"),
					Unit:          boqItem.GetString("unit"),
					UnitPrice:     boqItem.GetFloat("unit_price"),
				})
			}
		}
		out[intervalID] = bindings
	}

	return out, nil
}
