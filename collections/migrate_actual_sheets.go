package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// MigrateActualSheets ensures every project that has a CONTRACT BOQ sheet
// also has an ACTUAL sheet cloned from it. The ACTUAL sheet starts as a
// line-for-line copy of the contract and diverges as as-built quantities
// are tracked. Safe to call on every startup -- returns early if nothing
// to migrate.
func MigrateActualSheets(app *pocketbase.PocketBase) error {
	sheetsCol, err := app.FindCollectionByNameOrId("boq_sheets")
	if err != nil {
		return fmt.Errorf("migrate: could not find boq_sheets collection: %w", err)
	}
	boqItemsCol, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		return fmt.Errorf("migrate: could not find boq_items collection: %w", err)
	}

	contractSheets, err := app.FindRecordsByFilter(
		sheetsCol,
		"kind = 'CONTRACT'",
		"", 0, 0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query contract sheets: %w", err)
	}

	migrated := 0
	for _, contract := range contractSheets {
		projectID := contract.GetString("project")

		actuals, err := app.FindRecordsByFilter(
			sheetsCol,
			"project = {:project} && kind = 'ACTUAL'",
			"", 1, 0,
			map[string]any{"project": projectID},
		)
		if err != nil {
			return fmt.Errorf("migrate: could not query actual sheets: %w", err)
		}
		if len(actuals) > 0 {
			continue
		}

		err = app.RunInTransaction(func(txApp core.App) error {
			actual := core.NewRecord(sheetsCol)
			actual.Set("project", projectID)
			actual.Set("kind", "ACTUAL")
			actual.Set("title", contract.GetString("title")+" (as-built)")
			if err := txApp.Save(actual); err != nil {
				return err
			}

			lines, err := txApp.FindRecordsByFilter(
				"boq_items",
				"sheet = {:sheet}",
				"sort_order", 0, 0,
				map[string]any{"sheet": contract.Id},
			)
			if err != nil {
				return err
			}

			for _, line := range lines {
				clone := core.NewRecord(boqItemsCol)
				clone.Set("sheet", actual.Id)
				clone.Set("code", line.GetString("code"))
				clone.Set("designation_en", line.GetString("designation_en"))
				clone.Set("designation_fr", line.GetString("designation_fr"))
				clone.Set("unit", line.GetString("unit"))
				clone.Set("unit_price", line.GetFloat("unit_price"))
				clone.Set("quantity", line.GetFloat("quantity"))
				clone.Set("total_price", line.GetFloat("total_price"))
				clone.Set("tone", line.GetString("tone"))
				clone.Set("is_active", line.GetBool("is_active"))
				clone.Set("sort_order", line.GetFloat("sort_order"))
				if err := txApp.Save(clone); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("migrate: failed to clone contract sheet %s: %v\n", contract.Id, err)
			continue
		}
		migrated++
	}

	if migrated > 0 {
		log.Printf("migrate: cloned %d contract sheet(s) to ACTUAL.\n", migrated)
	}
	return nil
}
