package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/services"
	"roadworks/templates"
)

// measurementRowPayload is one grid row in a measurement save request.
type measurementRowPayload struct {
	PhaseItemID    string         `json:"phaseItem"`
	Values         map[string]any `json:"values"`
	ManualQuantity *float64       `json:"manualQuantity"`
}

// measurementRowResponse reports the stored outcome of one grid row.
type measurementRowResponse struct {
	PhaseItemID string   `json:"phaseItem"`
	IntervalID  string   `json:"interval"`
	Manual      *float64 `json:"manualQuantity"`
	Computed    *float64 `json:"computedQuantity"`
	Effective   *float64 `json:"effectiveQuantity"`
	Error       string   `json:"error,omitempty"`
}

// HandleMeasurementsSave returns a handler that upserts the measurement
// rows of one interval. Formula failures come back as per-row diagnostics
// with the save still succeeding.
func HandleMeasurementsSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		intervalID := e.Request.PathValue("id")

		var payload struct {
			Rows []measurementRowPayload `json:"rows"`
		}
		if err := e.BindBody(&payload); err != nil {
			return e.String(http.StatusBadRequest, "Invalid JSON body")
		}

		saves := make([]services.InputSave, 0, len(payload.Rows))
		for _, row := range payload.Rows {
			saves = append(saves, services.InputSave{
				PhaseItemID:    row.PhaseItemID,
				IntervalID:     intervalID,
				Values:         row.Values,
				ManualQuantity: row.ManualQuantity,
			})
		}

		results, err := services.SavePhaseItemInputs(app, saves)
		if err != nil {
			return respondError(e, "measurements_save", err)
		}

		response := make([]measurementRowResponse, 0, len(results))
		for _, r := range results {
			response = append(response, measurementRowResponse{
				PhaseItemID: r.PhaseItemID,
				IntervalID:  r.IntervalID,
				Manual:      r.Manual,
				Computed:    r.Computed,
				Effective:   r.Effective(),
				Error:       r.ErrorText,
			})
		}
		return e.JSON(http.StatusOK, response)
	}
}

// HandleMeasurementsPage returns a handler that renders the measurement
// grid for one road: every interval of every phase with the stored
// quantities of its phase items.
func HandleMeasurementsPage(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roadID := e.Request.PathValue("roadId")
		road, err := app.FindRecordById("roads", roadID)
		if err != nil {
			return e.String(http.StatusNotFound, "Road not found")
		}

		data := templates.MeasurementsData{
			Header:   GetHeaderData(e.Request),
			RoadID:   roadID,
			RoadName: road.GetString("name"),
		}

		phases, err := app.FindRecordsByFilter(
			"phases",
			"road = {:road}",
			"", 0, 0,
			map[string]any{"road": roadID},
		)
		if err != nil {
			return respondError(e, "measurements_page", err)
		}

		for _, phase := range phases {
			items, err := app.FindRecordsByFilter(
				"phase_items",
				"phase_definition = {:def} && is_active = true",
				"sort_order", 0, 0,
				map[string]any{"def": phase.GetString("phase_definition")},
			)
			if err != nil {
				return respondError(e, "measurements_page", err)
			}

			intervals, err := app.FindRecordsByFilter(
				"intervals",
				"phase = {:phase}",
				"start_pos", 0, 0,
				map[string]any{"phase": phase.Id},
			)
			if err != nil {
				return respondError(e, "measurements_page", err)
			}

			for _, interval := range intervals {
				label := fmt.Sprintf("%s–%s (%s)",
					services.FormatQuantity(interval.GetFloat("start_pos")),
					services.FormatQuantity(interval.GetFloat("end_pos")),
					interval.GetString("side"))

				for _, item := range items {
					row := templates.MeasurementRow{
						PhaseItemID:   item.Id,
						PhaseItemName: item.GetString("name"),
						IntervalID:    interval.Id,
						IntervalLabel: label,
					}

					stored, err := app.FindRecordsByFilter(
						"phase_item_inputs",
						"phase_item = {:item} && interval = {:interval}",
						"", 1, 0,
						map[string]any{"item": item.Id, "interval": interval.Id},
					)
					if err == nil && len(stored) > 0 {
						result := services.LoadInputResult(stored[0])
						row.Values = services.NormalizeInputs(stored[0].Get("values"))
						if result.Manual != nil {
							row.Manual = services.FormatQuantity(*result.Manual)
						}
						if result.Computed != nil {
							row.Computed = services.FormatQuantity(*result.Computed)
						}
						row.ErrorText = result.ErrorText
					}

					data.Rows = append(data.Rows, row)
				}
			}
		}

		component := templates.MeasurementsPage(data)
		return component.Render(e.Request.Context(), e.Response)
	}
}
