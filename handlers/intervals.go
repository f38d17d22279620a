package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleIntervalCreate returns a handler that adds an interval to a phase
// from a form submission.
func HandleIntervalCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		phaseID := e.Request.PathValue("phaseId")
		if _, err := app.FindRecordById("phases", phaseID); err != nil {
			return e.String(http.StatusNotFound, "Phase not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			log.Printf("interval_create: could not parse form: %v", err)
			return e.String(http.StatusBadRequest, "Invalid form data")
		}

		startPos, err := strconv.ParseFloat(e.Request.FormValue("start_pos"), 64)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Start position must be a number")
		}
		endPos, err := strconv.ParseFloat(e.Request.FormValue("end_pos"), 64)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "End position must be a number")
		}
		if endPos <= startPos {
			return ErrorToast(e, http.StatusBadRequest, "End position must be after start position")
		}

		billQty, _ := strconv.ParseFloat(e.Request.FormValue("bill_quantity"), 64)
		side := e.Request.FormValue("side")
		if side == "" {
			side = "BOTH"
		}

		intervalsCol, err := app.FindCollectionByNameOrId("intervals")
		if err != nil {
			log.Printf("interval_create: could not find intervals collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		record := core.NewRecord(intervalsCol)
		record.Set("phase", phaseID)
		record.Set("start_pos", startPos)
		record.Set("end_pos", endPos)
		record.Set("side", side)
		record.Set("bill_quantity", billQty)

		if err := app.Save(record); err != nil {
			log.Printf("interval_create: could not save interval: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		SetToast(e, "success", "Interval added")
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleIntervalDelete returns a handler that deletes an interval. Its
// measurement rows are removed by the cascade on the relation, so no
// orphans survive.
func HandleIntervalDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		intervalID := e.Request.PathValue("id")

		interval, err := app.FindRecordById("intervals", intervalID)
		if err != nil {
			return e.String(http.StatusNotFound, "Interval not found")
		}

		if err := app.Delete(interval); err != nil {
			log.Printf("interval_delete: could not delete interval: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		SetToast(e, "success", "Interval deleted")
		return e.NoContent(http.StatusNoContent)
	}
}
