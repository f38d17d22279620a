package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/services"
	"roadworks/templates"
)

// HandleProgressPage returns a handler that renders the per-road progress
// roll-up.
func HandleProgressPage(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roadID := e.Request.PathValue("roadId")

		progress, err := services.BuildRoadProgress(app, roadID)
		if err != nil {
			return respondError(e, "progress_page", err)
		}

		data := templates.ProgressData{
			Header:     GetHeaderData(e.Request),
			ProjectID:  e.Request.PathValue("projectId"),
			RoadID:     roadID,
			RoadName:   progress.Name,
			Total:      services.FormatQuantity(progress.Total),
			TotalBill:  services.FormatQuantity(progress.TotalBill),
			Completion: services.FormatPercent(progress.Display),
			Unmeasured: progress.Unmeasured,
		}
		for _, phase := range progress.Phases {
			data.Phases = append(data.Phases, templates.ProgressPhaseRow{
				Name:       phase.Name,
				Total:      services.FormatQuantity(phase.Total),
				TotalBill:  services.FormatQuantity(phase.TotalBill),
				Completion: services.FormatPercent(phase.Display),
				Unmeasured: phase.Unmeasured,
				Over:       phase.Over,
			})
		}

		component := templates.ProgressPage(data)
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleProgressJSON returns a handler that serves the road progress
// roll-up as JSON, unclamped ratios included, for dashboards and anomaly
// checks.
func HandleProgressJSON(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roadID := e.Request.PathValue("roadId")

		progress, err := services.BuildRoadProgress(app, roadID)
		if err != nil {
			return respondError(e, "progress_json", err)
		}
		return e.JSON(http.StatusOK, progress)
	}
}

// HandleProgressExportPDF returns a handler that streams the road progress
// report as a PDF download.
func HandleProgressExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		roadID := e.Request.PathValue("roadId")

		projectName := ""
		if project, err := app.FindRecordById("projects", projectID); err == nil {
			projectName = project.GetString("name")
		}

		progress, err := services.BuildRoadProgress(app, roadID)
		if err != nil {
			return respondError(e, "progress_export_pdf", err)
		}

		pdfBytes, err := services.GenerateProgressPDF(projectName, progress, time.Now().Format("2006-01-02"))
		if err != nil {
			return respondError(e, "progress_export_pdf", err)
		}

		filename := fmt.Sprintf("progress-%s.pdf", roadID)
		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		_, err = e.Response.Write(pdfBytes)
		return err
	}
}
