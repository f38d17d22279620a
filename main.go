package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/collections"
	"roadworks/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateActualSheets(app); err != nil {
			log.Printf("Warning: actual sheet migration failed: %v", err)
		}
		return se.Next()
	})

	// Serve static files from ./static
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		// Apply active project middleware globally
		se.Router.BindFunc(handlers.ActiveProjectMiddleware(app))

		// ── Project activation ───────────────────────────────────
		se.Router.POST("/projects/{id}/activate", handlers.HandleProjectActivate(app))
		se.Router.POST("/projects/deactivate", handlers.HandleProjectDeactivate(app))

		// ── Project list ─────────────────────────────────────────
		se.Router.GET("/projects", handlers.HandleProjectList(app))

		// ── Phase catalogue ──────────────────────────────────────
		se.Router.GET("/phases", handlers.HandlePhaseCatalogue(app))
		se.Router.POST("/phases/definitions", handlers.HandlePhaseDefinitionCreate(app))
		se.Router.POST("/phases/{defId}/items", handlers.HandlePhaseItemCreate(app))
		se.Router.POST("/phase-items/{id}", handlers.HandlePhaseItemEdit(app))
		se.Router.POST("/phase-items/{id}/deactivate", handlers.HandlePhaseItemDeactivate(app))

		// ── Formulas ─────────────────────────────────────────────
		se.Router.GET("/phase-items/{id}/formula", handlers.HandleFormulaView(app))
		se.Router.POST("/phase-items/{id}/formula", handlers.HandleFormulaSave(app))

		// ── BOQ bindings ─────────────────────────────────────────
		se.Router.POST("/phase-items/{id}/boq-link", handlers.HandleSingleBindingSet(app))
		se.Router.PUT("/phase-items/{id}/boq-links", handlers.HandleBindingsReplace(app))
		se.Router.POST("/intervals/boq-links", handlers.HandleIntervalBindings(app))

		// ── Intervals & measurements ─────────────────────────────
		se.Router.POST("/phases-on-road/{phaseId}/intervals", handlers.HandleIntervalCreate(app))
		se.Router.DELETE("/intervals/{id}", handlers.HandleIntervalDelete(app))
		se.Router.POST("/intervals/{id}/measurements", handlers.HandleMeasurementsSave(app))
		se.Router.GET("/projects/{projectId}/roads/{roadId}/measurements", handlers.HandleMeasurementsPage(app))

		// ── Progress ─────────────────────────────────────────────
		se.Router.GET("/projects/{projectId}/roads/{roadId}/progress", handlers.HandleProgressPage(app))
		se.Router.GET("/projects/{projectId}/roads/{roadId}/progress.json", handlers.HandleProgressJSON(app))
		se.Router.GET("/projects/{projectId}/roads/{roadId}/progress/export/pdf", handlers.HandleProgressExportPDF(app))

		// ── BOQ sheets ───────────────────────────────────────────
		se.Router.GET("/projects/{projectId}/boq", handlers.HandleBoqSheetList(app))
		se.Router.GET("/projects/{projectId}/boq/{id}", handlers.HandleBoqSheetView(app))
		se.Router.GET("/projects/{projectId}/boq/{id}/export/excel", handlers.HandleBoqExportExcel(app))
		se.Router.POST("/projects/{projectId}/boq/{id}/items", handlers.HandleBoqItemCreate(app))
		se.Router.PATCH("/projects/{projectId}/boq/{id}/items/{itemId}", handlers.HandleBoqItemPatch(app))

		// Redirect home to projects list
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/projects")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
