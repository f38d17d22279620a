package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/templates"
)

// HandleProjectList returns a handler that renders the project list page.
func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectsCol, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project_list: could not find projects collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		records, err := app.FindAllRecords(projectsCol)
		if err != nil {
			log.Printf("project_list: could not load projects: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		data := templates.ProjectListData{
			Header: GetHeaderData(e.Request),
		}
		for _, rec := range records {
			roads, _ := app.FindRecordsByFilter(
				"roads",
				"project = {:project}",
				"", 0, 0,
				map[string]any{"project": rec.Id},
			)
			data.Projects = append(data.Projects, templates.ProjectRow{
				ID:     rec.Id,
				Name:   rec.GetString("name"),
				Code:   rec.GetString("code"),
				Client: rec.GetString("client"),
				Status: rec.GetString("status"),
				Roads:  len(roads),
			})
		}

		component := templates.ProjectListPage(data)
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleProjectActivate returns a handler that sets the active_project
// cookie to the given project.
func HandleProjectActivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		project, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return e.String(http.StatusNotFound, "Project not found")
		}

		http.SetCookie(e.Response, &http.Cookie{
			Name:     "active_project",
			Value:    project.Id,
			Path:     "/",
			MaxAge:   60 * 60 * 24 * 30,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		SetToast(e, "success", "Switched to "+project.GetString("name"))
		e.Response.Header().Set("HX-Refresh", "true")
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleProjectDeactivate returns a handler that clears the active project.
func HandleProjectDeactivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		http.SetCookie(e.Response, &http.Cookie{
			Name:   "active_project",
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		e.Response.Header().Set("HX-Refresh", "true")
		return e.NoContent(http.StatusNoContent)
	}
}
