package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// esc escapes user-provided text for HTML output.
func esc(s string) string {
	return templ.EscapeString(s)
}

// layout wraps page body markup with the shared chrome: html head, header
// bar with the project selector, and the htmx script tag.
func layout(title string, header HeaderData, body func(w io.Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title>`, esc(title))
		fmt.Fprint(w, `<link rel="stylesheet" href="/static/app.css"><script src="/static/htmx.min.js"></script></head><body>`)

		fmt.Fprint(w, `<header class="topbar"><a href="/projects" class="brand">Roadworks</a><div class="project-selector">`)
		if header.ActiveProject != nil {
			fmt.Fprintf(w, `<span class="active-project">%s</span>`, esc(header.ActiveProject.Name))
		} else {
			fmt.Fprint(w, `<span class="active-project none">No active project</span>`)
		}
		fmt.Fprint(w, `<ul class="project-menu">`)
		for _, p := range header.Projects {
			cls := ""
			if p.IsActive {
				cls = ` class="current"`
			}
			fmt.Fprintf(w, `<li%s><button hx-post="/projects/%s/activate" hx-swap="none">%s</button></li>`,
				cls, esc(p.ID), esc(p.Name))
		}
		fmt.Fprint(w, `</ul></div></header><main>`)

		body(w)

		fmt.Fprint(w, `</main></body></html>`)
		return nil
	})
}

// ProjectListPage renders the project list.
func ProjectListPage(data ProjectListData) templ.Component {
	return layout("Projects", data.Header, func(w io.Writer) {
		fmt.Fprint(w, `<h1>Projects</h1>`)
		fmt.Fprint(w, `<table class="list"><thead><tr><th>Name</th><th>Code</th><th>Client</th><th>Status</th><th>Roads</th></tr></thead><tbody>`)
		for _, p := range data.Projects {
			fmt.Fprintf(w, `<tr><td><a href="/projects/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>`,
				esc(p.ID), esc(p.Name), esc(p.Code), esc(p.Client), esc(p.Status), p.Roads)
		}
		fmt.Fprint(w, `</tbody></table>`)
	})
}

// PhaseCataloguePage renders the phase definitions with their items and
// formula expressions.
func PhaseCataloguePage(data PhaseCatalogueData) templ.Component {
	return layout("Phase catalogue", data.Header, func(w io.Writer) {
		fmt.Fprint(w, `<h1>Phase catalogue</h1>`)
		for _, group := range data.Phases {
			fmt.Fprintf(w, `<section class="phase-group"><h2>%s</h2>`, esc(group.Name))
			fmt.Fprint(w, `<table class="list"><thead><tr><th>Item</th><th>Mode</th><th>Unit</th><th>Formula</th><th>Active</th></tr></thead><tbody>`)
			for _, item := range group.Items {
				active := "yes"
				if !item.IsActive {
					active = "no"
				}
				fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td><code>%s</code></td><td>%s</td></tr>`,
					esc(item.Name), esc(item.MeasureMode), esc(item.Unit), esc(item.Expression), active)
			}
			fmt.Fprint(w, `</tbody></table></section>`)
		}
	})
}

// MeasurementsPage renders the per-road measurement grid.
func MeasurementsPage(data MeasurementsData) templ.Component {
	return layout("Measurements — "+data.RoadName, data.Header, func(w io.Writer) {
		fmt.Fprintf(w, `<h1>Measurements — %s</h1>`, esc(data.RoadName))
		fmt.Fprint(w, `<table class="list"><thead><tr><th>Interval</th><th>Phase item</th><th>Manual</th><th>Computed</th><th>Status</th></tr></thead><tbody>`)
		for _, row := range data.Rows {
			status := "ok"
			if row.ErrorText != "" {
				status = row.ErrorText
			} else if row.Manual == "" && row.Computed == "" {
				status = "unmeasured"
			}
			fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				esc(row.IntervalLabel), esc(row.PhaseItemName), esc(row.Manual), esc(row.Computed), esc(status))
		}
		fmt.Fprint(w, `</tbody></table>`)
	})
}

// BoqSheetListPage renders the BOQ sheets of a project.
func BoqSheetListPage(data BoqSheetListData) templ.Component {
	return layout("BOQ sheets", data.Header, func(w io.Writer) {
		fmt.Fprint(w, `<h1>BOQ sheets</h1>`)
		fmt.Fprint(w, `<table class="list"><thead><tr><th>Title</th><th>Kind</th><th>Lines</th><th>Total</th></tr></thead><tbody>`)
		for _, sheet := range data.Sheets {
			fmt.Fprintf(w, `<tr><td><a href="/projects/%s/boq/%s">%s</a></td><td>%s</td><td>%d</td><td>%s</td></tr>`,
				esc(data.ProjectID), esc(sheet.ID), esc(sheet.Title), esc(sheet.Kind), sheet.Lines, esc(sheet.Total))
		}
		fmt.Fprint(w, `</tbody></table>`)
	})
}

// BoqSheetPage renders one BOQ sheet.
func BoqSheetPage(data BoqSheetData) templ.Component {
	return layout(data.Title, data.Header, func(w io.Writer) {
		fmt.Fprintf(w, `<h1>%s <span class="kind">%s</span></h1>`, esc(data.Title), esc(data.Kind))
		fmt.Fprintf(w, `<p><a href="/projects/%s/boq/%s/export/excel">Export Excel</a></p>`,
			esc(data.ProjectID), esc(data.SheetID))
		fmt.Fprint(w, `<table class="list boq"><thead><tr><th>Code</th><th>Designation</th><th>Désignation</th><th>Unit</th><th>Qty</th><th>Unit price</th><th>Total</th></tr></thead><tbody>`)
		for _, row := range data.Rows {
			cls := "item"
			if row.Tone != "ITEM" {
				cls = "heading"
			}
			fmt.Fprintf(w, `<tr class="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				cls, esc(row.Code), esc(row.DesignationEN), esc(row.DesignationFR),
				esc(row.Unit), esc(row.Quantity), esc(row.UnitPrice), esc(row.TotalPrice))
		}
		fmt.Fprintf(w, `</tbody><tfoot><tr><td colspan="6">Grand total</td><td>%s</td></tr></tfoot></table>`, esc(data.Total))
	})
}

// ProgressPage renders the road progress roll-up.
func ProgressPage(data ProgressData) templ.Component {
	return layout("Progress — "+data.RoadName, data.Header, func(w io.Writer) {
		fmt.Fprintf(w, `<h1>Progress — %s</h1>`, esc(data.RoadName))
		fmt.Fprintf(w, `<p><a href="/projects/%s/roads/%s/progress/export/pdf">Export PDF</a></p>`,
			esc(data.ProjectID), esc(data.RoadID))
		fmt.Fprint(w, `<table class="list"><thead><tr><th>Phase</th><th>Quantity</th><th>Bill qty</th><th>Completion</th><th>Unmeasured</th></tr></thead><tbody>`)
		for _, phase := range data.Phases {
			cls := ""
			if phase.Over {
				cls = ` class="over"`
			}
			fmt.Fprintf(w, `<tr%s><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>`,
				cls, esc(phase.Name), esc(phase.Total), esc(phase.TotalBill), esc(phase.Completion), phase.Unmeasured)
		}
		fmt.Fprintf(w, `</tbody><tfoot><tr><td>Total</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr></tfoot></table>`,
			esc(data.Total), esc(data.TotalBill), esc(data.Completion), data.Unmeasured)
	})
}
