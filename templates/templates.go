// Package templates holds the typed page data structs and the templ
// components that render them.
package templates

// ActiveProject is the project selected via the active_project cookie.
type ActiveProject struct {
	ID   string
	Name string
}

// ProjectSelectorItem is one entry in the header project dropdown.
type ProjectSelectorItem struct {
	ID       string
	Name     string
	Client   string
	IsActive bool
}

// HeaderData feeds the shared page header.
type HeaderData struct {
	ActiveProject *ActiveProject
	Projects      []ProjectSelectorItem
}

// ProjectListData feeds the project list page.
type ProjectListData struct {
	Header   HeaderData
	Projects []ProjectRow
}

// ProjectRow is one project on the list page.
type ProjectRow struct {
	ID     string
	Name   string
	Code   string
	Client string
	Status string
	Roads  int
}

// PhaseItemRow is one phase item on the catalogue page.
type PhaseItemRow struct {
	ID          string
	Name        string
	MeasureMode string
	Unit        string
	IsActive    bool
	Expression  string
}

// PhaseCatalogueData feeds the phase catalogue page.
type PhaseCatalogueData struct {
	Header HeaderData
	Phases []PhaseCatalogueGroup
}

// PhaseCatalogueGroup is one phase definition with its items.
type PhaseCatalogueGroup struct {
	ID    string
	Name  string
	Items []PhaseItemRow
}

// MeasurementRow is one (phase item, interval) grid cell.
type MeasurementRow struct {
	PhaseItemID   string
	PhaseItemName string
	IntervalID    string
	IntervalLabel string
	Values        map[string]float64
	Manual        string // formatted, empty when absent
	Computed      string // formatted, empty when absent
	ErrorText     string
}

// MeasurementsData feeds the measurement grid page for one road.
type MeasurementsData struct {
	Header   HeaderData
	RoadID   string
	RoadName string
	Rows     []MeasurementRow
}

// BoqSheetRow is one BOQ line on the sheet page.
type BoqSheetRow struct {
	ID            string
	Code          string
	DesignationEN string
	DesignationFR string
	Unit          string
	Quantity      string
	UnitPrice     string
	TotalPrice    string
	Tone          string
	IsActive      bool
}

// BoqSheetListRow is one sheet on the per-project BOQ list page.
type BoqSheetListRow struct {
	ID    string
	Title string
	Kind  string
	Lines int
	Total string
}

// BoqSheetListData feeds the per-project BOQ sheet list page.
type BoqSheetListData struct {
	Header    HeaderData
	ProjectID string
	Sheets    []BoqSheetListRow
}

// BoqSheetData feeds the BOQ sheet page.
type BoqSheetData struct {
	Header    HeaderData
	SheetID   string
	ProjectID string
	Title     string
	Kind      string
	Rows      []BoqSheetRow
	Total     string
}

// ProgressPhaseRow is one phase line on the progress page.
type ProgressPhaseRow struct {
	Name       string
	Total      string
	TotalBill  string
	Completion string
	Unmeasured int
	Over       bool
}

// ProgressData feeds the road progress page.
type ProgressData struct {
	Header     HeaderData
	ProjectID  string
	RoadID     string
	RoadName   string
	Phases     []ProgressPhaseRow
	Total      string
	TotalBill  string
	Completion string
	Unmeasured int
}
