package services

// UnitOptions returns the list of measurement unit options for phase items
// and BOQ lines.
var UnitOptions = []string{
	"m",
	"m2",
	"m3",
	"ml",
	"km",
	"kg",
	"t",
	"u",
	"pc",
	"h",
	"day",
	"ls",
}

// MeasureModes are the supported phase item measurement modes.
var MeasureModes = []string{"LINEAR", "POINT"}

// BoqTones classify BOQ rows; only ITEM rows are bindable.
var BoqTones = []string{"SECTION", "SUBSECTION", "ITEM", "TOTAL"}

// SheetKinds distinguish the priced contract sheet from the as-built
// tracking sheet cloned from it.
var SheetKinds = []string{"CONTRACT", "ACTUAL"}

// IntervalSides tag which side of the road an interval covers.
var IntervalSides = []string{"LEFT", "RIGHT", "BOTH"}
