package services

import (
	"github.com/pocketbase/pocketbase/core"
)

// BuildRoadProgress loads a road's phases, intervals and measurement rows
// and rolls them up with AggregatePhase/AggregateRoad. An interval's
// effective quantity is the sum of the effective quantities of its
// measurement rows; an interval with no measured row counts as unmeasured.
func BuildRoadProgress(app core.App, roadID string) (RoadProgress, error) {
	road, err := app.FindRecordById("roads", roadID)
	if err != nil {
		return RoadProgress{}, &NotFoundError{Entity: "road", ID: roadID}
	}

	phases, err := app.FindRecordsByFilter(
		"phases",
		"road = {:road}",
		"", 0, 0,
		map[string]any{"road": roadID},
	)
	if err != nil {
		return RoadProgress{}, err
	}

	var phaseProgress []PhaseProgress
	for _, phase := range phases {
		name := ""
		if def, err := app.FindRecordById("phase_definitions", phase.GetString("phase_definition")); err == nil {
			name = def.GetString("name")
		}

		intervals, err := app.FindRecordsByFilter(
			"intervals",
			"phase = {:phase}",
			"start_pos", 0, 0,
			map[string]any{"phase": phase.Id},
		)
		if err != nil {
			return RoadProgress{}, err
		}

		quantities := make([]IntervalQuantity, 0, len(intervals))
		for _, interval := range intervals {
			quantities = append(quantities, IntervalQuantity{
				IntervalID:   interval.Id,
				Effective:    intervalEffective(app, interval.Id),
				BillQuantity: interval.GetFloat("bill_quantity"),
			})
		}

		phaseProgress = append(phaseProgress, AggregatePhase(phase.Id, name, quantities))
	}

	return AggregateRoad(roadID, road.GetString("name"), phaseProgress), nil
}

// BuildProjectProgress aggregates every road of a project.
func BuildProjectProgress(app core.App, projectID string) ([]RoadProgress, error) {
	if _, err := app.FindRecordById("projects", projectID); err != nil {
		return nil, &NotFoundError{Entity: "project", ID: projectID}
	}

	roads, err := app.FindRecordsByFilter(
		"roads",
		"project = {:project}",
		"name", 0, 0,
		map[string]any{"project": projectID},
	)
	if err != nil {
		return nil, err
	}

	var out []RoadProgress
	for _, road := range roads {
		progress, err := BuildRoadProgress(app, road.Id)
		if err != nil {
			return nil, err
		}
		out = append(out, progress)
	}
	return out, nil
}

// intervalEffective sums the effective quantities of an interval's
// measurement rows, or returns nil when none of them is measured.
func intervalEffective(app core.App, intervalID string) *float64 {
	rows, err := app.FindRecordsByFilter(
		"phase_item_inputs",
		"interval = {:interval}",
		"", 0, 0,
		map[string]any{"interval": intervalID},
	)
	if err != nil {
		return nil
	}

	var total float64
	measured := false
	for _, row := range rows {
		result := LoadInputResult(row)
		if eff := result.Effective(); eff != nil {
			total += *eff
			measured = true
		}
	}
	if !measured {
		return nil
	}
	return &total
}
