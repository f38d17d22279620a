package services

// IntervalQuantity is one interval's contribution to progress: its
// effective quantity (nil when unmeasured) and the bill quantity it is
// measured against.
type IntervalQuantity struct {
	IntervalID   string
	Effective    *float64
	BillQuantity float64
}

// IntervalProgress is the per-interval completion figure. Ratio is the raw
// effective/bill quotient kept for over-completion detection; Display is
// the same ratio clamped to [0, 1] for rendering.
type IntervalProgress struct {
	IntervalID   string
	Effective    *float64
	BillQuantity float64
	Ratio        float64
	Display      float64
	Over         bool
}

// PhaseProgress aggregates the measured intervals of one phase. Totals are
// plain sums over the measured intervals, so a road total is exactly the
// sum of its phase totals.
type PhaseProgress struct {
	PhaseID    string
	Name       string
	Intervals  []IntervalProgress
	Total      float64 // sum of effective quantities over measured intervals
	TotalBill  float64 // sum of bill quantities over those same intervals
	Measured   int
	Unmeasured int
	Ratio      float64
	Display    float64
	Over       bool
}

// RoadProgress aggregates phase totals for one road.
type RoadProgress struct {
	RoadID     string
	Name       string
	Phases     []PhaseProgress
	Total      float64
	TotalBill  float64
	Measured   int
	Unmeasured int
	Ratio      float64
	Display    float64
	Over       bool
}

func completionRatio(total, bill float64) (ratio, display float64, over bool) {
	if bill == 0 {
		return 0, 0, false
	}
	ratio = total / bill
	display = ratio
	if display < 0 {
		display = 0
	}
	if display > 1 {
		display = 1
	}
	return ratio, display, ratio > 1
}

// AggregatePhase rolls interval quantities up into one phase figure.
// Unmeasured intervals are excluded from both sides of the ratio and
// reported through the Unmeasured count instead, so they neither drag the
// percentage down as zeros nor vanish from the interval count.
func AggregatePhase(phaseID, name string, intervals []IntervalQuantity) PhaseProgress {
	progress := PhaseProgress{PhaseID: phaseID, Name: name}

	for _, iv := range intervals {
		entry := IntervalProgress{
			IntervalID:   iv.IntervalID,
			Effective:    iv.Effective,
			BillQuantity: iv.BillQuantity,
		}
		if iv.Effective == nil {
			progress.Unmeasured++
			progress.Intervals = append(progress.Intervals, entry)
			continue
		}
		entry.Ratio, entry.Display, entry.Over = completionRatio(*iv.Effective, iv.BillQuantity)
		progress.Measured++
		progress.Total += *iv.Effective
		progress.TotalBill += iv.BillQuantity
		progress.Intervals = append(progress.Intervals, entry)
	}

	progress.Ratio, progress.Display, progress.Over = completionRatio(progress.Total, progress.TotalBill)
	return progress
}

// AggregateRoad sums phase totals into a road figure. The road total is the
// sum of the phase totals, not a re-derived estimate, so interval, phase
// and road sums stay consistent.
func AggregateRoad(roadID, name string, phases []PhaseProgress) RoadProgress {
	progress := RoadProgress{RoadID: roadID, Name: name, Phases: phases}

	for _, ph := range phases {
		progress.Total += ph.Total
		progress.TotalBill += ph.TotalBill
		progress.Measured += ph.Measured
		progress.Unmeasured += ph.Unmeasured
	}

	progress.Ratio, progress.Display, progress.Over = completionRatio(progress.Total, progress.TotalBill)
	return progress
}
