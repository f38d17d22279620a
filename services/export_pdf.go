package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateProgressPDF creates a road progress report PDF using maroto/v2.
// It returns the raw PDF bytes or an error.
func GenerateProgressPDF(projectName string, road RoadProgress, date string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addProgressHeader(m, projectName, road, date)
	addProgressTableHeader(m)
	for _, phase := range road.Phases {
		addPhaseRow(m, phase)
		for _, iv := range phase.Intervals {
			addIntervalRow(m, iv)
		}
	}
	addProgressSummary(m, road)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addProgressHeader adds the report title, project and date.
func addProgressHeader(m core.Maroto, projectName string, road RoadProgress, date string) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Progress Report — %s", road.Name), props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Project: %s", projectName), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", date), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	// Spacer
	m.AddRows(row.New(4))
}

// addProgressTableHeader adds the column header row for the progress table.
func addProgressTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(4).Add(
				text.New("Phase / Interval", headerTextLeft),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New("Quantity", headerText),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New("Bill Qty", headerText),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New("Completion", headerText),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New("Unmeasured", headerText),
			).WithStyle(&headerCell),
		),
	)
}

// addPhaseRow adds one bold phase summary row.
func addPhaseRow(m core.Maroto, phase PhaseProgress) {
	baseText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	completion := FormatPercent(phase.Display)
	if phase.Over {
		completion = fmt.Sprintf("%s (over: %s)", completion, FormatPercent(phase.Ratio))
	}

	m.AddRows(
		row.New(7).Add(
			col.New(4).Add(text.New(phase.Name, leftText)),
			col.New(2).Add(text.New(FormatQuantity(phase.Total), rightText)),
			col.New(2).Add(text.New(FormatQuantity(phase.TotalBill), rightText)),
			col.New(2).Add(text.New(completion, baseText)),
			col.New(2).Add(text.New(fmt.Sprintf("%d", phase.Unmeasured), baseText)),
		),
	)
}

// addIntervalRow adds one indented interval row under its phase.
func addIntervalRow(m core.Maroto, iv IntervalProgress) {
	bg := &props.Color{Red: 245, Green: 245, Blue: 245}
	cellStyle := &props.Cell{BackgroundColor: bg}

	baseText := props.Text{Size: 7, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	quantity := "—"
	completion := "unmeasured"
	if iv.Effective != nil {
		quantity = FormatQuantity(*iv.Effective)
		completion = FormatPercent(iv.Display)
		if iv.Over {
			completion = fmt.Sprintf("%s (over: %s)", completion, FormatPercent(iv.Ratio))
		}
	}

	m.AddRows(
		row.New(6).Add(
			col.New(4).Add(text.New("  "+iv.IntervalID, leftText)).WithStyle(cellStyle),
			col.New(2).Add(text.New(quantity, rightText)).WithStyle(cellStyle),
			col.New(2).Add(text.New(FormatQuantity(iv.BillQuantity), rightText)).WithStyle(cellStyle),
			col.New(2).Add(text.New(completion, baseText)).WithStyle(cellStyle),
			col.New(2).Add(text.New("", baseText)).WithStyle(cellStyle),
		),
	)
}

// addProgressSummary adds the road totals under the table.
func addProgressSummary(m core.Maroto, road RoadProgress) {
	m.AddRows(row.New(4))

	labelText := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	valueText := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}

	completion := FormatPercent(road.Display)
	if road.Over {
		completion = fmt.Sprintf("%s (over: %s)", completion, FormatPercent(road.Ratio))
	}

	m.AddRows(
		row.New(7).Add(
			col.New(4).Add(text.New("Road total:", labelText)),
			col.New(2).Add(text.New(FormatQuantity(road.Total), valueText)),
			col.New(2).Add(text.New(FormatQuantity(road.TotalBill), valueText)),
			col.New(2).Add(text.New(completion, valueText)),
			col.New(2).Add(text.New(fmt.Sprintf("%d", road.Unmeasured), valueText)),
		),
	)
}
