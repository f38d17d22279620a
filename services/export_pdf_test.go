package services

import (
	"testing"
)

func TestGenerateProgressPDF_BasicReport(t *testing.T) {
	road := AggregateRoad("r1", "RN12 Section 3", []PhaseProgress{
		AggregatePhase("p1", "Earthworks", []IntervalQuantity{
			{IntervalID: "i1", Effective: floatPtr(400), BillQuantity: 1000},
			{IntervalID: "i2", Effective: nil, BillQuantity: 1000},
		}),
		AggregatePhase("p2", "Base layer", []IntervalQuantity{
			{IntervalID: "i3", Effective: floatPtr(1200), BillQuantity: 1000},
		}),
	})

	result, err := GenerateProgressPDF("RN12 Rehabilitation", road, "2026-09-01")
	if err != nil {
		t.Fatalf("GenerateProgressPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateProgressPDF() returned empty bytes")
	}
	// PDF files start with %PDF
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGenerateProgressPDF_EmptyRoad(t *testing.T) {
	road := AggregateRoad("r1", "Empty Road", nil)

	result, err := GenerateProgressPDF("Project", road, "2026-09-01")
	if err != nil {
		t.Fatalf("GenerateProgressPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateProgressPDF() returned empty bytes")
	}
}
