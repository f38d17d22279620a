package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"roadworks/services"
	"roadworks/testhelpers"
)

func TestHandleProgressJSON(t *testing.T) {
	app, road, item, interval := measurementSetup(t)

	if _, err := services.SavePhaseItemInputs(app, []services.InputSave{{
		PhaseItemID: item.Id,
		IntervalID:  interval.Id,
		Values:      map[string]any{"length": 100, "width": 4},
	}}); err != nil {
		t.Fatalf("save inputs: %v", err)
	}

	handler := HandleProgressJSON(app)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.SetPathValue("roadId", road.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var progress services.RoadProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &progress); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if progress.Total != 400 {
		t.Errorf("total = %v, want 400", progress.Total)
	}
	if progress.Ratio != 0.4 {
		t.Errorf("ratio = %v, want 0.4", progress.Ratio)
	}
}

func TestHandleProgressJSON_UnknownRoad(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleProgressJSON(app)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.SetPathValue("roadId", "nonexistent")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleProgressPage(t *testing.T) {
	app, road, item, interval := measurementSetup(t)

	if _, err := services.SavePhaseItemInputs(app, []services.InputSave{{
		PhaseItemID: item.Id,
		IntervalID:  interval.Id,
		Values:      map[string]any{"length": 100, "width": 4},
	}}); err != nil {
		t.Fatalf("save inputs: %v", err)
	}

	handler := HandleProgressPage(app)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.SetPathValue("roadId", road.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "RN12", "Earthworks", "40.0%")
}

func TestHandleProgressExportPDF(t *testing.T) {
	app, road, item, interval := measurementSetup(t)

	if _, err := services.SavePhaseItemInputs(app, []services.InputSave{{
		PhaseItemID: item.Id,
		IntervalID:  interval.Id,
		Values:      map[string]any{"length": 50, "width": 4},
	}}); err != nil {
		t.Fatalf("save inputs: %v", err)
	}

	handler := HandleProgressExportPDF(app)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.SetPathValue("roadId", road.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}
	if body := rec.Body.Bytes(); len(body) < 5 || string(body[:5]) != "%PDF-" {
		t.Error("response body is not a PDF")
	}
}
