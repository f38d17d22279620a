package services

import (
	"fmt"
	"sort"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"roadworks/testhelpers"
)

type bindingFixture struct {
	app     *pocketbase.PocketBase
	project *core.Record
	item    *core.Record
	sheet   *core.Record
}

func newBindingFixture(t *testing.T) bindingFixture {
	t.Helper()

	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Binding Project")
	def := testhelpers.CreateTestPhaseDefinition(t, app, "Base layer", 1)
	item := testhelpers.CreateTestPhaseItem(t, app, def.Id, "Crushed stone")
	sheet := testhelpers.CreateTestBoqSheet(t, app, project.Id, "CONTRACT", "Contract BOQ")

	return bindingFixture{app: app, project: project, item: item, sheet: sheet}
}

func activeSingleBinding(t *testing.T, app *pocketbase.PocketBase, phaseItemID, projectID string) []*core.Record {
	t.Helper()

	links, err := app.FindRecordsByFilter(
		"phase_item_boq_links",
		"phase_item = {:item} && project = {:project} && is_active = true",
		"", 0, 0,
		map[string]any{"item": phaseItemID, "project": projectID},
	)
	if err != nil {
		t.Fatalf("failed to list links: %v", err)
	}
	return links
}

func activeMultiBindings(t *testing.T, app *pocketbase.PocketBase, phaseItemID string) []string {
	t.Helper()

	links, err := app.FindRecordsByFilter(
		"phase_item_boq_links",
		"phase_item = {:item} && project = '' && is_active = true",
		"", 0, 0,
		map[string]any{"item": phaseItemID},
	)
	if err != nil {
		t.Fatalf("failed to list links: %v", err)
	}
	var ids []string
	for _, link := range links {
		ids = append(ids, link.GetString("boq_item"))
	}
	sort.Strings(ids)
	return ids
}

func TestSetSingleBinding_SetAndReplace(t *testing.T) {
	fx := newBindingFixture(t)
	first := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "201", "ITEM", true)
	second := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "202", "ITEM", true)

	if err := SetSingleBinding(fx.app, fx.item.Id, fx.project.Id, first.Id); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	links := activeSingleBinding(t, fx.app, fx.item.Id, fx.project.Id)
	if len(links) != 1 || links[0].GetString("boq_item") != first.Id {
		t.Fatalf("after first bind: %d active links", len(links))
	}

	if err := SetSingleBinding(fx.app, fx.item.Id, fx.project.Id, second.Id); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	links = activeSingleBinding(t, fx.app, fx.item.Id, fx.project.Id)
	if len(links) != 1 || links[0].GetString("boq_item") != second.Id {
		t.Fatalf("after rebind: want only %s active, got %d links", second.Id, len(links))
	}

	// The first link is deactivated, not deleted.
	all, err := fx.app.FindRecordsByFilter(
		"phase_item_boq_links",
		"phase_item = {:item} && project = {:project}",
		"", 0, 0,
		map[string]any{"item": fx.item.Id, "project": fx.project.Id},
	)
	if err != nil {
		t.Fatalf("failed to list all links: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 link rows (one inactive), got %d", len(all))
	}
}

func TestSetSingleBinding_Idempotent(t *testing.T) {
	fx := newBindingFixture(t)
	boqItem := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "201", "ITEM", true)

	if err := SetSingleBinding(fx.app, fx.item.Id, fx.project.Id, boqItem.Id); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	if err := SetSingleBinding(fx.app, fx.item.Id, fx.project.Id, boqItem.Id); err != nil {
		t.Fatalf("repeat bind: %v", err)
	}

	links := activeSingleBinding(t, fx.app, fx.item.Id, fx.project.Id)
	if len(links) != 1 {
		t.Errorf("repeat bind must not create a second link, got %d", len(links))
	}
}

func TestSetSingleBinding_Clear(t *testing.T) {
	fx := newBindingFixture(t)
	boqItem := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "201", "ITEM", true)

	if err := SetSingleBinding(fx.app, fx.item.Id, fx.project.Id, boqItem.Id); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := SetSingleBinding(fx.app, fx.item.Id, fx.project.Id, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if links := activeSingleBinding(t, fx.app, fx.item.Id, fx.project.Id); len(links) != 0 {
		t.Errorf("expected no active link after clear, got %d", len(links))
	}
}

func TestSetSingleBinding_RejectsSectionTone(t *testing.T) {
	fx := newBindingFixture(t)
	section := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "200", "SECTION", true)

	err := SetSingleBinding(fx.app, fx.item.Id, fx.project.Id, section.Id)
	if !IsConstraint(err) {
		t.Errorf("expected constraint error for SECTION tone, got %v", err)
	}
}

func TestSetSingleBinding_RejectsInactiveItem(t *testing.T) {
	fx := newBindingFixture(t)
	inactive := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "201", "ITEM", false)

	err := SetSingleBinding(fx.app, fx.item.Id, fx.project.Id, inactive.Id)
	if !IsConstraint(err) {
		t.Errorf("expected constraint error for inactive BOQ item, got %v", err)
	}
}

func TestSetSingleBinding_UnknownBoqItem(t *testing.T) {
	fx := newBindingFixture(t)

	err := SetSingleBinding(fx.app, fx.item.Id, fx.project.Id, "missing000000id")
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestReplaceBindings_Diff(t *testing.T) {
	fx := newBindingFixture(t)
	item5 := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "205", "ITEM", true)
	item7 := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "207", "ITEM", true)
	item9 := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "209", "ITEM", true)

	if err := ReplaceBindings(fx.app, fx.item.Id, []string{item5.Id, item7.Id}); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	// Remember the link row carrying item7, it must survive the diff
	// untouched.
	before, err := fx.app.FindRecordsByFilter(
		"phase_item_boq_links",
		"phase_item = {:item} && boq_item = {:boq} && project = ''",
		"", 1, 0,
		map[string]any{"item": fx.item.Id, "boq": item7.Id},
	)
	if err != nil || len(before) != 1 {
		t.Fatalf("failed to locate item7 link: %v (%d rows)", err, len(before))
	}

	if err := ReplaceBindings(fx.app, fx.item.Id, []string{item7.Id, item9.Id}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got := activeMultiBindings(t, fx.app, fx.item.Id)
	want := []string{item7.Id, item9.Id}
	sort.Strings(want)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("active bindings = %v, want %v", got, want)
	}

	after, err := fx.app.FindRecordById("phase_item_boq_links", before[0].Id)
	if err != nil {
		t.Fatalf("item7 link disappeared: %v", err)
	}
	if !after.GetBool("is_active") {
		t.Error("item7 link should have stayed active across the diff")
	}
}

func TestReplaceBindings_SameSetIsNoOp(t *testing.T) {
	fx := newBindingFixture(t)
	boqItem := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "205", "ITEM", true)

	if err := ReplaceBindings(fx.app, fx.item.Id, []string{boqItem.Id}); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := ReplaceBindings(fx.app, fx.item.Id, []string{boqItem.Id}); err != nil {
		t.Fatalf("repeat replace: %v", err)
	}

	got := activeMultiBindings(t, fx.app, fx.item.Id)
	if len(got) != 1 {
		t.Errorf("resubmitting the same set changed the link count: %v", got)
	}
}

func TestReplaceBindings_EmptySetClearsAll(t *testing.T) {
	fx := newBindingFixture(t)
	boqItem := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "205", "ITEM", true)

	if err := ReplaceBindings(fx.app, fx.item.Id, []string{boqItem.Id}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := ReplaceBindings(fx.app, fx.item.Id, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := activeMultiBindings(t, fx.app, fx.item.Id); len(got) != 0 {
		t.Errorf("expected no active bindings, got %v", got)
	}
}

func TestReplaceBindings_ValidatesBeforeWriting(t *testing.T) {
	fx := newBindingFixture(t)
	good := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "205", "ITEM", true)
	section := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "200", "SECTION", true)

	err := ReplaceBindings(fx.app, fx.item.Id, []string{good.Id, section.Id})
	if !IsConstraint(err) {
		t.Fatalf("expected constraint error, got %v", err)
	}

	// The good id must not have been written either: the batch fails as
	// a whole.
	if got := activeMultiBindings(t, fx.app, fx.item.Id); len(got) != 0 {
		t.Errorf("partial write detected: %v", got)
	}
}

func TestListIntervalBindings(t *testing.T) {
	fx := newBindingFixture(t)
	road := testhelpers.CreateTestRoad(t, fx.app, fx.project.Id, "RN12")
	def, err := fx.app.FindRecordById("phase_definitions", fx.item.GetString("phase_definition"))
	if err != nil {
		t.Fatalf("failed to load phase definition: %v", err)
	}
	phase := testhelpers.CreateTestPhase(t, fx.app, road.Id, def.Id)
	interval := testhelpers.CreateTestInterval(t, fx.app, phase.Id, 0, 250, 500)

	boqItem := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "205", "ITEM", true)
	if err := ReplaceBindings(fx.app, fx.item.Id, []string{boqItem.Id}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	bindings, err := ListIntervalBindings(fx.app, []string{interval.Id})
	if err != nil {
		t.Fatalf("ListIntervalBindings() error = %v", err)
	}
	got := bindings[interval.Id]
	if len(got) != 1 {
		t.Fatalf("bindings for interval = %d, want 1", len(got))
	}
	if got[0].BoqItemID != boqItem.Id || got[0].PhaseItemID != fx.item.Id {
		t.Errorf("binding = %+v, want boq item %s on phase item %s", got[0], boqItem.Id, fx.item.Id)
	}
	if got[0].Code != "205" || got[0].UnitPrice != 120 {
		t.Errorf("binding detail = %+v", got[0])
	}
}

func TestListIntervalBindings_SkipsInactiveItems(t *testing.T) {
	fx := newBindingFixture(t)
	road := testhelpers.CreateTestRoad(t, fx.app, fx.project.Id, "RN12")
	phase := testhelpers.CreateTestPhase(t, fx.app, road.Id, fx.item.GetString("phase_definition"))
	interval := testhelpers.CreateTestInterval(t, fx.app, phase.Id, 0, 250, 500)

	boqItem := testhelpers.CreateTestBoqItem(t, fx.app, fx.sheet.Id, "205", "ITEM", true)
	if err := ReplaceBindings(fx.app, fx.item.Id, []string{boqItem.Id}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	fx.item.Set("is_active", false)
	if err := fx.app.Save(fx.item); err != nil {
		t.Fatalf("failed to deactivate item: %v", err)
	}

	bindings, err := ListIntervalBindings(fx.app, []string{interval.Id})
	if err != nil {
		t.Fatalf("ListIntervalBindings() error = %v", err)
	}
	if len(bindings[interval.Id]) != 0 {
		t.Errorf("deactivated item must not surface bindings, got %v", bindings[interval.Id])
	}
}

func TestListIntervalBindings_BatchCap(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	ids := make([]string, MaxBindingLookup+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("interval%07d", i)
	}
	_, err := ListIntervalBindings(app, ids)
	if !IsValidation(err) {
		t.Errorf("expected validation error for oversized batch, got %v", err)
	}
}
