package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/firelightacademy/protocols-backend/internal/repos"
	"github.com/firelightacademy/protocols-backend/internal/repos/testutil"
	"github.com/firelightacademy/protocols-backend/internal/types"
)

func newTestEditorService(tb testing.TB, tx *gorm.DB) EditorService {
	tb.Helper()
	log := testutil.Logger(tb)
	return NewEditorService(
		tx,
		log,
		repos.NewProtocolRepo(tx, log),
		repos.NewSectionRepo(tx, log),
		repos.NewItemRepo(tx, log),
		repos.NewItemProviderLevelRepo(tx, log),
		nil,
	)
}

func TestEditorService_SaveFieldWhitelist(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx, user := editorCtx(t, context.Background(), tx)
	svc := newTestEditorService(t, tx)

	category := testutil.SeedCategory(t, ctx, tx, "Cardiac")
	protocol := testutil.SeedProtocol(t, ctx, tx, category.ID, user.ID, false)

	if err := svc.SaveField(ctx, EntityProtocol, protocol.ID, "title", "VF Arrest"); err != nil {
		t.Fatalf("SaveField title: %v", err)
	}
	var reloaded types.Protocol
	if err := tx.Where("id = ?", protocol.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload protocol: %v", err)
	}
	if reloaded.Title != "VF Arrest" {
		t.Fatalf("title not saved: %q", reloaded.Title)
	}

	err := svc.SaveField(ctx, EntityProtocol, protocol.ID, "is_published", "true")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected whitelist rejection, got %v", err)
	}

	if err := svc.SaveField(ctx, "bogus", protocol.ID, "title", "x"); err == nil {
		t.Fatalf("expected unknown kind rejection")
	}

	section := testutil.SeedSection(t, ctx, tx, protocol.ID, types.SectionTypeChecklist, 0)
	if err := svc.SaveField(ctx, EntitySection, section.ID, "section_type", "bogus"); err == nil {
		t.Fatalf("expected invalid section type rejection")
	}
	if err := svc.SaveField(ctx, EntitySection, section.ID, "section_type", types.SectionTypeFlowchart); err != nil {
		t.Fatalf("SaveField section_type: %v", err)
	}
}

func TestEditorService_SaveOrderRequiresExactIDSet(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx, user := editorCtx(t, context.Background(), tx)
	svc := newTestEditorService(t, tx)

	category := testutil.SeedCategory(t, ctx, tx, "Respiratory")
	protocol := testutil.SeedProtocol(t, ctx, tx, category.ID, user.ID, true)
	section := testutil.SeedSection(t, ctx, tx, protocol.ID, types.SectionTypeChecklist, 0)
	first := testutil.SeedItem(t, ctx, tx, section.ID, "first", 0)
	second := testutil.SeedItem(t, ctx, tx, section.ID, "second", 1)
	third := testutil.SeedItem(t, ctx, tx, section.ID, "third", 2)

	// partial list rejected, nothing moves
	err := svc.SaveOrder(ctx, EntityItem, section.ID, []uuid.UUID{third.ID, first.ID})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected partial list rejection, got %v", err)
	}

	// unknown id rejected
	err = svc.SaveOrder(ctx, EntityItem, section.ID, []uuid.UUID{third.ID, first.ID, uuid.New()})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected unknown id rejection, got %v", err)
	}

	// duplicate id rejected
	err = svc.SaveOrder(ctx, EntityItem, section.ID, []uuid.UUID{third.ID, first.ID, first.ID})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected duplicate id rejection, got %v", err)
	}

	var unchanged types.Item
	if err := tx.Where("id = ?", first.ID).First(&unchanged).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if unchanged.SortOrder != 0 {
		t.Fatalf("rejected reorder must not move rows, got sort_order %d", unchanged.SortOrder)
	}

	if err := svc.SaveOrder(ctx, EntityItem, section.ID, []uuid.UUID{third.ID, first.ID, second.ID}); err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	wantOrder := map[uuid.UUID]int{third.ID: 0, first.ID: 1, second.ID: 2}
	var items []*types.Item
	if err := tx.Where("section_id = ?", section.ID).Find(&items).Error; err != nil {
		t.Fatalf("reload items: %v", err)
	}
	for _, item := range items {
		if item.SortOrder != wantOrder[item.ID] {
			t.Fatalf("item %q: want sort_order %d, got %d", item.Title, wantOrder[item.ID], item.SortOrder)
		}
	}
}

func TestEditorService_DeleteItemClearsBranchTargets(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx, user := editorCtx(t, context.Background(), tx)
	svc := newTestEditorService(t, tx)

	category := testutil.SeedCategory(t, ctx, tx, "Neuro")
	protocol := testutil.SeedProtocol(t, ctx, tx, category.ID, user.ID, true)
	section := testutil.SeedSection(t, ctx, tx, protocol.ID, types.SectionTypeFlowchart, 0)

	target := testutil.SeedItem(t, ctx, tx, section.ID, "give benzo", 1)
	decision := &types.Item{
		ID:          uuid.New(),
		SectionID:   section.ID,
		Title:       "seizing?",
		SortOrder:   0,
		IsDecision:  true,
		YesTargetID: &target.ID,
		LinkType:    types.LinkTypeNone,
	}
	if err := tx.WithContext(ctx).Create(decision).Error; err != nil {
		t.Fatalf("seed decision: %v", err)
	}

	if err := svc.DeleteItem(ctx, target.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	var reloaded types.Item
	if err := tx.Where("id = ?", decision.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload decision: %v", err)
	}
	if reloaded.YesTargetID != nil {
		t.Fatalf("expected dangling yes target cleared")
	}
}

func TestEditorService_AddCriterionRejectsNesting(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx, user := editorCtx(t, context.Background(), tx)
	svc := newTestEditorService(t, tx)

	category := testutil.SeedCategory(t, ctx, tx, "Assessment")
	protocol := testutil.SeedProtocol(t, ctx, tx, category.ID, user.ID, false)
	section := testutil.SeedSection(t, ctx, tx, protocol.ID, types.SectionTypeAssessment, 0)
	parent := testutil.SeedItem(t, ctx, tx, section.ID, "history", 0)

	criterion, err := svc.AddCriterion(ctx, parent.ID, &CriterionInput{Title: "onset"})
	if err != nil {
		t.Fatalf("AddCriterion: %v", err)
	}
	if criterion.ParentID == nil || *criterion.ParentID != parent.ID {
		t.Fatalf("criterion not attached to parent")
	}

	if _, err := svc.AddCriterion(ctx, criterion.ID, &CriterionInput{Title: "too deep"}); err == nil {
		t.Fatalf("expected nesting rejection")
	}
}
