package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/firelightacademy/protocols-backend/internal/repos"
	"github.com/firelightacademy/protocols-backend/internal/repos/testutil"
	"github.com/firelightacademy/protocols-backend/internal/requestdata"
	"github.com/firelightacademy/protocols-backend/internal/types"
)

func newTestProtocolService(tb testing.TB, tx *gorm.DB) ProtocolService {
	tb.Helper()
	log := testutil.Logger(tb)
	return NewProtocolService(
		tx,
		log,
		repos.NewProtocolRepo(tx, log),
		repos.NewCategoryRepo(tx, log),
		repos.NewSectionRepo(tx, log),
		repos.NewItemRepo(tx, log),
		repos.NewItemProviderLevelRepo(tx, log),
		repos.NewProtocolRevisionRepo(tx, log),
		nil,
	)
}

func editorCtx(tb testing.TB, ctx context.Context, tx *gorm.DB) (context.Context, *types.User) {
	tb.Helper()
	user := testutil.SeedUser(tb, ctx, tx, uuid.New().String()+"@example.com")
	ctx = requestdata.WithRequestData(ctx, &requestdata.RequestData{
		UserID: user.ID,
		Role:   user.Role,
	})
	return ctx, user
}

func TestProtocolService_CreateAssignsOrderFromArrayPosition(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx, _ := editorCtx(t, context.Background(), tx)
	svc := newTestProtocolService(t, tx)

	category := testutil.SeedCategory(t, ctx, tx, "Medical")

	tree, err := svc.CreateProtocol(ctx, &ProtocolInput{
		Title:      "Chest Pain",
		CategoryID: category.ID,
		Sections: []SectionInput{
			{
				Title:       "Assessment",
				SectionType: types.SectionTypeAssessment,
				Items: []ItemInput{
					{Title: "History", Criteria: []CriterionInput{
						{Title: "Onset"},
						{Title: "Radiation"},
					}},
					{Title: "Vitals"},
				},
			},
			{
				Title:       "Treatment",
				SectionType: types.SectionTypeFlowchart,
				Items: []ItemInput{
					{Title: "STEMI?", IsDecision: true, YesTargetIndex: intPtr(1), NoTargetIndex: intPtr(2)},
					{Title: "Transmit ECG"},
					{Title: "Monitor"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateProtocol: %v", err)
	}

	if len(tree.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(tree.Sections))
	}
	for i, st := range tree.Sections {
		if st.Section.SortOrder != i {
			t.Fatalf("section %d: want sort_order %d, got %d", i, i, st.Section.SortOrder)
		}
	}
	if tree.Sections[0].Section.Title != "Assessment" || tree.Sections[1].Section.Title != "Treatment" {
		t.Fatalf("sections out of order: %q, %q", tree.Sections[0].Section.Title, tree.Sections[1].Section.Title)
	}

	assessment := tree.Sections[0]
	if len(assessment.Items) != 2 {
		t.Fatalf("expected 2 assessment items, got %d", len(assessment.Items))
	}
	for j, it := range assessment.Items {
		if it.Item.SortOrder != j {
			t.Fatalf("item %d: want sort_order %d, got %d", j, j, it.Item.SortOrder)
		}
	}
	if len(assessment.Items[0].Criteria) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(assessment.Items[0].Criteria))
	}
	if assessment.Items[0].Criteria[0].Title != "Onset" {
		t.Fatalf("criteria out of order: %q", assessment.Items[0].Criteria[0].Title)
	}

	flow := tree.Sections[1]
	decision := flow.Items[0].Item
	if !decision.IsDecision {
		t.Fatalf("expected first flow item to be a decision")
	}
	if decision.YesTargetID == nil || *decision.YesTargetID != flow.Items[1].Item.ID {
		t.Fatalf("yes target not resolved to the submitted position")
	}
	if decision.NoTargetID == nil || *decision.NoTargetID != flow.Items[2].Item.ID {
		t.Fatalf("no target not resolved to the submitted position")
	}

	revisions, err := svc.ListRevisions(ctx, tree.Protocol.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revisions) != 1 {
		t.Fatalf("expected 1 revision after create, got %d", len(revisions))
	}
}

func TestProtocolService_UpdateReconcilesByID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx, _ := editorCtx(t, context.Background(), tx)
	svc := newTestProtocolService(t, tx)

	category := testutil.SeedCategory(t, ctx, tx, "Trauma")

	tree, err := svc.CreateProtocol(ctx, &ProtocolInput{
		Title:      "Burns",
		CategoryID: category.ID,
		Sections: []SectionInput{
			{Title: "Keep", SectionType: types.SectionTypeChecklist, Items: []ItemInput{
				{Title: "Stop the burning"},
				{Title: "Remove jewelry"},
			}},
			{Title: "Drop", SectionType: types.SectionTypeInformation, Items: []ItemInput{
				{Title: "Old note"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("CreateProtocol: %v", err)
	}

	keptSection := tree.Sections[0].Section
	keptItem := tree.Sections[0].Items[0].Item
	droppedItem := tree.Sections[0].Items[1].Item
	droppedSection := tree.Sections[1].Section

	updated, err := svc.UpdateProtocol(ctx, tree.Protocol.ID, &ProtocolInput{
		Title:      "Burns (revised)",
		CategoryID: category.ID,
		Sections: []SectionInput{
			{ID: &keptSection.ID, Title: "Keep (renamed)", SectionType: types.SectionTypeChecklist, Items: []ItemInput{
				{ID: &keptItem.ID, Title: "Stop the burning process"},
				{Title: "Estimate BSA"},
			}},
			{Title: "Added", SectionType: types.SectionTypeInformation},
		},
	})
	if err != nil {
		t.Fatalf("UpdateProtocol: %v", err)
	}

	if updated.Protocol.Title != "Burns (revised)" {
		t.Fatalf("title not updated: %q", updated.Protocol.Title)
	}
	if len(updated.Sections) != 2 {
		t.Fatalf("expected 2 sections after update, got %d", len(updated.Sections))
	}
	if updated.Sections[0].Section.ID != keptSection.ID {
		t.Fatalf("kept section lost its id")
	}
	if updated.Sections[0].Section.Title != "Keep (renamed)" {
		t.Fatalf("kept section not renamed: %q", updated.Sections[0].Section.Title)
	}
	if updated.Sections[0].Items[0].Item.ID != keptItem.ID {
		t.Fatalf("kept item lost its id")
	}
	if updated.Sections[0].Items[0].Item.Title != "Stop the burning process" {
		t.Fatalf("kept item not updated: %q", updated.Sections[0].Items[0].Item.Title)
	}
	if updated.Sections[1].Section.ID == droppedSection.ID {
		t.Fatalf("new section reused the dropped section's id")
	}

	var sectionCount int64
	if err := tx.Model(&types.Section{}).Where("id = ?", droppedSection.ID).Count(&sectionCount).Error; err != nil {
		t.Fatalf("count dropped section: %v", err)
	}
	if sectionCount != 0 {
		t.Fatalf("dropped section still present")
	}
	var itemCount int64
	if err := tx.Model(&types.Item{}).Where("id = ?", droppedItem.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count dropped item: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("dropped item still present")
	}

	revisions, err := svc.ListRevisions(ctx, tree.Protocol.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("expected 2 revisions after create+update, got %d", len(revisions))
	}
}

func TestProtocolService_DeleteLeavesNoOrphans(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx, _ := editorCtx(t, context.Background(), tx)
	svc := newTestProtocolService(t, tx)

	category := testutil.SeedCategory(t, ctx, tx, "Airway")
	level := testutil.SeedProviderLevel(t, ctx, tx, "Paramedic", "P", 0)

	tree, err := svc.CreateProtocol(ctx, &ProtocolInput{
		Title:      "Intubation",
		CategoryID: category.ID,
		Sections: []SectionInput{
			{Title: "Steps", SectionType: types.SectionTypeChecklist, Items: []ItemInput{
				{Title: "Preoxygenate", ProviderLevels: []ProviderLinkInput{{ProviderLevelID: level.ID}}, Criteria: []CriterionInput{
					{Title: "SpO2 > 93%"},
				}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("CreateProtocol: %v", err)
	}

	if err := svc.DeleteProtocol(ctx, tree.Protocol.ID); err != nil {
		t.Fatalf("DeleteProtocol: %v", err)
	}

	var protocolCount, sectionCount, itemCount, linkCount int64
	if err := tx.Model(&types.Protocol{}).Where("id = ?", tree.Protocol.ID).Count(&protocolCount).Error; err != nil {
		t.Fatalf("count protocols: %v", err)
	}
	if err := tx.Model(&types.Section{}).Where("protocol_id = ?", tree.Protocol.ID).Count(&sectionCount).Error; err != nil {
		t.Fatalf("count sections: %v", err)
	}
	if err := tx.Model(&types.Item{}).Where("section_id = ?", tree.Sections[0].Section.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if err := tx.Model(&types.ItemProviderLevel{}).Where("item_id = ?", tree.Sections[0].Items[0].Item.ID).Count(&linkCount).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if protocolCount != 0 || sectionCount != 0 || itemCount != 0 || linkCount != 0 {
		t.Fatalf("orphans left behind: protocols=%d sections=%d items=%d links=%d", protocolCount, sectionCount, itemCount, linkCount)
	}

	if _, err := svc.GetProtocol(ctx, tree.Protocol.ID); err != ErrProtocolNotFound {
		t.Fatalf("expected ErrProtocolNotFound, got %v", err)
	}
}
