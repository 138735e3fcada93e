package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/firelightacademy/protocols-backend/internal/types"
)

func intPtr(v int) *int { return &v }

func TestValidateProtocolInput_CollectsEveryProblem(t *testing.T) {
	in := &ProtocolInput{
		Title: "  ",
		Sections: []SectionInput{
			{Title: "", SectionType: "bogus"},
		},
	}
	vErr := ValidateProtocolInput(in)
	if vErr == nil {
		t.Fatalf("expected validation error")
	}
	if len(vErr.Problems) != 4 {
		t.Fatalf("expected 4 problems, got %d: %v", len(vErr.Problems), vErr.Problems)
	}
	joined := strings.Join(vErr.Problems, "; ")
	for _, want := range []string{"title is required", "category is required", "section 1: title is required", "invalid section type"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected problem %q in %q", want, joined)
		}
	}
}

func TestValidateProtocolInput_BranchTargets(t *testing.T) {
	base := func() *ProtocolInput {
		return &ProtocolInput{
			Title:      "Cardiac Arrest",
			CategoryID: uuid.New(),
			Sections: []SectionInput{
				{
					Title:       "Flow",
					SectionType: types.SectionTypeFlowchart,
					Items: []ItemInput{
						{Title: "Pulse?", IsDecision: true},
						{Title: "CPR"},
						{Title: "Monitor"},
					},
				},
			},
		}
	}

	valid := base()
	valid.Sections[0].Items[0].YesTargetIndex = intPtr(1)
	valid.Sections[0].Items[0].NoTargetIndex = intPtr(2)
	if vErr := ValidateProtocolInput(valid); vErr != nil {
		t.Fatalf("expected valid input, got %v", vErr.Problems)
	}

	outOfRange := base()
	outOfRange.Sections[0].Items[0].YesTargetIndex = intPtr(9)
	if vErr := ValidateProtocolInput(outOfRange); vErr == nil {
		t.Fatalf("expected out of range target to be rejected")
	}

	selfRef := base()
	selfRef.Sections[0].Items[0].YesTargetIndex = intPtr(0)
	if vErr := ValidateProtocolInput(selfRef); vErr == nil {
		t.Fatalf("expected self-referencing target to be rejected")
	}

	nonDecision := base()
	nonDecision.Sections[0].Items[1].YesTargetIndex = intPtr(2)
	if vErr := ValidateProtocolInput(nonDecision); vErr == nil {
		t.Fatalf("expected branch target on non-decision step to be rejected")
	}
}

func TestValidateProtocolInput_ProtocolLinkRequiresTarget(t *testing.T) {
	in := &ProtocolInput{
		Title:      "Trauma",
		CategoryID: uuid.New(),
		Sections: []SectionInput{
			{
				Title:       "Flow",
				SectionType: types.SectionTypeFlowchart,
				Items: []ItemInput{
					{Title: "See burns protocol", LinkType: types.LinkTypeProtocol},
				},
			},
		},
	}
	vErr := ValidateProtocolInput(in)
	if vErr == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(vErr.Error(), "requires a target protocol") {
		t.Fatalf("unexpected problems: %v", vErr.Problems)
	}

	target := uuid.New()
	in.Sections[0].Items[0].TargetProtocolID = &target
	if vErr := ValidateProtocolInput(in); vErr != nil {
		t.Fatalf("expected valid input, got %v", vErr.Problems)
	}
}

func TestOrphanIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	existing := []uuid.UUID{a, b, c}
	submitted := []*uuid.UUID{&a, nil, &c}

	orphans := orphanIDs(existing, submitted)
	if len(orphans) != 1 || orphans[0] != b {
		t.Fatalf("expected only %v orphaned, got %v", b, orphans)
	}

	if got := orphanIDs(existing, []*uuid.UUID{&a, &b, &c}); len(got) != 0 {
		t.Fatalf("expected no orphans, got %v", got)
	}
	if got := orphanIDs(nil, submitted); len(got) != 0 {
		t.Fatalf("expected no orphans for empty existing, got %v", got)
	}
}

func TestBuildSnapshot_CapturesTreeInOrder(t *testing.T) {
	protocol := &types.Protocol{
		ID:         uuid.New(),
		CategoryID: uuid.New(),
		Title:      "Seizure",
	}
	sectionA := &types.Section{ID: uuid.New(), ProtocolID: protocol.ID, Title: "Assess", SectionType: types.SectionTypeAssessment, SortOrder: 0}
	sectionB := &types.Section{ID: uuid.New(), ProtocolID: protocol.ID, Title: "Flow", SectionType: types.SectionTypeFlowchart, SortOrder: 1}

	parent := &types.Item{ID: uuid.New(), SectionID: sectionA.ID, Title: "History"}
	child := &types.Item{ID: uuid.New(), SectionID: sectionA.ID, ParentID: &parent.ID, Title: "Duration"}
	step := &types.Item{ID: uuid.New(), SectionID: sectionB.ID, Title: "Protect airway"}

	pct := 50.0
	link := &types.ItemProviderLevel{ID: uuid.New(), ItemID: step.ID, ProviderLevelID: uuid.New(), Percentage: &pct}

	snap := buildSnapshot(
		protocol,
		[]*types.Section{sectionA, sectionB},
		map[uuid.UUID][]*types.Item{
			sectionA.ID: {parent, child},
			sectionB.ID: {step},
		},
		map[uuid.UUID][]*types.ItemProviderLevel{
			step.ID: {link},
		},
	)

	if snap.Title != "Seizure" {
		t.Fatalf("expected title captured, got %q", snap.Title)
	}
	if len(snap.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(snap.Sections))
	}
	if snap.Sections[0].ID != sectionA.ID || snap.Sections[1].ID != sectionB.ID {
		t.Fatalf("sections out of order")
	}
	if len(snap.Sections[0].Items) != 2 {
		t.Fatalf("expected parent and child captured, got %d items", len(snap.Sections[0].Items))
	}
	if snap.Sections[0].Items[1].ParentID == nil || *snap.Sections[0].Items[1].ParentID != parent.ID {
		t.Fatalf("expected criterion to keep its parent id")
	}
	flowItems := snap.Sections[1].Items
	if len(flowItems) != 1 || len(flowItems[0].ProviderLevels) != 1 {
		t.Fatalf("expected provider link captured on flow step")
	}
	if flowItems[0].ProviderLevels[0].Percentage == nil || *flowItems[0].ProviderLevels[0].Percentage != 50.0 {
		t.Fatalf("expected percentage preserved in snapshot")
	}
}
