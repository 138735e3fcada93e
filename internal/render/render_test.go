package render

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/firelightacademy/protocols-backend/internal/types"
)

func step(section uuid.UUID, order int, title string) *types.Item {
	return &types.Item{
		ID:        uuid.New(),
		SectionID: section,
		Title:     title,
		SortOrder: order,
		LinkType:  types.LinkTypeNone,
	}
}

func TestFlowchartPositionalDecisionConsumesNextTwoSteps(t *testing.T) {
	sectionID := uuid.New()
	section := &types.Section{ID: sectionID, SectionType: types.SectionTypeFlowchart}

	start := step(sectionID, 0, "Assess airway")
	decision := step(sectionID, 1, "Breathing adequate?")
	decision.IsDecision = true
	yes := step(sectionID, 2, "Monitor and transport")
	no := step(sectionID, 3, "Begin ventilation")
	tail := step(sectionID, 4, "Reassess")

	layout := BuildLayout(Input{
		ProtocolID:     uuid.New(),
		Sections:       []*types.Section{section},
		ItemsBySection: map[uuid.UUID][]*types.Item{sectionID: {start, decision, yes, no, tail}},
	})

	if len(layout.Sections) != 1 {
		t.Fatalf("section count: want=1 got=%d", len(layout.Sections))
	}
	nodes := layout.Sections[0].Nodes
	if len(nodes) != 3 {
		t.Fatalf("node count: want=3 got=%d (branch steps must not render standalone)", len(nodes))
	}
	if nodes[0].Kind != FlowNodeStep || nodes[0].Title != "Assess airway" {
		t.Fatalf("first node: got kind=%q title=%q", nodes[0].Kind, nodes[0].Title)
	}
	d := nodes[1]
	if d.Kind != FlowNodeDecision {
		t.Fatalf("decision kind: want=%q got=%q", FlowNodeDecision, d.Kind)
	}
	if d.Yes == nil || d.Yes.ItemID != yes.ID {
		t.Fatalf("yes branch not taken from position index+1")
	}
	if d.No == nil || d.No.ItemID != no.ID {
		t.Fatalf("no branch not taken from position index+2")
	}
	if nodes[2].ItemID != tail.ID {
		t.Fatalf("walk did not resume after consumed branches: got %q", nodes[2].Title)
	}
}

func TestFlowchartDecisionWithoutTwoFollowersRendersNoBranches(t *testing.T) {
	sectionID := uuid.New()
	section := &types.Section{ID: sectionID, SectionType: types.SectionTypeFlowchart}

	decision := step(sectionID, 0, "Pulse present?")
	decision.IsDecision = true
	only := step(sectionID, 1, "Start CPR")

	layout := BuildLayout(Input{
		Sections:       []*types.Section{section},
		ItemsBySection: map[uuid.UUID][]*types.Item{sectionID: {decision, only}},
	})

	nodes := layout.Sections[0].Nodes
	if len(nodes) != 2 {
		t.Fatalf("node count: want=2 got=%d", len(nodes))
	}
	if nodes[0].Yes != nil || nodes[0].No != nil {
		t.Fatalf("decision with a single follower must not consume branches")
	}
}

func TestFlowchartExplicitTargetsTakePrecedence(t *testing.T) {
	sectionID := uuid.New()
	section := &types.Section{ID: sectionID, SectionType: types.SectionTypeFlowchart}

	decision := step(sectionID, 0, "Stable?")
	decision.IsDecision = true
	mid := step(sectionID, 1, "Obtain access")
	yes := step(sectionID, 2, "Transport")
	no := step(sectionID, 3, "Treat on scene")
	decision.YesTargetID = &yes.ID
	decision.NoTargetID = &no.ID

	layout := BuildLayout(Input{
		Sections:       []*types.Section{section},
		ItemsBySection: map[uuid.UUID][]*types.Item{sectionID: {decision, mid, yes, no}},
	})

	nodes := layout.Sections[0].Nodes
	if len(nodes) != 2 {
		t.Fatalf("node count: want=2 got=%d", len(nodes))
	}
	d := nodes[0]
	if d.Yes == nil || d.Yes.ItemID != yes.ID {
		t.Fatalf("explicit yes target not resolved")
	}
	if d.No == nil || d.No.ItemID != no.ID {
		t.Fatalf("explicit no target not resolved")
	}
	// the step between the decision and its targets still renders
	if nodes[1].ItemID != mid.ID {
		t.Fatalf("intermediate step dropped from walk")
	}
}

func TestFlowchartCrossProtocolLinkNode(t *testing.T) {
	sectionID := uuid.New()
	section := &types.Section{ID: sectionID, SectionType: types.SectionTypeFlowchart}
	targetProtocol := uuid.New()

	link := step(sectionID, 0, "Go to Cardiac Arrest protocol")
	link.LinkType = types.LinkTypeProtocol
	link.TargetProtocolID = &targetProtocol

	layout := BuildLayout(Input{
		Sections:       []*types.Section{section},
		ItemsBySection: map[uuid.UUID][]*types.Item{sectionID: {link}},
	})

	nodes := layout.Sections[0].Nodes
	if len(nodes) != 1 {
		t.Fatalf("node count: want=1 got=%d", len(nodes))
	}
	if nodes[0].Kind != FlowNodeLink {
		t.Fatalf("kind: want=%q got=%q", FlowNodeLink, nodes[0].Kind)
	}
	if nodes[0].TargetProtocolID == nil || *nodes[0].TargetProtocolID != targetProtocol {
		t.Fatalf("target protocol id not carried")
	}
}

func TestAssessmentBoxesCarryCriteriaInOrder(t *testing.T) {
	sectionID := uuid.New()
	section := &types.Section{ID: sectionID, SectionType: types.SectionTypeAssessment}

	box := step(sectionID, 0, "Airway")
	c2 := step(sectionID, 1, "Stridor")
	c2.ParentID = &box.ID
	c2.DetailedInfo = "<p>High-pitched sound on inspiration.</p>"
	c1 := step(sectionID, 0, "Patency")
	c1.ParentID = &box.ID

	layout := BuildLayout(Input{
		Sections:         []*types.Section{section},
		ItemsBySection:   map[uuid.UUID][]*types.Item{sectionID: {box}},
		ChildrenByParent: map[uuid.UUID][]*types.Item{box.ID: {c2, c1}},
	})

	boxes := layout.Sections[0].Boxes
	if len(boxes) != 1 {
		t.Fatalf("box count: want=1 got=%d", len(boxes))
	}
	criteria := boxes[0].Criteria
	if len(criteria) != 2 {
		t.Fatalf("criteria count: want=2 got=%d", len(criteria))
	}
	if criteria[0].ItemID != c1.ID || criteria[1].ItemID != c2.ID {
		t.Fatalf("criteria not ordered by sort_order")
	}
	if criteria[1].DetailedInfo == "" {
		t.Fatalf("detailed info payload missing on criterion")
	}
}

func TestChecklistAndInformationShapes(t *testing.T) {
	checkID := uuid.New()
	infoID := uuid.New()
	sections := []*types.Section{
		{ID: infoID, SectionType: types.SectionTypeInformation, SortOrder: 1, Description: "General notes"},
		{ID: checkID, SectionType: types.SectionTypeChecklist, SortOrder: 0},
	}
	row := step(checkID, 0, "Confirm scene safety")
	bullet := step(infoID, 0, "Contact medical control for deviations")

	layout := BuildLayout(Input{
		Sections: sections,
		ItemsBySection: map[uuid.UUID][]*types.Item{
			checkID: {row},
			infoID:  {bullet},
		},
	})

	if len(layout.Sections) != 2 {
		t.Fatalf("section count: want=2 got=%d", len(layout.Sections))
	}
	// sections ordered by sort_order, checklist first
	if layout.Sections[0].Kind != types.SectionTypeChecklist {
		t.Fatalf("section order: want checklist first, got %q", layout.Sections[0].Kind)
	}
	if len(layout.Sections[0].Rows) != 1 || layout.Sections[0].Rows[0].Title != "Confirm scene safety" {
		t.Fatalf("checklist rows wrong: %+v", layout.Sections[0].Rows)
	}
	info := layout.Sections[1]
	if info.Description != "General notes" {
		t.Fatalf("information description missing")
	}
	if len(info.Bullets) != 1 || info.Bullets[0].ItemID != bullet.ID {
		t.Fatalf("information bullets wrong: %+v", info.Bullets)
	}
}

func TestProviderSegmentsEqualSplitWhenNoPercentages(t *testing.T) {
	itemID := uuid.New()
	links := []*types.ItemProviderLevel{
		{ItemID: itemID, ProviderLevelID: uuid.New(), ProviderLevel: &types.ProviderLevel{Abbreviation: "EMT", SortOrder: 1}},
		{ItemID: itemID, ProviderLevelID: uuid.New(), ProviderLevel: &types.ProviderLevel{Abbreviation: "EMR", SortOrder: 0}},
		{ItemID: itemID, ProviderLevelID: uuid.New(), ProviderLevel: &types.ProviderLevel{Abbreviation: "AEMT", SortOrder: 2}},
	}

	segments := ProviderSegments(links)
	if len(segments) != 3 {
		t.Fatalf("segment count: want=3 got=%d", len(segments))
	}
	var total float64
	for _, seg := range segments {
		if math.Abs(seg.Percent-100.0/3.0) > 0.01 {
			t.Fatalf("segment percent: want≈33.33 got=%f", seg.Percent)
		}
		total += seg.Percent
	}
	if math.Abs(total-100) > 0.01 {
		t.Fatalf("segments must cover the full bar, got total=%f", total)
	}
	if segments[0].Abbreviation != "EMR" {
		t.Fatalf("segments not ordered by provider level sort_order, first=%q", segments[0].Abbreviation)
	}
}

func TestProviderSegmentsExplicitPercentagesKept(t *testing.T) {
	itemID := uuid.New()
	p60 := 60.0
	p40 := 40.0
	links := []*types.ItemProviderLevel{
		{ItemID: itemID, ProviderLevelID: uuid.New(), Percentage: &p60, ProviderLevel: &types.ProviderLevel{Abbreviation: "EMT", SortOrder: 0}},
		{ItemID: itemID, ProviderLevelID: uuid.New(), Percentage: &p40, ProviderLevel: &types.ProviderLevel{Abbreviation: "AEMT", SortOrder: 1}},
	}

	segments := ProviderSegments(links)
	if segments[0].Percent != 60 || segments[1].Percent != 40 {
		t.Fatalf("explicit percentages not kept: %+v", segments)
	}
}

func TestProviderSegmentsEmpty(t *testing.T) {
	if got := ProviderSegments(nil); got != nil {
		t.Fatalf("no links should render no bar, got %+v", got)
	}
}
