package render

import (
	"sort"

	"github.com/google/uuid"

	"github.com/firelightacademy/protocols-backend/internal/types"
)

// Input carries everything needed to lay out one protocol. Slices do not
// need to be pre-sorted; the engine orders by sort_order itself.
type Input struct {
	ProtocolID       uuid.UUID
	Sections         []*types.Section
	ItemsBySection   map[uuid.UUID][]*types.Item              // top-level items (parent_id IS NULL)
	ChildrenByParent map[uuid.UUID][]*types.Item              // assessment criteria
	ProvidersByItem  map[uuid.UUID][]*types.ItemProviderLevel // provider links, ProviderLevel preloaded
}

// BuildLayout walks the protocol's sections in order and renders each
// one according to its section type.
func BuildLayout(in Input) Layout {
	sections := make([]*types.Section, len(in.Sections))
	copy(sections, in.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].SortOrder < sections[j].SortOrder
	})

	out := Layout{ProtocolID: in.ProtocolID}
	for _, section := range sections {
		if section == nil {
			continue
		}
		items := sortedItems(in.ItemsBySection[section.ID])
		ls := LayoutSection{
			ID:          section.ID,
			Title:       section.Title,
			Description: section.Description,
			Kind:        section.SectionType,
		}
		switch section.SectionType {
		case types.SectionTypeAssessment:
			ls.Boxes = buildAssessment(items, in)
		case types.SectionTypeFlowchart:
			ls.Nodes = buildFlowchart(items, in)
		case types.SectionTypeChecklist:
			ls.Rows = buildChecklist(items, in)
		default:
			// information sections, and anything unrecognized, render as
			// a description plus bullets
			ls.Kind = types.SectionTypeInformation
			ls.Bullets = buildInformation(items)
		}
		out.Sections = append(out.Sections, ls)
	}
	return out
}

func buildAssessment(items []*types.Item, in Input) []AssessmentBox {
	boxes := make([]AssessmentBox, 0, len(items))
	for _, item := range items {
		box := AssessmentBox{
			ItemID:    item.ID,
			Title:     item.Title,
			Content:   item.Content,
			Criteria:  []Criterion{},
			Providers: ProviderSegments(in.ProvidersByItem[item.ID]),
		}
		for _, child := range sortedItems(in.ChildrenByParent[item.ID]) {
			box.Criteria = append(box.Criteria, Criterion{
				ItemID:       child.ID,
				Title:        child.Title,
				Content:      child.Content,
				DetailedInfo: child.DetailedInfo,
			})
		}
		boxes = append(boxes, box)
	}
	return boxes
}

// buildFlowchart walks steps in sort order. Decision steps resolve their
// Yes/No branches through explicit target ids when present; otherwise the
// next two steps are consumed positionally as the Yes and No branches and
// skipped by the remainder of the walk.
func buildFlowchart(items []*types.Item, in Input) []FlowNode {
	byID := make(map[uuid.UUID]*types.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	consumed := make(map[uuid.UUID]bool)

	nodes := make([]FlowNode, 0, len(items))
	for i := 0; i < len(items); i++ {
		item := items[i]
		if consumed[item.ID] {
			continue
		}
		if !item.IsDecision {
			nodes = append(nodes, makeFlowNode(item, in))
			continue
		}

		node := makeFlowNode(item, in)
		node.Kind = FlowNodeDecision

		var yesItem, noItem *types.Item
		if item.YesTargetID != nil || item.NoTargetID != nil {
			if item.YesTargetID != nil {
				yesItem = byID[*item.YesTargetID]
			}
			if item.NoTargetID != nil {
				noItem = byID[*item.NoTargetID]
			}
		} else if i+2 < len(items) {
			yesItem = items[i+1]
			noItem = items[i+2]
		}

		if yesItem != nil {
			branch := makeFlowNode(yesItem, in)
			node.Yes = &branch
			consumed[yesItem.ID] = true
		}
		if noItem != nil {
			branch := makeFlowNode(noItem, in)
			node.No = &branch
			consumed[noItem.ID] = true
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func makeFlowNode(item *types.Item, in Input) FlowNode {
	node := FlowNode{
		ItemID:       item.ID,
		Kind:         FlowNodeStep,
		Title:        item.Title,
		Content:      item.Content,
		DetailedInfo: item.DetailedInfo,
		Providers:    ProviderSegments(in.ProvidersByItem[item.ID]),
	}
	if item.LinkType == types.LinkTypeProtocol && item.TargetProtocolID != nil {
		node.Kind = FlowNodeLink
		node.TargetProtocolID = item.TargetProtocolID
	}
	return node
}

func buildChecklist(items []*types.Item, in Input) []ChecklistRow {
	rows := make([]ChecklistRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, ChecklistRow{
			ItemID:       item.ID,
			Title:        item.Title,
			Content:      item.Content,
			DetailedInfo: item.DetailedInfo,
			Providers:    ProviderSegments(in.ProvidersByItem[item.ID]),
		})
	}
	return rows
}

func buildInformation(items []*types.Item) []InfoBullet {
	bullets := make([]InfoBullet, 0, len(items))
	for _, item := range items {
		bullets = append(bullets, InfoBullet{
			ItemID:  item.ID,
			Title:   item.Title,
			Content: item.Content,
		})
	}
	return bullets
}

func sortedItems(items []*types.Item) []*types.Item {
	out := make([]*types.Item, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// ProviderSegments computes the segmented bar for one item. A link with
// an explicit percentage keeps it; links without one get an equal split
// of the full bar across all attached levels.
func ProviderSegments(links []*types.ItemProviderLevel) []ProviderSegment {
	if len(links) == 0 {
		return nil
	}
	ordered := make([]*types.ItemProviderLevel, len(links))
	copy(ordered, links)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, lj := ordered[i], ordered[j]
		if li.ProviderLevel != nil && lj.ProviderLevel != nil {
			return li.ProviderLevel.SortOrder < lj.ProviderLevel.SortOrder
		}
		return false
	})

	equal := 100.0 / float64(len(ordered))
	segments := make([]ProviderSegment, 0, len(ordered))
	for _, link := range ordered {
		seg := ProviderSegment{
			ProviderLevelID: link.ProviderLevelID,
			Percent:         equal,
		}
		if link.Percentage != nil {
			seg.Percent = *link.Percentage
		}
		if link.ProviderLevel != nil {
			seg.Name = link.ProviderLevel.Name
			seg.Abbreviation = link.ProviderLevel.Abbreviation
			seg.ColorCode = link.ProviderLevel.ColorCode
		}
		segments = append(segments, seg)
	}
	return segments
}
