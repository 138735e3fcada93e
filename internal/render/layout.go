package render

import (
	"github.com/google/uuid"
)

// Layout is the view model for one protocol document, ready for a client
// to draw. Each section renders into exactly one of the typed shapes
// below, selected by Kind.
type Layout struct {
	ProtocolID uuid.UUID       `json:"protocol_id"`
	Sections   []LayoutSection `json:"sections"`
}

type LayoutSection struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Kind        string    `json:"kind"`

	// Exactly one of these is populated, matching Kind.
	Boxes   []AssessmentBox `json:"boxes,omitempty"`
	Nodes   []FlowNode      `json:"nodes,omitempty"`
	Rows    []ChecklistRow  `json:"rows,omitempty"`
	Bullets []InfoBullet    `json:"bullets,omitempty"`
}

// AssessmentBox is a titled box whose criteria open a detail modal on
// the client.
type AssessmentBox struct {
	ItemID    uuid.UUID         `json:"item_id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Criteria  []Criterion       `json:"criteria"`
	Providers []ProviderSegment `json:"providers,omitempty"`
}

type Criterion struct {
	ItemID       uuid.UUID `json:"item_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	DetailedInfo string    `json:"detailed_info,omitempty"`
}

const (
	FlowNodeStep     = "step"
	FlowNodeDecision = "decision"
	FlowNodeLink     = "link"
)

// FlowNode is one element of a flowchart walk. Decision nodes carry Yes
// and No branch nodes rendered side by side; link nodes point at another
// protocol document instead of inline content.
type FlowNode struct {
	ItemID           uuid.UUID         `json:"item_id"`
	Kind             string            `json:"kind"`
	Title            string            `json:"title"`
	Content          string            `json:"content"`
	DetailedInfo     string            `json:"detailed_info,omitempty"`
	Providers        []ProviderSegment `json:"providers,omitempty"`
	TargetProtocolID *uuid.UUID        `json:"target_protocol_id,omitempty"`
	Yes              *FlowNode         `json:"yes,omitempty"`
	No               *FlowNode         `json:"no,omitempty"`
}

// ChecklistRow completion state is client-side only; the server never
// persists it.
type ChecklistRow struct {
	ItemID       uuid.UUID         `json:"item_id"`
	Title        string            `json:"title"`
	Content      string            `json:"content"`
	DetailedInfo string            `json:"detailed_info,omitempty"`
	Providers    []ProviderSegment `json:"providers,omitempty"`
}

type InfoBullet struct {
	ItemID  uuid.UUID `json:"item_id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

// ProviderSegment is one slice of the proportional colored bar showing
// which certification tiers may perform a step.
type ProviderSegment struct {
	ProviderLevelID uuid.UUID `json:"provider_level_id"`
	Name            string    `json:"name"`
	Abbreviation    string    `json:"abbreviation"`
	ColorCode       string    `json:"color_code"`
	Percent         float64   `json:"percent"`
}
