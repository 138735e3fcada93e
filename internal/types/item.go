package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  LinkTypeNone     = "none"
  LinkTypeProtocol = "protocol"
)

// Item is a leaf content unit inside a section: a flowchart step, a
// checklist row, an assessment entry, or an info bullet. Items with a
// ParentID are assessment criteria and are always leaves (one nesting
// level only).
type Item struct {
  ID                uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  SectionID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"section_id"`
  Section           *Section        `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"-"`
  ParentID          *uuid.UUID      `gorm:"type:uuid;index" json:"parent_id,omitempty"`
  Title             string          `gorm:"column:title" json:"title"`
  Content           string          `gorm:"column:content" json:"content"`
  DetailedInfo      string          `gorm:"column:detailed_info" json:"detailed_info"`
  SortOrder         int             `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
  IsDecision        bool            `gorm:"not null;default:false;column:is_decision" json:"is_decision"`
  YesTargetID       *uuid.UUID      `gorm:"type:uuid;column:yes_target_id" json:"yes_target_id,omitempty"`
  NoTargetID        *uuid.UUID      `gorm:"type:uuid;column:no_target_id" json:"no_target_id,omitempty"`
  LinkType          string          `gorm:"not null;default:'none';column:link_type" json:"link_type"`
  TargetProtocolID  *uuid.UUID      `gorm:"type:uuid;column:target_protocol_id" json:"target_protocol_id,omitempty"`
  CreatedAt         time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt         time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Item) TableName() string {
  return "item"
}
