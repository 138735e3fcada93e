package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  SectionTypeAssessment  = "assessment"
  SectionTypeFlowchart   = "flowchart"
  SectionTypeChecklist   = "checklist"
  SectionTypeInformation = "information"
)

func ValidSectionType(t string) bool {
  switch t {
  case SectionTypeAssessment, SectionTypeFlowchart, SectionTypeChecklist, SectionTypeInformation:
    return true
  }
  return false
}

type Section struct {
  ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ProtocolID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"protocol_id"`
  Protocol      *Protocol       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProtocolID;references:ID" json:"-"`
  Title         string          `gorm:"not null;column:title" json:"title"`
  Description   string          `gorm:"column:description" json:"description"`
  SectionType   string          `gorm:"not null;column:section_type" json:"section_type"`
  SortOrder     int             `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
  CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Section) TableName() string {
  return "section"
}
