package types

import (
  "time"
  "github.com/google/uuid"
)

// ProviderLevel is an EMS certification tier (EMR, EMT, AEMT,
// Intermediate, Paramedic). Static reference data.
type ProviderLevel struct {
  ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Name          string          `gorm:"not null;column:name" json:"name"`
  Abbreviation  string          `gorm:"not null;column:abbreviation" json:"abbreviation"`
  ColorCode     string          `gorm:"column:color_code" json:"color_code"`
  SortOrder     int             `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
  CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProviderLevel) TableName() string {
  return "provider_level"
}

// ItemProviderLevel links an item to a provider level. Percentage is a
// purely visual weight for the segmented bar; nil means an equal split
// across the item's attached levels at render time.
type ItemProviderLevel struct {
  ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ItemID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_item_provider,unique" json:"item_id"`
  Item            *Item           `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"-"`
  ProviderLevelID uuid.UUID       `gorm:"type:uuid;not null;index:idx_item_provider,unique" json:"provider_level_id"`
  ProviderLevel   *ProviderLevel  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProviderLevelID;references:ID" json:"provider_level,omitempty"`
  Percentage      *float64        `gorm:"column:percentage" json:"percentage,omitempty"`
  CreatedAt       time.Time       `gorm:"not null;default:now()" json:"created_at"`
}

func (ItemProviderLevel) TableName() string {
  return "item_provider_level"
}
