package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

type Protocol struct {
  ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
  Category        *Category       `gorm:"constraint:OnDelete:RESTRICT;foreignKey:CategoryID;references:ID" json:"category,omitempty"`
  Title           string          `gorm:"not null;column:title" json:"title"`
  ProtocolNumber  string          `gorm:"column:protocol_number" json:"protocol_number"`
  Description     string          `gorm:"column:description" json:"description"`
  IsPublished     bool            `gorm:"not null;default:false;column:is_published" json:"is_published"`
  CreatedBy       uuid.UUID       `gorm:"type:uuid;column:created_by" json:"created_by"`
  UpdatedBy       uuid.UUID       `gorm:"type:uuid;column:updated_by" json:"updated_by"`
  CreatedAt       time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt       time.Time       `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt       gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (Protocol) TableName() string {
  return "protocol"
}
