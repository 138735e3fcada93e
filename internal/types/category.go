package types

import (
  "time"
  "github.com/google/uuid"
)

type Category struct {
  ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Name          string          `gorm:"not null;column:name" json:"name"`
  Prefix        string          `gorm:"column:prefix" json:"prefix"`
  Description   string          `gorm:"column:description" json:"description"`
  SortOrder     int             `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
  CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Category) TableName() string {
  return "category"
}
