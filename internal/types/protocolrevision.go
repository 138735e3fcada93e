package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// ProtocolRevision is an append-only audit row written on every
// successful protocol create/update. Snapshot holds the full protocol
// document (scalar fields plus the section/item tree) as JSON.
type ProtocolRevision struct {
  ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ProtocolID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"protocol_id"`
  Protocol    *Protocol       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProtocolID;references:ID" json:"-"`
  UserID      uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
  Snapshot    datatypes.JSON  `gorm:"column:snapshot;type:jsonb" json:"snapshot"`
  Notes       string          `gorm:"column:notes" json:"notes"`
  CreatedAt   time.Time       `gorm:"not null;default:now()" json:"created_at"`
}

func (ProtocolRevision) TableName() string {
  return "protocol_revision"
}
