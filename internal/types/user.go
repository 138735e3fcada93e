package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  RoleEditor = "editor"
  RoleAdmin  = "admin"
)

type User struct {
  ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Email         string          `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password      string          `gorm:"not null;column:password" json:"-"`
  FirstName     string          `gorm:"not null;column:first_name" json:"first_name"`
  LastName      string          `gorm:"not null;column:last_name" json:"last_name"`
  Role          string          `gorm:"not null;default:'editor';column:role" json:"role"`
  AvatarPath    string          `gorm:"column:avatar_path" json:"avatar_path"`
  AvatarURL     string          `gorm:"column:avatar_url" json:"avatar_url"`
  AvatarColor   string          `gorm:"column:avatar_color" json:"avatar_color"`
  CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
