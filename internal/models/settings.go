package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Settings is a per-user singleton holding the client's settings object verbatim.
type Settings struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"size:128;not null;uniqueIndex" json:"user_id"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}
