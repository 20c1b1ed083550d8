package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProgressRecord persists one serialized progress store. The store is
// namespaced by plan title within a user, so two plans sharing a title share
// progress. That mirrors the client-side storage layout the API replaced.
type ProgressRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_title" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	PlanTitle string         `gorm:"column:plan_title;not null;uniqueIndex:idx_progress_user_title" json:"plan_title"`
	Entries   datatypes.JSON `gorm:"column:entries;type:jsonb" json:"entries"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProgressRecord) TableName() string { return "progress_record" }
