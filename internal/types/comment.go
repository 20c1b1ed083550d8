package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a note attached to a single roadmap node.
type Comment struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	PlanID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_comment_plan_node" json:"plan_id"`
	Plan      *Plan          `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlanID;references:ID" json:"-"`
	NodeKey   string         `gorm:"column:node_key;not null;index:idx_comment_plan_node" json:"node_key"`
	Body      string         `gorm:"column:body;not null" json:"body"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Comment) TableName() string { return "comment" }
