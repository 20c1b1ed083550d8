package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanDocument is the study plan produced by the generation endpoint. It is
// immutable once stored; a new generation request replaces it wholesale.
type PlanDocument struct {
	Title         string     `json:"title" validate:"required"`
	Difficulty    string     `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	TimePerWeek   int        `json:"timePerWeek" validate:"required,min=1"`
	TimeUnit      string     `json:"timeUnit" validate:"required,oneof=hours days weeks months"`
	Format        string     `json:"format" validate:"required,oneof=theory-heavy project-heavy balanced"`
	Prerequisites []Topic    `json:"prerequisites" validate:"dive"`
	CoreTopics    []Topic    `json:"coreTopics" validate:"dive"`
	ProgressSteps []WeekPlan `json:"progressSteps" validate:"dive"`
	Resources     []Resource `json:"resources" validate:"dive"`
	Tips          []string   `json:"tips"`
}

type Topic struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
}

type WeekPlan struct {
	Week       int      `json:"week" validate:"min=1"`
	Topics     []string `json:"topics"`
	Milestones []string `json:"milestones"`
}

type Resource struct {
	Title string `json:"title" validate:"required"`
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
}

// Plan is the persisted wrapper around a PlanDocument.
type Plan struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Title      string         `gorm:"column:title;not null;index" json:"title"`
	Difficulty string         `gorm:"column:difficulty" json:"difficulty"`
	Document   datatypes.JSON `gorm:"column:document;type:jsonb" json:"document"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Plan) TableName() string { return "plan" }
