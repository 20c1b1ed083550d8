package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type ProgressRepo interface {
	GetByUserAndTitle(ctx context.Context, tx *gorm.DB, userID uuid.UUID, planTitle string) (*types.ProgressRecord, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ProgressRecord) error
	DeleteByUserAndTitle(ctx context.Context, tx *gorm.DB, userID uuid.UUID, planTitle string) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) GetByUserAndTitle(ctx context.Context, tx *gorm.DB, userID uuid.UUID, planTitle string) (*types.ProgressRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || planTitle == "" {
		return nil, nil
	}

	var result types.ProgressRecord
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND plan_title = ?", userID, planTitle).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// Upsert writes by the unique user_id + plan_title pair. Two plans sharing a
// title deliberately share one record.
func (r *progressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ProgressRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND plan_title = ?", row.UserID, row.PlanTitle).
		Assign(map[string]interface{}{"entries": row.Entries}).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *progressRepo) DeleteByUserAndTitle(ctx context.Context, tx *gorm.DB, userID uuid.UUID, planTitle string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || planTitle == "" {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND plan_title = ?", userID, planTitle).
		Delete(&types.ProgressRecord{}).Error; err != nil {
		return err
	}
	return nil
}
