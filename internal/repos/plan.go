package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type PlanRepo interface {
	Create(ctx context.Context, tx *gorm.DB, plan *types.Plan) (*types.Plan, error)
	GetByID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) (*types.Plan, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Plan, error)
	GetLatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Plan, error)
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (r *planRepo) Create(ctx context.Context, tx *gorm.DB, plan *types.Plan) (*types.Plan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if plan == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *planRepo) GetByID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) (*types.Plan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if planID == uuid.Nil {
		return nil, nil
	}

	var result types.Plan
	if err := transaction.WithContext(ctx).
		Where("id = ?", planID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *planRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Plan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Plan
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *planRepo) GetLatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Plan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return nil, nil
	}

	var result types.Plan
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *planRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if planID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", planID).
		Delete(&types.Plan{}).Error; err != nil {
		return err
	}
	return nil
}
