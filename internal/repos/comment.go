package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Comment) (*types.Comment, error)
	ListByPlanAndNodeKey(ctx context.Context, tx *gorm.DB, planID uuid.UUID, nodeKey string) ([]*types.Comment, error)
	SoftDeleteByIDForUser(ctx context.Context, tx *gorm.DB, commentID, userID uuid.UUID) error
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "CommentRepo")}
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Comment) (*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *commentRepo) ListByPlanAndNodeKey(ctx context.Context, tx *gorm.DB, planID uuid.UUID, nodeKey string) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Comment
	if planID == uuid.Nil || nodeKey == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("plan_id = ? AND node_key = ?", planID, nodeKey).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *commentRepo) SoftDeleteByIDForUser(ctx context.Context, tx *gorm.DB, commentID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if commentID == uuid.Nil || userID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", commentID, userID).
		Delete(&types.Comment{}).Error; err != nil {
		return err
	}
	return nil
}
