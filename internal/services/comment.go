package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/repos"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type CommentService interface {
	Add(ctx context.Context, userID, planID uuid.UUID, nodeKey, body string) (*types.Comment, error)
	List(ctx context.Context, planID uuid.UUID, nodeKey string) ([]*types.Comment, error)
	Delete(ctx context.Context, userID, commentID uuid.UUID) error
}

type commentService struct {
	db          *gorm.DB
	log         *logger.Logger
	commentRepo repos.CommentRepo
}

func NewCommentService(db *gorm.DB, log *logger.Logger, commentRepo repos.CommentRepo) CommentService {
	return &commentService{
		db:          db,
		log:         log.With("service", "CommentService"),
		commentRepo: commentRepo,
	}
}

func (s *commentService) Add(ctx context.Context, userID, planID uuid.UUID, nodeKey, body string) (*types.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("comment body is empty")
	}
	if nodeKey == "" {
		return nil, fmt.Errorf("node key is required")
	}

	row := &types.Comment{
		ID:      uuid.New(),
		UserID:  userID,
		PlanID:  planID,
		NodeKey: nodeKey,
		Body:    body,
	}
	return s.commentRepo.Create(ctx, nil, row)
}

func (s *commentService) List(ctx context.Context, planID uuid.UUID, nodeKey string) ([]*types.Comment, error) {
	return s.commentRepo.ListByPlanAndNodeKey(ctx, nil, planID, nodeKey)
}

// Delete is scoped to the author: deleting someone else's comment is a no-op.
func (s *commentService) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	return s.commentRepo.SoftDeleteByIDForUser(ctx, nil, commentID, userID)
}
