package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/repos"
	"github.com/calebdunn/studypath-backend/internal/sse"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type PlanService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*types.Plan, error)
	Get(ctx context.Context, userID, planID uuid.UUID) (*types.Plan, error)
	Latest(ctx context.Context, userID uuid.UUID) (*types.Plan, error)
	Delete(ctx context.Context, userID, planID uuid.UUID) error
	DocumentOf(plan *types.Plan) (types.PlanDocument, error)
}

type planService struct {
	db       *gorm.DB
	log      *logger.Logger
	planRepo repos.PlanRepo
	hub      *sse.Hub
}

func NewPlanService(db *gorm.DB, log *logger.Logger, planRepo repos.PlanRepo, hub *sse.Hub) PlanService {
	return &planService{
		db:       db,
		log:      log.With("service", "PlanService"),
		planRepo: planRepo,
		hub:      hub,
	}
}

func (s *planService) List(ctx context.Context, userID uuid.UUID) ([]*types.Plan, error) {
	return s.planRepo.ListByUserID(ctx, nil, userID)
}

func (s *planService) Get(ctx context.Context, userID, planID uuid.UUID) (*types.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, nil, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.UserID != userID {
		return nil, nil
	}
	return plan, nil
}

func (s *planService) Latest(ctx context.Context, userID uuid.UUID) (*types.Plan, error) {
	return s.planRepo.GetLatestByUserID(ctx, nil, userID)
}

func (s *planService) Delete(ctx context.Context, userID, planID uuid.UUID) error {
	plan, err := s.Get(ctx, userID, planID)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("plan not found")
	}
	if err := s.planRepo.SoftDeleteByID(ctx, nil, planID); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.Broadcast(sse.Message{
			Channel: sse.UserChannel(userID),
			Event:   sse.EventPlanDeleted,
			Data:    map[string]any{"plan_id": planID},
		})
	}
	return nil
}

// DocumentOf decodes the stored document column. A row that fails to decode
// is a programming error upstream; callers treat it as not-found.
func (s *planService) DocumentOf(plan *types.Plan) (types.PlanDocument, error) {
	var doc types.PlanDocument
	if plan == nil || len(plan.Document) == 0 {
		return doc, fmt.Errorf("plan has no document")
	}
	if err := json.Unmarshal(plan.Document, &doc); err != nil {
		return doc, fmt.Errorf("failed to decode plan document: %w", err)
	}
	return doc, nil
}
