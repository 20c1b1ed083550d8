package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/progress"
	"github.com/calebdunn/studypath-backend/internal/repos"
	"github.com/calebdunn/studypath-backend/internal/roadmap"
	"github.com/calebdunn/studypath-backend/internal/session"
	"github.com/calebdunn/studypath-backend/internal/sse"
	"github.com/calebdunn/studypath-backend/internal/types"
)

// RoadmapView is what toggle/reset/roadmap calls return: the rebuilt graph
// plus overall completion. Persisted goes false when the write failed and the
// caller is looking at in-memory state only.
type RoadmapView struct {
	Graph          roadmap.Graph  `json:"graph"`
	CompletionRate int            `json:"completion_rate"`
	Persisted      bool           `json:"persisted"`
	Store          progress.Store `json:"progress"`
}

type ProgressService interface {
	// Load never fails: malformed or unreadable persisted state degrades to
	// an empty store with a log line.
	Load(ctx context.Context, userID uuid.UUID, planTitle string) progress.Store
	View(doc types.PlanDocument, store progress.Store) RoadmapView
	Toggle(ctx context.Context, userID uuid.UUID, plan *types.Plan, doc types.PlanDocument, nodeKey string) (RoadmapView, error)
	Reset(ctx context.Context, userID uuid.UUID, plan *types.Plan, doc types.PlanDocument) (RoadmapView, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.ProgressRepo
	hub          *sse.Hub
}

func NewProgressService(db *gorm.DB, log *logger.Logger, progressRepo repos.ProgressRepo, hub *sse.Hub) ProgressService {
	return &progressService{
		db:           db,
		log:          log.With("service", "ProgressService"),
		progressRepo: progressRepo,
		hub:          hub,
	}
}

func (s *progressService) Load(ctx context.Context, userID uuid.UUID, planTitle string) progress.Store {
	row, err := s.progressRepo.GetByUserAndTitle(ctx, nil, userID, planTitle)
	if err != nil {
		s.log.Warn("Failed to load progress, starting empty", "error", err, "plan_title", planTitle)
		return progress.Store{}
	}
	if row == nil {
		return progress.Store{}
	}
	store, err := progress.Decode(row.Entries)
	if err != nil {
		s.log.Warn("Persisted progress is malformed, starting empty", "error", err, "plan_title", planTitle)
		return progress.Store{}
	}
	return store
}

func (s *progressService) View(doc types.PlanDocument, store progress.Store) RoadmapView {
	st := session.State{Plan: doc, Progress: store}
	return RoadmapView{
		Graph:          st.Graph(),
		CompletionRate: st.CompletionRate(),
		Persisted:      true,
		Store:          store,
	}
}

// Toggle flips one node, persists the store, and rebuilds the graph. The
// toggle and the returned view always agree; a failed write only downgrades
// Persisted, it never desyncs the view from the store it was built from.
func (s *progressService) Toggle(ctx context.Context, userID uuid.UUID, plan *types.Plan, doc types.PlanDocument, nodeKey string) (RoadmapView, error) {
	if nodeKey == "" || progress.Synthetic(nodeKey) {
		return RoadmapView{}, fmt.Errorf("node %q is not toggleable", nodeKey)
	}

	st := session.State{Plan: doc, Progress: s.Load(ctx, userID, plan.Title)}
	st = session.Apply(st, session.Command{
		Type:    session.CommandToggleNode,
		NodeKey: nodeKey,
		At:      time.Now().UTC(),
	})

	persisted := s.save(ctx, userID, plan.Title, st.Progress)
	view := RoadmapView{
		Graph:          st.Graph(),
		CompletionRate: st.CompletionRate(),
		Persisted:      persisted,
		Store:          st.Progress,
	}

	if s.hub != nil {
		s.hub.Broadcast(sse.Message{
			Channel: sse.PlanChannel(plan.ID),
			Event:   sse.EventProgressToggled,
			Data: map[string]any{
				"node_key":        nodeKey,
				"completed":       st.Progress.Completed(nodeKey),
				"completion_rate": view.CompletionRate,
			},
		})
	}
	return view, nil
}

func (s *progressService) Reset(ctx context.Context, userID uuid.UUID, plan *types.Plan, doc types.PlanDocument) (RoadmapView, error) {
	st := session.Apply(
		session.State{Plan: doc, Progress: s.Load(ctx, userID, plan.Title)},
		session.Command{Type: session.CommandResetProgress},
	)

	persisted := true
	if err := s.progressRepo.DeleteByUserAndTitle(ctx, nil, userID, plan.Title); err != nil {
		s.log.Warn("Failed to delete progress record", "error", err, "plan_title", plan.Title)
		persisted = false
	}

	view := RoadmapView{
		Graph:          st.Graph(),
		CompletionRate: 0,
		Persisted:      persisted,
		Store:          st.Progress,
	}
	if s.hub != nil {
		s.hub.Broadcast(sse.Message{
			Channel: sse.PlanChannel(plan.ID),
			Event:   sse.EventProgressReset,
		})
	}
	return view, nil
}

func (s *progressService) save(ctx context.Context, userID uuid.UUID, planTitle string, store progress.Store) bool {
	raw, err := progress.Encode(store)
	if err != nil {
		s.log.Warn("Failed to encode progress store", "error", err, "plan_title", planTitle)
		return false
	}
	row := &types.ProgressRecord{
		ID:        uuid.New(),
		UserID:    userID,
		PlanTitle: planTitle,
		Entries:   datatypes.JSON(raw),
	}
	if err := s.progressRepo.Upsert(ctx, nil, row); err != nil {
		s.log.Warn("Failed to persist progress, continuing in memory", "error", err, "plan_title", planTitle)
		return false
	}
	return true
}
