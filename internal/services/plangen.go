package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/repos"
	"github.com/calebdunn/studypath-backend/internal/sse"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type GenerateRequest struct {
	Topic       string `json:"topic" validate:"required"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	TimePerWeek int    `json:"timePerWeek" validate:"omitempty,min=1"`
	TimeUnit    string `json:"timeUnit" validate:"omitempty,oneof=hours days weeks months"`
	Format      string `json:"format" validate:"omitempty,oneof=theory-heavy project-heavy balanced"`
}

type GenerationService interface {
	// Generate produces, validates and persists a plan. When the model output
	// fails schema validation the fallback plan is stored instead; only an
	// upstream transport failure is surfaced as an error.
	Generate(ctx context.Context, userID uuid.UUID, req GenerateRequest) (*types.Plan, types.PlanDocument, error)
}

type generationService struct {
	db       *gorm.DB
	log      *logger.Logger
	planRepo repos.PlanRepo
	client   OpenAIClient
	hub      *sse.Hub
	validate *validator.Validate

	// One generation per user at a time: a newer request cancels the older
	// in-flight one, so the last submitted request is the one that lands.
	mu       sync.Mutex
	inflight map[uuid.UUID]*inflightRun
}

type inflightRun struct {
	id     uuid.UUID
	cancel context.CancelFunc
}

func NewGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	planRepo repos.PlanRepo,
	client OpenAIClient,
	hub *sse.Hub,
) GenerationService {
	return &generationService{
		db:       db,
		log:      log.With("service", "GenerationService"),
		planRepo: planRepo,
		client:   client,
		hub:      hub,
		validate: validator.New(),
		inflight: make(map[uuid.UUID]*inflightRun),
	}
}

func (s *generationService) Generate(ctx context.Context, userID uuid.UUID, req GenerateRequest) (*types.Plan, types.PlanDocument, error) {
	req = normalizeRequest(req)
	if err := s.validate.Struct(req); err != nil {
		return nil, types.PlanDocument{}, fmt.Errorf("invalid generation request: %w", err)
	}

	genCtx, done := s.register(ctx, userID)
	defer done()

	doc, fellBack, err := s.generateDocument(genCtx, req)
	if genCtx.Err() != nil {
		return nil, types.PlanDocument{}, genCtx.Err()
	}
	if err != nil {
		return nil, types.PlanDocument{}, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, types.PlanDocument{}, fmt.Errorf("failed to encode plan document: %w", err)
	}

	plan := &types.Plan{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      doc.Title,
		Difficulty: doc.Difficulty,
		Document:   datatypes.JSON(raw),
	}
	if _, err := s.planRepo.Create(ctx, nil, plan); err != nil {
		return nil, types.PlanDocument{}, fmt.Errorf("failed to persist plan: %w", err)
	}

	if s.hub != nil {
		s.hub.Broadcast(sse.Message{
			Channel: sse.UserChannel(userID),
			Event:   sse.EventPlanGenerated,
			Data: map[string]any{
				"plan_id":  plan.ID,
				"title":    plan.Title,
				"fallback": fellBack,
			},
		})
	}
	return plan, doc, nil
}

// register installs this run as the user's in-flight generation, cancelling
// any previous one. The returned func deregisters the run.
func (s *generationService) register(ctx context.Context, userID uuid.UUID) (context.Context, func()) {
	genCtx, cancel := context.WithCancel(ctx)
	run := &inflightRun{id: uuid.New(), cancel: cancel}

	s.mu.Lock()
	if prev := s.inflight[userID]; prev != nil {
		s.log.Info("Cancelling superseded generation request", "user_id", userID)
		prev.cancel()
	}
	s.inflight[userID] = run
	s.mu.Unlock()

	return genCtx, func() {
		s.mu.Lock()
		if cur := s.inflight[userID]; cur != nil && cur.id == run.id {
			delete(s.inflight, userID)
		}
		s.mu.Unlock()
		cancel()
	}
}

// generateDocument calls the model and validates the result. A transport
// failure propagates to the caller; malformed model output fails closed to
// the fallback plan. The bool reports the fallback.
func (s *generationService) generateDocument(ctx context.Context, req GenerateRequest) (types.PlanDocument, bool, error) {
	raw, err := s.client.GenerateJSON(ctx, planSystemPrompt, planUserPrompt(req), "study_plan", planSchema())
	if err != nil {
		return types.PlanDocument{}, false, fmt.Errorf("plan generation call failed: %w", err)
	}

	doc, err := s.decodeDocument(raw, req)
	if err != nil {
		s.log.Warn("Model returned a malformed plan, using fallback plan", "error", err, "topic", req.Topic)
		return FallbackPlan(req), true, nil
	}
	return doc, false, nil
}

func (s *generationService) decodeDocument(raw map[string]any, req GenerateRequest) (types.PlanDocument, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return types.PlanDocument{}, err
	}
	var doc types.PlanDocument
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return types.PlanDocument{}, err
	}

	// The request is authoritative for the preference fields; the model only
	// has to produce the content.
	if doc.Title == "" {
		doc.Title = planTitle(req.Topic)
	}
	doc.Difficulty = req.Difficulty
	doc.TimePerWeek = req.TimePerWeek
	doc.TimeUnit = req.TimeUnit
	doc.Format = req.Format

	if err := s.validate.Struct(doc); err != nil {
		return types.PlanDocument{}, err
	}
	if len(doc.CoreTopics) == 0 {
		return types.PlanDocument{}, fmt.Errorf("plan has no core topics")
	}
	return doc, nil
}

func normalizeRequest(req GenerateRequest) GenerateRequest {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Difficulty == "" {
		req.Difficulty = "beginner"
	}
	if req.TimePerWeek == 0 {
		req.TimePerWeek = 5
	}
	if req.TimeUnit == "" {
		req.TimeUnit = "hours"
	}
	if req.Format == "" {
		req.Format = "balanced"
	}
	return req
}

func planTitle(topic string) string {
	words := strings.Fields(topic)
	if len(words) == 0 {
		return "Study Plan"
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ") + " Study Plan"
}

const planSystemPrompt = "You are a curriculum designer. Produce a structured study plan as JSON " +
	"matching the provided schema. Order prerequisites before core topics and " +
	"size weekly steps to the learner's available time."

func planUserPrompt(req GenerateRequest) string {
	return fmt.Sprintf(
		"Topic: %s\nDifficulty: %s\nAvailable time: %d %s per week\nPreferred format: %s",
		req.Topic, req.Difficulty, req.TimePerWeek, req.TimeUnit, req.Format,
	)
}

func planSchema() map[string]any {
	topic := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"id", "title"},
		"properties": map[string]any{
			"id":          map[string]any{"type": "string"},
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"duration":    map[string]any{"type": "string"},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"title", "prerequisites", "coreTopics", "progressSteps", "resources", "tips"},
		"properties": map[string]any{
			"title":         map[string]any{"type": "string"},
			"prerequisites": map[string]any{"type": "array", "items": topic},
			"coreTopics":    map[string]any{"type": "array", "items": topic},
			"progressSteps": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"week", "topics", "milestones"},
					"properties": map[string]any{
						"week":       map[string]any{"type": "integer", "minimum": 1},
						"topics":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"milestones": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
				},
			},
			"resources": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"title", "type"},
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
						"type":  map[string]any{"type": "string"},
						"url":   map[string]any{"type": "string"},
					},
				},
			},
			"tips": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
}
