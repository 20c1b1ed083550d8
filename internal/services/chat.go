package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebdunn/studypath-backend/internal/intent"
	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/types"
)

// ChatChunk is one unit of the streamed chat response. Deltas carry text;
// action chunks tell the client something happened server-side (a plan was
// generated on its behalf).
type ChatChunk struct {
	Type    string      `json:"type"` // delta | action | done
	Content string      `json:"content,omitempty"`
	Action  *ChatAction `json:"action,omitempty"`
}

type ChatAction struct {
	Type   string    `json:"type"` // generate_plan
	Topic  string    `json:"topic,omitempty"`
	PlanID uuid.UUID `json:"plan_id,omitempty"`
}

type ChatService interface {
	// Respond classifies the last user message and streams the reply through
	// emit. Canned and command answers are emitted directly; only freeform
	// questions without a canned match reach the upstream model.
	Respond(ctx context.Context, userID uuid.UUID, messages []types.ChatMessage, emit func(ChatChunk) error) error
}

type chatService struct {
	db         *gorm.DB
	log        *logger.Logger
	client     OpenAIClient
	planSvc    PlanService
	generation GenerationService
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	client OpenAIClient,
	planSvc PlanService,
	generation GenerationService,
) ChatService {
	return &chatService{
		db:         db,
		log:        log.With("service", "ChatService"),
		client:     client,
		planSvc:    planSvc,
		generation: generation,
	}
}

func (s *chatService) Respond(ctx context.Context, userID uuid.UUID, messages []types.ChatMessage, emit func(ChatChunk) error) error {
	last := lastUserMessage(messages)
	if last == "" {
		return fmt.Errorf("no user message to answer")
	}

	in := intent.Classify(last)
	s.log.Debug("Chat intent classified", "kind", string(in.Kind), "command", in.Command)

	switch in.Kind {
	case intent.KindSlashCommand:
		return s.emitText(emit, s.answerSlash(ctx, userID, in))

	case intent.KindFreeformQuestion:
		if in.Answer != "" {
			return s.emitText(emit, in.Answer)
		}
		return s.streamModel(ctx, messages, emit)

	case intent.KindGenerationRequest:
		return s.generateFromChat(ctx, userID, in.Topic, emit)

	case intent.KindCustomizationRequest:
		return s.emitText(emit,
			"You can change the schedule, difficulty or format from the plan settings, "+
				"or just ask me to create a new plan with the preferences you want.")

	case intent.KindRecommendationRequest:
		return s.emitText(emit, s.answerRecommendation(ctx, userID))

	case intent.KindGreeting:
		return s.emitText(emit,
			"Hi! I can build you a study plan for any topic and answer questions about "+
				"learning. Try \"create plan for rust\" or /help.")

	default:
		return s.streamModel(ctx, messages, emit)
	}
}

func (s *chatService) streamModel(ctx context.Context, messages []types.ChatMessage, emit func(ChatChunk) error) error {
	err := s.client.StreamChat(ctx, messages, func(delta string) error {
		return emit(ChatChunk{Type: "delta", Content: delta})
	})
	if err != nil {
		return err
	}
	return emit(ChatChunk{Type: "done"})
}

func (s *chatService) emitText(emit func(ChatChunk) error, text string) error {
	if err := emit(ChatChunk{Type: "delta", Content: text}); err != nil {
		return err
	}
	return emit(ChatChunk{Type: "done"})
}

func (s *chatService) generateFromChat(ctx context.Context, userID uuid.UUID, topic string, emit func(ChatChunk) error) error {
	if topic == "" {
		return s.emitText(emit, "What topic should the study plan cover?")
	}
	if err := emit(ChatChunk{Type: "delta", Content: fmt.Sprintf("Generating a study plan for %s...", topic)}); err != nil {
		return err
	}

	plan, _, err := s.generation.Generate(ctx, userID, GenerateRequest{Topic: topic})
	if err != nil {
		s.log.Warn("Chat-triggered generation failed", "error", err, "topic", topic)
		if emitErr := emit(ChatChunk{Type: "delta", Content: " That didn't work, the plan service is unavailable right now. Please try again."}); emitErr != nil {
			return emitErr
		}
		return emit(ChatChunk{Type: "done"})
	}

	if err := emit(ChatChunk{Type: "action", Action: &ChatAction{
		Type:   "generate_plan",
		Topic:  topic,
		PlanID: plan.ID,
	}}); err != nil {
		return err
	}
	if err := emit(ChatChunk{Type: "delta", Content: fmt.Sprintf(" Done! \"%s\" is ready on your roadmap.", plan.Title)}); err != nil {
		return err
	}
	return emit(ChatChunk{Type: "done"})
}

func (s *chatService) answerRecommendation(ctx context.Context, userID uuid.UUID) string {
	doc, ok := s.latestDocument(ctx, userID)
	if !ok || len(doc.Resources) == 0 {
		return "Generate a plan first and I'll recommend resources matched to it. " +
			"In general: pick one primary resource per topic and finish it before adding more."
	}
	var b strings.Builder
	b.WriteString("From your current plan I'd start with:\n")
	for i, r := range doc.Resources {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", r.Title, r.Type)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *chatService) answerSlash(ctx context.Context, userID uuid.UUID, in intent.Intent) string {
	if in.Command == "help" {
		return "Commands: /topics, /prerequisites, /core, /resources, /milestones, /plan, /preferences, /help. " +
			"You can also ask me to create a plan for any topic."
	}

	doc, ok := s.latestDocument(ctx, userID)
	if !ok {
		return "You don't have a plan yet. Ask me to create one, for example: \"create plan for rust\"."
	}

	switch in.Command {
	case "topics":
		var b strings.Builder
		b.WriteString("Your plan covers:\n")
		for _, t := range doc.Prerequisites {
			fmt.Fprintf(&b, "- %s (prerequisite)\n", t.Title)
		}
		for _, t := range doc.CoreTopics {
			fmt.Fprintf(&b, "- %s\n", t.Title)
		}
		return strings.TrimRight(b.String(), "\n")

	case "prerequisites":
		if len(doc.Prerequisites) == 0 {
			return "This plan has no prerequisites, you can start right away."
		}
		var b strings.Builder
		b.WriteString("Prerequisites:\n")
		for _, t := range doc.Prerequisites {
			fmt.Fprintf(&b, "- %s", t.Title)
			if t.Description != "" {
				fmt.Fprintf(&b, ": %s", t.Description)
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")

	case "core":
		var b strings.Builder
		b.WriteString("Core topics:\n")
		for _, t := range doc.CoreTopics {
			fmt.Fprintf(&b, "- %s", t.Title)
			if t.Duration != "" {
				fmt.Fprintf(&b, " (%s)", t.Duration)
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")

	case "resources":
		if len(doc.Resources) == 0 {
			return "This plan has no resources attached."
		}
		var b strings.Builder
		b.WriteString("Resources:\n")
		for _, r := range doc.Resources {
			fmt.Fprintf(&b, "- %s (%s)", r.Title, r.Type)
			if r.URL != "" {
				fmt.Fprintf(&b, " %s", r.URL)
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")

	case "milestones":
		if len(doc.ProgressSteps) == 0 {
			return "This plan has no weekly milestones."
		}
		var b strings.Builder
		b.WriteString("Milestones:\n")
		for _, step := range doc.ProgressSteps {
			for _, m := range step.Milestones {
				fmt.Fprintf(&b, "- Week %d: %s\n", step.Week, m)
			}
		}
		return strings.TrimRight(b.String(), "\n")

	case "plan":
		return fmt.Sprintf(
			"%s: %s, %d %s/week, %s. %d prerequisites, %d core topics, %d weekly steps.",
			doc.Title, doc.Difficulty, doc.TimePerWeek, doc.TimeUnit, doc.Format,
			len(doc.Prerequisites), len(doc.CoreTopics), len(doc.ProgressSteps),
		)

	case "preferences":
		return fmt.Sprintf(
			"Current preferences: difficulty %s, %d %s per week, %s format.",
			doc.Difficulty, doc.TimePerWeek, doc.TimeUnit, doc.Format,
		)

	default:
		return "I don't know that command. Try /help."
	}
}

func (s *chatService) latestDocument(ctx context.Context, userID uuid.UUID) (types.PlanDocument, bool) {
	plan, err := s.planSvc.Latest(ctx, userID)
	if err != nil || plan == nil {
		return types.PlanDocument{}, false
	}
	doc, err := s.planSvc.DocumentOf(plan)
	if err != nil {
		return types.PlanDocument{}, false
	}
	return doc, true
}

func lastUserMessage(messages []types.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}
