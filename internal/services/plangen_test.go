package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type fakeOpenAIClient struct {
	generateJSON func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
	complete     func(ctx context.Context, system, user string) (string, error)
	streamChat   func(ctx context.Context, messages []types.ChatMessage, onDelta func(string) error) error
}

func (f *fakeOpenAIClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return f.generateJSON(ctx, system, user, schemaName, schema)
}

func (f *fakeOpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if f.complete == nil {
		return "", fmt.Errorf("complete not stubbed")
	}
	return f.complete(ctx, system, user)
}

func (f *fakeOpenAIClient) StreamChat(ctx context.Context, messages []types.ChatMessage, onDelta func(string) error) error {
	if f.streamChat == nil {
		return fmt.Errorf("streamChat not stubbed")
	}
	return f.streamChat(ctx, messages, onDelta)
}

func newTestGenerationService(t *testing.T, client OpenAIClient) *generationService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return &generationService{
		log:      log,
		client:   client,
		validate: validator.New(),
	}
}

func validModelOutput() map[string]any {
	return map[string]any{
		"title": "Rust Study Plan",
		"prerequisites": []any{
			map[string]any{"id": "p1", "title": "Programming Basics"},
		},
		"coreTopics": []any{
			map[string]any{"id": "c1", "title": "Ownership", "duration": "2 weeks"},
		},
		"progressSteps": []any{
			map[string]any{"week": 1, "topics": []any{"Ownership"}, "milestones": []any{"Explain moves"}},
		},
		"resources": []any{
			map[string]any{"title": "The Rust Book", "type": "book"},
		},
		"tips": []any{"Practice daily."},
	}
}

func TestDecodeDocumentRequestFieldsAuthoritative(t *testing.T) {
	svc := newTestGenerationService(t, &fakeOpenAIClient{})
	req := normalizeRequest(GenerateRequest{Topic: "rust", Difficulty: "advanced", TimePerWeek: 10, TimeUnit: "hours", Format: "project-heavy"})

	raw := validModelOutput()
	// The model has no say on the preference fields even when it emits them.
	raw["difficulty"] = "beginner"
	raw["timePerWeek"] = 1

	doc, err := svc.decodeDocument(raw, req)
	if err != nil {
		t.Fatalf("decodeDocument: %v", err)
	}
	if doc.Difficulty != "advanced" || doc.TimePerWeek != 10 || doc.Format != "project-heavy" {
		t.Fatalf("request fields not authoritative: %+v", doc)
	}
	if doc.Title != "Rust Study Plan" {
		t.Fatalf("title: got %q", doc.Title)
	}
}

func TestDecodeDocumentRejectsEmptyCoreTopics(t *testing.T) {
	svc := newTestGenerationService(t, &fakeOpenAIClient{})
	req := normalizeRequest(GenerateRequest{Topic: "rust"})

	raw := validModelOutput()
	raw["coreTopics"] = []any{}

	if _, err := svc.decodeDocument(raw, req); err == nil {
		t.Fatalf("expected error for plan without core topics")
	}
}

func TestGenerateDocumentTransportErrorSurfaces(t *testing.T) {
	svc := newTestGenerationService(t, &fakeOpenAIClient{
		generateJSON: func(context.Context, string, string, string, map[string]any) (map[string]any, error) {
			return nil, fmt.Errorf("upstream 503")
		},
	})
	req := normalizeRequest(GenerateRequest{Topic: "rust"})

	_, fellBack, err := svc.generateDocument(context.Background(), req)
	if err == nil {
		t.Fatalf("transport failure must surface as an error, not a fallback")
	}
	if fellBack {
		t.Fatalf("transport failure must not be reported as fallback")
	}
}

func TestGenerateDocumentMalformedOutputFallsBack(t *testing.T) {
	svc := newTestGenerationService(t, &fakeOpenAIClient{
		generateJSON: func(context.Context, string, string, string, map[string]any) (map[string]any, error) {
			return map[string]any{"title": 42, "coreTopics": "not a list"}, nil
		},
	})
	req := normalizeRequest(GenerateRequest{Topic: "rust"})

	doc, fellBack, err := svc.generateDocument(context.Background(), req)
	if err != nil {
		t.Fatalf("malformed output must fall back, got error: %v", err)
	}
	if !fellBack {
		t.Fatalf("expected fallback")
	}
	if len(doc.CoreTopics) == 0 || len(doc.ProgressSteps) == 0 {
		t.Fatalf("fallback plan must stay renderable: %+v", doc)
	}
	if doc.Difficulty != "beginner" || doc.TimePerWeek != 5 {
		t.Fatalf("fallback plan must carry the normalized request preferences: %+v", doc)
	}
}

func TestNormalizeRequestDefaults(t *testing.T) {
	req := normalizeRequest(GenerateRequest{Topic: "  rust  "})
	if req.Topic != "rust" {
		t.Fatalf("topic: got %q", req.Topic)
	}
	if req.Difficulty != "beginner" || req.TimePerWeek != 5 || req.TimeUnit != "hours" || req.Format != "balanced" {
		t.Fatalf("defaults not applied: %+v", req)
	}
}

func TestPlanTitle(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"rust", "Rust Study Plan"},
		{"machine learning", "Machine Learning Study Plan"},
		{"  distributed   systems  ", "Distributed Systems Study Plan"},
		{"", "Study Plan"},
		{"   ", "Study Plan"},
	}
	for _, tc := range tests {
		if got := planTitle(tc.topic); got != tc.want {
			t.Fatalf("planTitle(%q): want=%q got=%q", tc.topic, tc.want, got)
		}
	}
}
