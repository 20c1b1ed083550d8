package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/calebdunn/studypath-backend/internal/logger"
)

func newTestExplanationService(t *testing.T, client OpenAIClient) *explanationService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return &explanationService{log: log, client: client, ttl: time.Hour}
}

func TestExplainDefaultsToExplainType(t *testing.T) {
	client := &fakeOpenAIClient{
		complete: func(ctx context.Context, system, user string) (string, error) {
			if !strings.Contains(user, "Ownership") {
				t.Fatalf("prompt missing node label: %q", user)
			}
			return "Ownership is how Rust manages memory.", nil
		},
	}
	svc := newTestExplanationService(t, client)

	got, err := svc.Explain(context.Background(), ExplainRequest{NodeKey: "topic-0", Label: "Ownership"})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if got.Type != "explain" || got.Cached || got.Content == "" {
		t.Fatalf("unexpected explanation: %+v", got)
	}
}

func TestExplainRejectsUnknownType(t *testing.T) {
	svc := newTestExplanationService(t, &fakeOpenAIClient{})
	if _, err := svc.Explain(context.Background(), ExplainRequest{NodeKey: "topic-0", Label: "Ownership", Type: "poem"}); err == nil {
		t.Fatalf("expected error for unknown explanation type")
	}
}

func TestExplainCollapsesConcurrentRequests(t *testing.T) {
	var calls int64
	release := make(chan struct{})
	client := &fakeOpenAIClient{
		complete: func(ctx context.Context, system, user string) (string, error) {
			atomic.AddInt64(&calls, 1)
			<-release
			return "shared answer", nil
		},
	}
	svc := newTestExplanationService(t, client)
	req := ExplainRequest{NodeKey: "topic-0", Label: "Ownership"}

	var wg sync.WaitGroup
	results := make([]Explanation, 4)
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Explain(context.Background(), req)
		}(i)
	}

	// Let the goroutines pile onto the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("request %d: %v", i, errs[i])
		}
		if results[i].Content != "shared answer" {
			t.Fatalf("request %d content: %q", i, results[i].Content)
		}
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("model calls: want=1 got=%d", got)
	}
}

func TestExplainPropagatesModelError(t *testing.T) {
	client := &fakeOpenAIClient{
		complete: func(context.Context, string, string) (string, error) {
			return "", fmt.Errorf("upstream 500")
		},
	}
	svc := newTestExplanationService(t, client)
	if _, err := svc.Explain(context.Background(), ExplainRequest{NodeKey: "topic-0", Label: "Ownership"}); err == nil {
		t.Fatalf("expected model error to propagate")
	}
}
