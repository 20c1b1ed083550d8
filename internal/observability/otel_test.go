package observability

import (
	"context"
	"testing"
)

func TestInitDisabledReturnsCallableShutdown(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")

	shutdown := Init(context.Background(), nil, Config{ServiceName: "test"})
	if shutdown == nil {
		t.Fatalf("Init must always return a shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("disabled shutdown must be a no-op: %v", err)
	}
}
