package sse

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/calebdunn/studypath-backend/internal/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return Message{}
}

func TestHubBroadcastOrdering(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	planID := uuid.New()
	channel := PlanChannel(planID)

	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventProgressToggled, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Message{Channel: channel, Event: EventProgressReset, Data: map[string]any{"seq": 2}})

	first := recvMessage(t, client.Outbound, time.Second)
	second := recvMessage(t, client.Outbound, time.Second)
	if first.Event != EventProgressToggled {
		t.Fatalf("first event: want=%s got=%s", EventProgressToggled, first.Event)
	}
	if second.Event != EventProgressReset {
		t.Fatalf("second event: want=%s got=%s", EventProgressReset, second.Event)
	}
}

func TestHubChannelIsolation(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	userA := uuid.New()
	userB := uuid.New()
	clientA := hub.NewClient(userA)
	clientB := hub.NewClient(userB)
	hub.AddChannel(clientA, UserChannel(userA))
	hub.AddChannel(clientB, UserChannel(userB))

	hub.Broadcast(Message{Channel: UserChannel(userA), Event: EventPlanGenerated})

	recvMessage(t, clientA.Outbound, time.Second)
	select {
	case msg := <-clientB.Outbound:
		t.Fatalf("client B received message on another user's channel: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRemoveChannelStopsDelivery(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	channel := PlanChannel(uuid.New())

	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, channel)
	hub.RemoveChannel(client, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventPlanDeleted})

	select {
	case msg := <-client.Outbound:
		t.Fatalf("received message after unsubscribe: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRejectsSubscribeAfterClose(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	channel := PlanChannel(uuid.New())

	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, channel)
	hub.CloseClient(client)

	// A subscribe landing after teardown must not re-register the client;
	// broadcasting would otherwise send on the closed Outbound and panic.
	hub.AddChannel(client, channel)
	for i := 0; i < 20; i++ {
		hub.Broadcast(Message{Channel: channel, Event: EventProgressToggled})
	}
}

func TestHubDropsWhenOutboundFull(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	channel := PlanChannel(uuid.New())

	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, channel)

	// Outbound holds 16; everything past that must drop, not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.Broadcast(Message{Channel: channel, Event: EventProgressToggled, Data: map[string]any{"seq": i}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked on a slow client")
	}
}
