package session

import (
	"testing"
	"time"

	"github.com/calebdunn/studypath-backend/internal/progress"
	"github.com/calebdunn/studypath-backend/internal/types"
)

func testState() State {
	return State{
		Plan: types.PlanDocument{
			Title:      "Go",
			CoreTopics: []types.Topic{{ID: "c1", Title: "Functions"}},
		},
		Progress: progress.Store{},
	}
}

func TestApplyToggle(t *testing.T) {
	st := testState()
	now := time.Now()

	st = Apply(st, Command{Type: CommandToggleNode, NodeKey: "topic-0", At: now})
	if !st.Progress.Completed("topic-0") {
		t.Fatalf("toggle should complete topic-0")
	}

	st = Apply(st, Command{Type: CommandToggleNode, NodeKey: "topic-0", At: now})
	if len(st.Progress) != 0 {
		t.Fatalf("second toggle should remove the key, store=%v", st.Progress)
	}
}

func TestApplyToggleSyntheticIsNoop(t *testing.T) {
	st := testState()
	for _, key := range []string{"start", "finish", ""} {
		next := Apply(st, Command{Type: CommandToggleNode, NodeKey: key, At: time.Now()})
		if len(next.Progress) != 0 {
			t.Fatalf("toggle on %q should be a no-op", key)
		}
		if Changed(st, Command{Type: CommandToggleNode, NodeKey: key}) {
			t.Fatalf("Changed should be false for %q", key)
		}
	}
}

func TestApplyReplacePlan(t *testing.T) {
	st := testState()
	st = Apply(st, Command{Type: CommandToggleNode, NodeKey: "topic-0", At: time.Now()})

	replacement := types.PlanDocument{Title: "Rust"}
	st = Apply(st, Command{Type: CommandReplacePlan, Plan: &replacement})
	if st.Plan.Title != "Rust" {
		t.Fatalf("plan not replaced: %+v", st.Plan)
	}
	if len(st.Progress) != 0 {
		t.Fatalf("replacement without a loaded store should reset progress")
	}

	loaded := progress.Toggle(progress.Store{}, "prereq-0", time.Now())
	st = Apply(st, Command{Type: CommandReplacePlan, Plan: &replacement, Progress: loaded})
	if !st.Progress.Completed("prereq-0") {
		t.Fatalf("replacement should carry the loaded store")
	}
}

func TestApplyResetProgress(t *testing.T) {
	st := testState()
	st = Apply(st, Command{Type: CommandToggleNode, NodeKey: "topic-0", At: time.Now()})
	st = Apply(st, Command{Type: CommandResetProgress})
	if len(st.Progress) != 0 {
		t.Fatalf("reset should empty the store")
	}
}

func TestGraphFollowsState(t *testing.T) {
	st := testState()
	g := st.Graph()
	if len(g.Nodes) != 3 {
		t.Fatalf("node count=%d, want 3", len(g.Nodes))
	}
	st = Apply(st, Command{Type: CommandToggleNode, NodeKey: "topic-0", At: time.Now()})
	g = st.Graph()
	if !g.Nodes[1].Completed {
		t.Fatalf("graph should reflect toggled state")
	}
	if st.CompletionRate() != 100 {
		t.Fatalf("rate=%d, want 100", st.CompletionRate())
	}
}
