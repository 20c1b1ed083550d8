package roadmap

import (
	"reflect"
	"testing"
	"time"

	"github.com/calebdunn/studypath-backend/internal/progress"
	"github.com/calebdunn/studypath-backend/internal/types"
)

func examplePlan() types.PlanDocument {
	return types.PlanDocument{
		Title: "Programming Basics",
		Prerequisites: []types.Topic{
			{ID: "p1", Title: "Variables"},
		},
		CoreTopics: []types.Topic{
			{ID: "c1", Title: "Functions"},
			{ID: "c2", Title: "Classes"},
		},
		ProgressSteps: []types.WeekPlan{
			{Week: 1, Topics: []string{"Intro"}, Milestones: []string{"Finish intro"}},
		},
	}
}

func TestBuildDeterminism(t *testing.T) {
	doc := examplePlan()
	store := progress.Toggle(progress.Store{}, "topic-0", time.Now())

	a := Build(doc, store)
	b := Build(doc, store)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Build is not deterministic:\n%v\n%v", a, b)
	}

	wantNodes := 2 + len(doc.Prerequisites) + len(doc.CoreTopics) + len(doc.ProgressSteps)
	if len(a.Nodes) != wantNodes {
		t.Fatalf("node count=%d, want %d", len(a.Nodes), wantNodes)
	}
	if len(a.Edges) != wantNodes-1 {
		t.Fatalf("edge count=%d, want %d", len(a.Edges), wantNodes-1)
	}
}

func TestBuildEmptyPlan(t *testing.T) {
	g := Build(types.PlanDocument{}, progress.Store{})
	if len(g.Nodes) != 2 {
		t.Fatalf("empty plan node count=%d, want 2", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("empty plan edge count=%d, want 1", len(g.Edges))
	}
	if g.Nodes[0].ID != progress.StartKey || !g.Nodes[0].Completed {
		t.Fatalf("start node wrong: %+v", g.Nodes[0])
	}
	if g.Nodes[1].ID != progress.FinishKey || g.Nodes[1].Completed {
		t.Fatalf("finish node wrong: %+v", g.Nodes[1])
	}
	if g.Edges[0].Source != progress.StartKey || g.Edges[0].Target != progress.FinishKey {
		t.Fatalf("edge wrong: %+v", g.Edges[0])
	}
	if g.Edges[0].Completed {
		t.Fatalf("start->finish edge must not be completed on an empty store")
	}
}

func TestBuildChainOrder(t *testing.T) {
	g := Build(examplePlan(), progress.Store{})

	wantIDs := []string{"start", "prereq-0", "topic-0", "topic-1", "step-0", "finish"}
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	if !reflect.DeepEqual(ids, wantIDs) {
		t.Fatalf("chain order=%v, want %v", ids, wantIDs)
	}

	wantCats := []Category{CategoryStart, CategoryPrereq, CategoryCore, CategoryCore, CategoryMilestone, CategoryFinish}
	for i, n := range g.Nodes {
		if n.Category != wantCats[i] {
			t.Fatalf("node %s category=%s, want %s", n.ID, n.Category, wantCats[i])
		}
	}

	for i, e := range g.Edges {
		if e.Source != wantIDs[i] || e.Target != wantIDs[i+1] {
			t.Fatalf("edge %d is %s->%s, want %s->%s", i, e.Source, e.Target, wantIDs[i], wantIDs[i+1])
		}
	}
}

func TestBuildEdgeCompletionPropagation(t *testing.T) {
	doc := examplePlan()
	store := progress.Toggle(progress.Store{}, "prereq-0", time.Now())

	g := Build(doc, store)
	if !g.Nodes[1].Completed {
		t.Fatalf("prereq-0 should be completed after toggle")
	}
	// start is always completed, so start->prereq-0 goes green.
	if !g.Edges[0].Completed {
		t.Fatalf("start->prereq-0 edge should be completed")
	}
	if g.Edges[1].Completed {
		t.Fatalf("prereq-0->topic-0 edge should stay incomplete until topic-0 is toggled")
	}

	store = progress.Toggle(store, "topic-0", time.Now())
	g = Build(doc, store)
	if !g.Edges[1].Completed {
		t.Fatalf("prereq-0->topic-0 edge should complete once both endpoints are")
	}
}

func TestBuildLayoutDeterminism(t *testing.T) {
	g := Build(examplePlan(), progress.Store{})
	for i, n := range g.Nodes {
		x, y := place(i, n.Category)
		if n.X != x || n.Y != y {
			t.Fatalf("node %s at (%v,%v), want (%v,%v)", n.ID, n.X, n.Y, x, y)
		}
		if i > 0 && g.Nodes[i].Y <= g.Nodes[i-1].Y {
			t.Fatalf("depth must grow monotonically along the chain")
		}
	}
	if g.Nodes[0].X != 0 {
		t.Fatalf("start node should sit on the center column")
	}
}
