package roadmap

import (
	"fmt"
	"strings"

	"github.com/calebdunn/studypath-backend/internal/progress"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type Category string

const (
	CategoryStart     Category = "start"
	CategoryPrereq    Category = "prereq"
	CategoryCore      Category = "core"
	CategoryMilestone Category = "milestone"
	CategoryFinish    Category = "finish"
)

type Node struct {
	ID          string   `json:"id"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Category    Category `json:"category"`
	Completed   bool     `json:"completed"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Duration    string   `json:"duration,omitempty"`
}

type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Completed bool   `json:"completed"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build converts a plan document plus its progress store into a positioned
// node/edge graph. The result is a single chain:
//
//	start -> prereq-0..n -> topic-0..n -> step-0..n -> finish
//
// Weekly steps contribute one node per week; their per-topic and per-
// milestone keys are tracked in the store but not graphed. Build is pure and
// deterministic: the same inputs produce byte-identical output.
func Build(doc types.PlanDocument, store progress.Store) Graph {
	total := 2 + len(doc.Prerequisites) + len(doc.CoreTopics) + len(doc.ProgressSteps)
	g := Graph{
		Nodes: make([]Node, 0, total),
		Edges: make([]Edge, 0, total-1),
	}

	emit := func(n Node) {
		pos := len(g.Nodes)
		n.X, n.Y = place(pos, n.Category)
		if pos > 0 {
			prev := g.Nodes[pos-1]
			g.Edges = append(g.Edges, Edge{
				ID:        fmt.Sprintf("e-%s-%s", prev.ID, n.ID),
				Source:    prev.ID,
				Target:    n.ID,
				Completed: prev.Completed && n.Completed,
			})
		}
		g.Nodes = append(g.Nodes, n)
	}

	emit(Node{
		ID:        progress.StartKey,
		Category:  CategoryStart,
		Completed: true,
		Label:     "Start",
	})

	for i, t := range doc.Prerequisites {
		key := progress.PrereqKey(i)
		emit(Node{
			ID:          key,
			Category:    CategoryPrereq,
			Completed:   store.Completed(key),
			Label:       t.Title,
			Description: t.Description,
			Duration:    t.Duration,
		})
	}

	for i, t := range doc.CoreTopics {
		key := progress.TopicKey(i)
		emit(Node{
			ID:          key,
			Category:    CategoryCore,
			Completed:   store.Completed(key),
			Label:       t.Title,
			Description: t.Description,
			Duration:    t.Duration,
		})
	}

	for i, step := range doc.ProgressSteps {
		key := progress.StepKey(i)
		emit(Node{
			ID:          key,
			Category:    CategoryMilestone,
			Completed:   store.Completed(key),
			Label:       fmt.Sprintf("Week %d", step.Week),
			Description: strings.Join(step.Topics, ", "),
		})
	}

	emit(Node{
		ID:       progress.FinishKey,
		Category: CategoryFinish,
		Label:    "Finish",
	})

	return g
}
