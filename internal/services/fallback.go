package services

import (
	"fmt"

	"github.com/calebdunn/studypath-backend/internal/types"
)

// FallbackPlan is the minimal renderable plan stored when the model returns
// output that fails schema validation. It keeps the UI functional instead of
// surfacing a parse error for a request that did reach the model.
func FallbackPlan(req GenerateRequest) types.PlanDocument {
	topic := req.Topic
	if topic == "" {
		topic = "your topic"
	}
	return types.PlanDocument{
		Title:       planTitle(req.Topic),
		Difficulty:  req.Difficulty,
		TimePerWeek: req.TimePerWeek,
		TimeUnit:    req.TimeUnit,
		Format:      req.Format,
		Prerequisites: []types.Topic{
			{ID: "p1", Title: "Fundamentals", Description: fmt.Sprintf("Background concepts that make %s approachable.", topic)},
		},
		CoreTopics: []types.Topic{
			{ID: "c1", Title: fmt.Sprintf("Introduction to %s", topic), Description: "Core ideas and vocabulary.", Duration: "1 week"},
			{ID: "c2", Title: fmt.Sprintf("Working with %s", topic), Description: "Hands-on practice with the essentials.", Duration: "2 weeks"},
		},
		ProgressSteps: []types.WeekPlan{
			{Week: 1, Topics: []string{fmt.Sprintf("Introduction to %s", topic)}, Milestones: []string{"Finish the introduction"}},
			{Week: 2, Topics: []string{"Guided practice"}, Milestones: []string{"Complete a small exercise"}},
		},
		Resources: []types.Resource{
			{Title: "Official documentation", Type: "documentation"},
		},
		Tips: []string{
			"Regenerate the plan to get a fully tailored curriculum.",
			"Short, regular sessions beat occasional long ones.",
		},
	}
}
