package services

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/types"
)

func exportTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func exportTestDoc() types.PlanDocument {
	return types.PlanDocument{
		Title:       "Rust Study Plan",
		Difficulty:  "beginner",
		TimePerWeek: 5,
		TimeUnit:    "hours",
		Format:      "balanced",
		Prerequisites: []types.Topic{
			{ID: "p1", Title: "Programming Basics", Description: "Variables and control flow."},
		},
		CoreTopics: []types.Topic{
			{ID: "c1", Title: "Ownership", Duration: "2 weeks"},
			{ID: "c2", Title: "Traits"},
		},
		ProgressSteps: []types.WeekPlan{
			{Week: 1, Topics: []string{"Ownership"}, Milestones: []string{"Explain move semantics"}},
			{Week: 2, Topics: []string{"Traits"}, Milestones: []string{"Implement a trait"}},
		},
		Resources: []types.Resource{
			{Title: "The Rust Book", Type: "book", URL: "https://doc.rust-lang.org/book/"},
		},
		Tips: []string{"Write small programs daily."},
	}
}

func TestMarkdownSectionHeaders(t *testing.T) {
	svc := NewExportService(exportTestLogger(t))
	md := svc.Markdown(exportTestDoc())

	headers := []string{
		"## Prerequisites",
		"## Core Topics",
		"## Progress Steps",
		"## Resources",
		"## Timeline",
		"## Tips",
	}
	lastIdx := -1
	for _, h := range headers {
		idx := strings.Index(md, h)
		if idx < 0 {
			t.Fatalf("missing section header %q in:\n%s", h, md)
		}
		if idx < lastIdx {
			t.Fatalf("section %q out of order", h)
		}
		lastIdx = idx
	}
}

func TestMarkdownContent(t *testing.T) {
	svc := NewExportService(exportTestLogger(t))
	md := svc.Markdown(exportTestDoc())

	for _, want := range []string{
		"# Rust Study Plan",
		"**Ownership** (2 weeks)",
		"### Week 1",
		"- Milestone: Explain move semantics",
		"[The Rust Book](https://doc.rust-lang.org/book/) (book)",
		"- Week 2: Traits",
		"- Write small programs daily.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q in:\n%s", want, md)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	svc := NewExportService(exportTestLogger(t))
	doc := exportTestDoc()

	raw, err := svc.JSON(doc)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded types.PlanDocument
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal exported JSON: %v", err)
	}
	if !reflect.DeepEqual(doc, decoded) {
		t.Fatalf("exported document does not round-trip:\nwant=%+v\ngot=%+v", doc, decoded)
	}
}

func TestFilename(t *testing.T) {
	svc := NewExportService(exportTestLogger(t))

	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"Rust Study Plan", "json", "rust-study-plan.json"},
		{"C++ / Systems!", "md", "c--systems.md"},
		{"", "md", "study-plan.md"},
	}
	for _, tc := range tests {
		doc := types.PlanDocument{Title: tc.title}
		if got := svc.Filename(doc, tc.ext); got != tc.want {
			t.Fatalf("Filename(%q): want=%q got=%q", tc.title, tc.want, got)
		}
	}
}
