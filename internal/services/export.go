package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type ExportService interface {
	// JSON is the plan document serialized as-is, indented for download.
	JSON(doc types.PlanDocument) ([]byte, error)
	// Markdown renders the document with the fixed section headers
	// (Prerequisites, Core Topics, Progress Steps, Resources, Timeline, Tips).
	Markdown(doc types.PlanDocument) string
	Filename(doc types.PlanDocument, ext string) string
}

type exportService struct {
	log *logger.Logger
}

func NewExportService(log *logger.Logger) ExportService {
	return &exportService{log: log.With("service", "ExportService")}
}

func (s *exportService) JSON(doc types.PlanDocument) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan document: %w", err)
	}
	return raw, nil
}

func (s *exportService) Markdown(doc types.PlanDocument) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "Difficulty: %s | Time: %d %s/week | Format: %s\n\n",
		doc.Difficulty, doc.TimePerWeek, doc.TimeUnit, doc.Format)

	b.WriteString("## Prerequisites\n\n")
	if len(doc.Prerequisites) == 0 {
		b.WriteString("None.\n")
	}
	for _, t := range doc.Prerequisites {
		writeTopicLine(&b, t)
	}
	b.WriteString("\n")

	b.WriteString("## Core Topics\n\n")
	for _, t := range doc.CoreTopics {
		writeTopicLine(&b, t)
	}
	b.WriteString("\n")

	b.WriteString("## Progress Steps\n\n")
	for _, step := range doc.ProgressSteps {
		fmt.Fprintf(&b, "### Week %d\n\n", step.Week)
		for _, topic := range step.Topics {
			fmt.Fprintf(&b, "- %s\n", topic)
		}
		for _, m := range step.Milestones {
			fmt.Fprintf(&b, "- Milestone: %s\n", m)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Resources\n\n")
	if len(doc.Resources) == 0 {
		b.WriteString("None.\n")
	}
	for _, r := range doc.Resources {
		if r.URL != "" {
			fmt.Fprintf(&b, "- [%s](%s) (%s)\n", r.Title, r.URL, r.Type)
		} else {
			fmt.Fprintf(&b, "- %s (%s)\n", r.Title, r.Type)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Timeline\n\n")
	for _, step := range doc.ProgressSteps {
		fmt.Fprintf(&b, "- Week %d: %s\n", step.Week, strings.Join(step.Topics, ", "))
	}
	b.WriteString("\n")

	b.WriteString("## Tips\n\n")
	for _, tip := range doc.Tips {
		fmt.Fprintf(&b, "- %s\n", tip)
	}

	return b.String()
}

func (s *exportService) Filename(doc types.PlanDocument, ext string) string {
	slug := strings.ToLower(strings.TrimSpace(doc.Title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "study-plan"
	}
	return slug + "." + ext
}

func writeTopicLine(b *strings.Builder, t types.Topic) {
	fmt.Fprintf(b, "- **%s**", t.Title)
	if t.Duration != "" {
		fmt.Fprintf(b, " (%s)", t.Duration)
	}
	if t.Description != "" {
		fmt.Fprintf(b, ": %s", t.Description)
	}
	b.WriteString("\n")
}
