package intent

import (
	"strings"
)

// Kind is the closed set of conversation intents. Classification is ordered,
// first match wins; every input lands somewhere, with KindGeneralFallback
// routed to the upstream chat model.
type Kind string

const (
	KindSlashCommand          Kind = "slash_command"
	KindFreeformQuestion      Kind = "freeform_question"
	KindGenerationRequest     Kind = "generation_request"
	KindCustomizationRequest  Kind = "customization_request"
	KindRecommendationRequest Kind = "recommendation_request"
	KindGreeting              Kind = "greeting"
	KindGeneralFallback       Kind = "general_fallback"
)

type Intent struct {
	Kind Kind
	// Command and Arg are set for slash commands.
	Command string
	Arg     string
	// Topic is set for generation requests.
	Topic string
	// AnswerKey and Answer are set when a freeform question matched a canned
	// answer bucket.
	AnswerKey string
	Answer    string
}

var slashCommands = map[string]bool{
	"topics":        true,
	"prerequisites": true,
	"core":          true,
	"resources":     true,
	"milestones":    true,
	"plan":          true,
	"help":          true,
	"preferences":   true,
}

var questionLeads = []string{
	"help", "how", "what", "why", "when", "where", "can you", "could you",
}

var generationTriggers = []string{
	"create a plan", "create plan",
	"generate a plan", "generate plan",
	"study plan for",
	"i want to learn",
	"teach me",
}

var customizationVerbs = []string{
	"change", "adjust", "modify", "update", "customize", "switch",
}

var customizationNouns = []string{
	"schedule", "difficulty", "level", "pace", "format", "time", "hours", "week",
}

var greetingLeads = []string{
	"hi", "hello", "hey", "yo", "howdy", "greetings",
	"good morning", "good afternoon", "good evening",
}

// Classify maps free-text chat input onto an Intent. Pure string matching,
// case-insensitive, ordered rules.
func Classify(input string) Intent {
	raw := strings.TrimSpace(input)
	lower := strings.ToLower(raw)
	if lower == "" {
		return Intent{Kind: KindGeneralFallback}
	}

	if in, ok := classifySlash(raw, lower); ok {
		return in
	}

	if leadsWith(lower, questionLeads) {
		in := Intent{Kind: KindFreeformQuestion}
		if key, answer, ok := lookupAnswer(lower); ok {
			in.AnswerKey = key
			in.Answer = answer
		}
		return in
	}

	if in, ok := classifyGeneration(raw, lower); ok {
		return in
	}

	if containsAny(lower, customizationVerbs) && containsAny(lower, customizationNouns) {
		return Intent{Kind: KindCustomizationRequest}
	}

	if strings.Contains(lower, "recommend") || strings.Contains(lower, "suggest") {
		return Intent{Kind: KindRecommendationRequest}
	}

	if leadsWith(lower, greetingLeads) {
		return Intent{Kind: KindGreeting}
	}

	return Intent{Kind: KindGeneralFallback}
}

func classifySlash(raw, lower string) (Intent, bool) {
	if !strings.HasPrefix(lower, "/") && !strings.HasPrefix(lower, "@") {
		return Intent{}, false
	}
	fields := strings.Fields(lower[1:])
	if len(fields) == 0 {
		return Intent{}, false
	}
	name := fields[0]
	if !slashCommands[name] {
		return Intent{}, false
	}
	arg := ""
	if len(fields) > 1 {
		rawFields := strings.Fields(raw[1:])
		arg = strings.Join(rawFields[1:], " ")
	}
	return Intent{Kind: KindSlashCommand, Command: name, Arg: arg}, true
}

func classifyGeneration(raw, lower string) (Intent, bool) {
	for _, trig := range generationTriggers {
		idx := strings.Index(lower, trig)
		if idx < 0 {
			continue
		}
		topic := extractTopic(raw[min(idx+len(trig), len(raw)):])
		return Intent{Kind: KindGenerationRequest, Topic: topic}, true
	}
	// "learn ... about X" without an explicit trigger phrase.
	if li := strings.Index(lower, "learn"); li >= 0 {
		if ai := strings.Index(lower[li:], "about"); ai >= 0 {
			topic := extractTopic(raw[min(li+ai+len("about"), len(raw)):])
			if topic != "" {
				return Intent{Kind: KindGenerationRequest, Topic: topic}, true
			}
		}
	}
	return Intent{}, false
}

// extractTopic strips leading filler words and trailing punctuation from the
// text that follows a generation trigger.
func extractTopic(rest string) string {
	rest = strings.TrimSpace(rest)
	for {
		lower := strings.ToLower(rest)
		stripped := false
		for _, filler := range []string{"about ", "for ", "to ", "on ", "the ", "a ", "an "} {
			if strings.HasPrefix(lower, filler) {
				rest = strings.TrimSpace(rest[len(filler):])
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	return strings.TrimRight(rest, ".!?,")
}

func leadsWith(lower string, leads []string) bool {
	for _, lead := range leads {
		if lower == lead {
			return true
		}
		if strings.HasPrefix(lower, lead) {
			next := lower[len(lead)]
			if next == ' ' || next == ',' || next == '!' || next == '?' || next == '.' {
				return true
			}
		}
	}
	return false
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
