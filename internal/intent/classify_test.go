package intent

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Kind
	}{
		{name: "slash_topics", input: "/topics", want: KindSlashCommand},
		{name: "at_prefix", input: "@plan", want: KindSlashCommand},
		{name: "unknown_slash_falls_through", input: "/frobnicate", want: KindGeneralFallback},
		{name: "generation_learn_about", input: "I want to learn about rust", want: KindGenerationRequest},
		{name: "generation_create_plan", input: "create plan for machine learning", want: KindGenerationRequest},
		{name: "generation_study_plan_for", input: "study plan for linear algebra please", want: KindGenerationRequest},
		{name: "question_motivation", input: "how do I stay motivated", want: KindFreeformQuestion},
		{name: "question_unmatched", input: "what is the capital of france", want: KindFreeformQuestion},
		{name: "question_beats_recommend", input: "can you recommend a good book", want: KindFreeformQuestion},
		{name: "customization", input: "change my schedule to evenings", want: KindCustomizationRequest},
		{name: "customization_difficulty", input: "switch the difficulty to advanced", want: KindCustomizationRequest},
		{name: "recommendation", input: "recommend me something for practice", want: KindRecommendationRequest},
		{name: "greeting", input: "hello", want: KindGreeting},
		{name: "greeting_with_tail", input: "hey there!", want: KindGreeting},
		{name: "greeting_not_prefix_word", input: "highlight the plan", want: KindGeneralFallback},
		{name: "fallback", input: "xyz random text", want: KindGeneralFallback},
		{name: "empty", input: "   ", want: KindGeneralFallback},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.input)
			if got.Kind != tc.want {
				t.Fatalf("Classify(%q).Kind=%s, want %s", tc.input, got.Kind, tc.want)
			}
		})
	}
}

func TestClassifySlashParts(t *testing.T) {
	in := Classify("/resources видео")
	if in.Kind != KindSlashCommand || in.Command != "resources" {
		t.Fatalf("got %+v", in)
	}

	in = Classify("@milestones week 2")
	if in.Command != "milestones" || in.Arg != "week 2" {
		t.Fatalf("arg not captured: %+v", in)
	}

	in = Classify("/topics")
	if in.Command != "topics" || in.Arg != "" {
		t.Fatalf("bare command should have empty arg: %+v", in)
	}
}

func TestClassifyTopicExtraction(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "I want to learn about rust", want: "rust"},
		{input: "i want to learn go", want: "go"},
		{input: "create plan for machine learning!", want: "machine learning"},
		{input: "study plan for linear algebra", want: "linear algebra"},
		{input: "teach me about the French Revolution", want: "French Revolution"},
	}
	for _, tc := range cases {
		in := Classify(tc.input)
		if in.Kind != KindGenerationRequest {
			t.Fatalf("Classify(%q).Kind=%s, want generation", tc.input, in.Kind)
		}
		if in.Topic != tc.want {
			t.Fatalf("Classify(%q).Topic=%q, want %q", tc.input, in.Topic, tc.want)
		}
	}
}

func TestClassifyCannedAnswers(t *testing.T) {
	in := Classify("how do I stay motivated")
	if in.AnswerKey != "motivation" || in.Answer == "" {
		t.Fatalf("motivation bucket not matched: %+v", in)
	}

	in = Classify("how much time should I spend per week")
	if in.AnswerKey != "time_management" {
		t.Fatalf("time_management bucket not matched: %+v", in)
	}

	in = Classify("why is the sky blue")
	if in.AnswerKey != "" {
		t.Fatalf("unmatched question should have no canned answer: %+v", in)
	}
}
