package tools

import "testing"

func staticTool(n int) Tool {
	tool := Tool{Key: "static-test", Title: "Static Test"}
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for i := 0; i < n; i++ {
		tool.Questions = append(tool.Questions, Question{ID: "q" + labels[i], Input: InputTextarea})
	}
	return tool
}

func TestProgressStaticSevenQuestionsThreeAnswered(t *testing.T) {
	tool := staticTool(7)
	answers := Answers{
		"qa": Text("filled"),
		"qb": Text("  also filled "),
		"qc": Selection([]string{"x"}),
	}

	got := tool.Progress(answers, RepeatCounts{})
	if got.Percent != 43 {
		t.Fatalf("expected 43%%, got %d%%", got.Percent)
	}
	if got.Answered != 3 || got.Total != 7 {
		t.Fatalf("expected 3/7, got %d/%d", got.Answered, got.Total)
	}
	if got.Status != "In progress" {
		t.Fatalf("unexpected status %q", got.Status)
	}
}

func TestProgressAnsweredSemantics(t *testing.T) {
	tool := staticTool(5)
	answers := Answers{
		"qa": Text("   "),           // whitespace only, not answered
		"qb": Text(""),              // empty, not answered
		"qc": Selection([]string{}), // empty list, not answered
		"qd": Number(0),             // zero is a real answer
		"qe": Text("yes"),
	}

	got := tool.Progress(answers, RepeatCounts{})
	if got.Answered != 2 {
		t.Fatalf("expected 2 answered, got %d", got.Answered)
	}
}

func TestProgressEmptyToolIsZero(t *testing.T) {
	got := staticTool(0).Progress(Answers{}, RepeatCounts{})
	if got.Percent != 0 || got.Status != "Not started" {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestDynamicToolQuestionCountTracksRepeatCounts(t *testing.T) {
	tool, ok := ByKey("green-business-model")
	if !ok {
		t.Fatal("green-business-model missing from catalog")
	}

	// One of every group: 7 static questions plus 2+3+2+3 generated fields.
	base := len(tool.EffectiveQuestions(RepeatCounts{}))
	if base != 7+2+3+2+3 {
		t.Fatalf("unexpected base question count %d", base)
	}

	// Adding one customer card grows the set by the card's 3 fields.
	grown := len(tool.EffectiveQuestions(RepeatCounts{Cards: 2}))
	if grown != base+3 {
		t.Fatalf("expected %d questions with 2 cards, got %d", base+3, grown)
	}
}

func TestDynamicProgressRecomputesOnCounterChange(t *testing.T) {
	tool, _ := ByKey("green-business-model")
	answers := Answers{}
	for _, q := range tool.EffectiveQuestions(RepeatCounts{}) {
		answers[q.ID] = Text("done")
	}

	if got := tool.Progress(answers, RepeatCounts{}); got.Percent != 100 {
		t.Fatalf("expected 100%% at base counts, got %d%%", got.Percent)
	}
	// Growing a group without answering its new fields drops below 100.
	if got := tool.Progress(answers, RepeatCounts{Stages: 3}); got.Percent == 100 {
		t.Fatalf("expected <100%% after adding unanswered stages, got %+v", got)
	}
}

func TestCanAdvanceRequiresEveryPageQuestion(t *testing.T) {
	tool, _ := ByKey("green-business-model")
	counts := RepeatCounts{}
	answers := Answers{}
	for _, q := range tool.PageQuestions(0, counts) {
		answers[q.ID] = Text("done")
	}

	if !tool.CanAdvance(0, answers, counts) {
		t.Fatal("expected advance with full first page")
	}
	delete(answers, "valueProposition")
	if tool.CanAdvance(0, answers, counts) {
		t.Fatal("expected gate to hold with a missing answer")
	}
	// Growing a group on the page adds required questions.
	for _, q := range tool.PageQuestions(0, counts) {
		answers[q.ID] = Text("done")
	}
	if tool.CanAdvance(0, answers, RepeatCounts{VPRows: 2}) {
		t.Fatal("expected gate to hold after growing a group")
	}
}

func TestCanAdvanceOutOfRangePage(t *testing.T) {
	tool, _ := ByKey("green-business-model")
	if tool.CanAdvance(99, Answers{}, RepeatCounts{}) {
		t.Fatal("expected false for out-of-range page")
	}
}
