package tools

import "math"

// Summary reports questionnaire completion for one tool.
type Summary struct {
	ToolKey  string `json:"toolKey"`
	Title    string `json:"title"`
	Total    int    `json:"totalCount"`
	Answered int    `json:"answeredCount"`
	Percent  int    `json:"percent"`
	Status   string `json:"status"`
}

// EffectiveQuestions is the full question set of a tool at the current
// repeat counts. Static tools return their fixed list; the dynamic tool
// expands each page's static questions plus every repeating group
// multiplied by its count.
func (t Tool) EffectiveQuestions(counts RepeatCounts) []Question {
	if !t.Dynamic() {
		return t.Questions
	}
	var out []Question
	for _, page := range t.Pages {
		out = append(out, pageQuestions(page, counts)...)
	}
	return out
}

// PageQuestions is the question set generated for one page of the dynamic
// tool at the current repeat counts.
func (t Tool) PageQuestions(pageIndex int, counts RepeatCounts) []Question {
	if !t.Dynamic() || pageIndex < 0 || pageIndex >= len(t.Pages) {
		return nil
	}
	return pageQuestions(t.Pages[pageIndex], counts)
}

func pageQuestions(page Page, counts RepeatCounts) []Question {
	out := make([]Question, 0, len(page.Static))
	out = append(out, page.Static...)
	for _, group := range page.Groups {
		n := counts.Get(group.Counter)
		for i := 1; i <= n; i++ {
			for _, field := range group.Fields {
				out = append(out, Question{
					ID:    group.questionID(i, field),
					Label: field.Label,
					Input: field.Input,
				})
			}
		}
	}
	return out
}

// Progress computes completion over the tool's effective question set.
// Changing a repeat count changes the denominator, so callers recompute
// after every counter change.
func (t Tool) Progress(answers Answers, counts RepeatCounts) Summary {
	questions := t.EffectiveQuestions(counts)
	answered := 0
	for _, q := range questions {
		if answers[q.ID].Answered() {
			answered++
		}
	}
	percent := 0
	if len(questions) > 0 {
		percent = int(math.Round(100 * float64(answered) / float64(len(questions))))
	}
	status := "Not started"
	switch {
	case percent == 100:
		status = "Completed"
	case percent > 0:
		status = "In progress"
	}
	return Summary{
		ToolKey:  t.Key,
		Title:    t.Title,
		Total:    len(questions),
		Answered: answered,
		Percent:  percent,
		Status:   status,
	}
}

// CanAdvance gates forward navigation in the dynamic tool: leaving a page
// requires every question currently generated for it to be answered.
// Moving backward is never gated.
func (t Tool) CanAdvance(pageIndex int, answers Answers, counts RepeatCounts) bool {
	questions := t.PageQuestions(pageIndex, counts)
	if questions == nil {
		return false
	}
	for _, q := range questions {
		if !answers[q.ID].Answered() {
			return false
		}
	}
	return true
}
