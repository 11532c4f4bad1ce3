package learning

import "github.com/eslsoft/kovoc/internal/entity"

// Response is a submitted answer: an option id for quiz phases, typed text for the typing phase.
type Response struct {
	OptionID string
	Text     string
}

// Evaluator checks responses. It holds no state.
type Evaluator struct{}

// Evaluate reports whether resp answers item correctly in the given phase.
// Typed answers are compared after trimming and case folding only.
func (Evaluator) Evaluate(phase Phase, item entity.VocabularyItem, resp Response) bool {
	if phase.IsQuiz() {
		return resp.OptionID != "" && resp.OptionID == item.ID
	}
	typed := entity.NormalizeWordToken(resp.Text)
	return typed != "" && typed == entity.NormalizeWordToken(item.Word)
}

// ExpectedAnswer is the text shown to the user after an incorrect answer.
func ExpectedAnswer(phase Phase, item entity.VocabularyItem) string {
	if phase == PhaseQuizSourceToTarget {
		return item.Meaning
	}
	return item.Word
}
