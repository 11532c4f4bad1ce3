// Package learning drives a vocabulary learning session: three drill phases
// per round, repeated with the failed items until every item is mastered.
package learning

// Phase is one of the three drill modes of a round.
type Phase int

const (
	// PhaseQuizSourceToTarget shows the Korean word and asks for its meaning.
	PhaseQuizSourceToTarget Phase = iota
	// PhaseTypeTargetToSource shows the meaning and asks to type the Korean word.
	PhaseTypeTargetToSource
	// PhaseQuizTargetToSource shows the meaning and asks to pick the Korean word.
	PhaseQuizTargetToSource
)

// FirstPhase is the phase every round starts with.
const FirstPhase = PhaseQuizSourceToTarget

// Next returns the phase following p. ok is false after the last phase of a round.
func (p Phase) Next() (next Phase, ok bool) {
	switch p {
	case PhaseQuizSourceToTarget:
		return PhaseTypeTargetToSource, true
	case PhaseTypeTargetToSource:
		return PhaseQuizTargetToSource, true
	default:
		return p, false
	}
}

// IsQuiz reports whether the phase is answered by picking an option.
func (p Phase) IsQuiz() bool {
	return p == PhaseQuizSourceToTarget || p == PhaseQuizTargetToSource
}

func (p Phase) String() string {
	switch p {
	case PhaseQuizSourceToTarget:
		return "quiz_source_to_target"
	case PhaseTypeTargetToSource:
		return "type_target_to_source"
	case PhaseQuizTargetToSource:
		return "quiz_target_to_source"
	default:
		return "unknown"
	}
}
