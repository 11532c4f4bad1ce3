package learning

import "github.com/eslsoft/kovoc/internal/entity"

// EffectKind identifies the side effect a transition asks for.
type EffectKind int

const (
	// EffectUpdateStatus persists a new mastery status for one item.
	EffectUpdateStatus EffectKind = iota + 1
)

// Effect is a side effect emitted by a transition. The state machine never
// performs it; an EffectExecutor does.
type Effect struct {
	Kind         EffectKind
	LessonID     string
	VocabularyID string
	Status       entity.MasteryStatus
}

func updateStatus(lessonID, vocabularyID string, status entity.MasteryStatus) Effect {
	return Effect{
		Kind:         EffectUpdateStatus,
		LessonID:     lessonID,
		VocabularyID: vocabularyID,
		Status:       status,
	}
}

// promote returns the status effect moving item to the given status. Nothing
// is emitted when the item already has it or the move would go backwards.
func promote(lessonID string, item entity.VocabularyStatus, to entity.MasteryStatus) (Effect, bool) {
	if item.Status == to || !item.Status.CanTransitionTo(to) {
		return Effect{}, false
	}
	return updateStatus(lessonID, item.Item.ID, to), true
}
