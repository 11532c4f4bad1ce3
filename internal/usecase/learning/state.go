package learning

import (
	"github.com/samber/lo"

	"github.com/eslsoft/kovoc/internal/entity"
)

// SessionStatus is the lifecycle status of a learning session.
type SessionStatus int

const (
	SessionIdle SessionStatus = iota
	SessionActive
	SessionComplete
)

func (s SessionStatus) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionActive:
		return "active"
	case SessionComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// State is a snapshot of a learning session. Transitions return a new State
// and never modify the slices or sets of the previous one.
type State struct {
	SessionID string
	LessonID  string
	Status    SessionStatus
	Round     int
	Phase     Phase
	Index     int

	// Queue holds the items of the current round in presentation order.
	Queue []entity.VocabularyStatus
	// Pool is every item of the lesson, used for distractors.
	Pool []entity.VocabularyItem

	// AwaitingAck is set after an incorrect answer until it is acknowledged.
	AwaitingAck bool

	// AlreadyMastered counts items that were mastered before the session started.
	AlreadyMastered int
	// MasteredIDs lists items promoted to mastered during this session.
	MasteredIDs []string

	failed   map[string]struct{}
	promoted map[string]struct{}
}

// Current returns the item under the cursor.
func (s State) Current() (entity.VocabularyStatus, bool) {
	if s.Status != SessionActive || s.Index < 0 || s.Index >= len(s.Queue) {
		return entity.VocabularyStatus{}, false
	}
	return s.Queue[s.Index], true
}

// HasFailed reports whether the item failed at least once in the current round.
func (s State) HasFailed(vocabularyID string) bool {
	_, ok := s.failed[vocabularyID]
	return ok
}

// FailedIDs returns the ids failed in the current round in queue order.
func (s State) FailedIDs() []string {
	return lo.FilterMap(s.Queue, func(item entity.VocabularyStatus, _ int) (string, bool) {
		return item.Item.ID, s.HasFailed(item.Item.ID)
	})
}

// WasPromoted reports whether the item was promoted from unlearned to learning in this session.
func (s State) WasPromoted(vocabularyID string) bool {
	_, ok := s.promoted[vocabularyID]
	return ok
}

func withMember(set map[string]struct{}, id string) map[string]struct{} {
	return lo.Assign(set, map[string]struct{}{id: {}})
}

func replaceAt(queue []entity.VocabularyStatus, index int, item entity.VocabularyStatus) []entity.VocabularyStatus {
	next := make([]entity.VocabularyStatus, len(queue))
	copy(next, queue)
	next[index] = item
	return next
}
