package learning

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/kovoc/internal/entity"
)

// Event is a user action fed into Transition.
type Event interface {
	isEvent()
}

// AnswerEvent reports the verdict for the item under the cursor.
type AnswerEvent struct {
	Correct bool
}

// AcknowledgeEvent confirms that the user has seen the feedback of an incorrect answer.
type AcknowledgeEvent struct{}

func (AnswerEvent) isEvent()      {}
func (AcknowledgeEvent) isEvent() {}

// Start builds the initial state for a lesson. Items that are not yet
// mastered form the first queue; with nothing to learn the session is
// complete right away and no round runs.
func Start(sessionID string, detail *entity.LessonProgress) (State, []Effect) {
	state := State{
		SessionID: sessionID,
		Status:    SessionComplete,
		Phase:     FirstPhase,
	}
	if detail == nil {
		return state, nil
	}
	state.LessonID = detail.LessonID
	state.Pool = lo.Map(detail.Items, func(item entity.VocabularyStatus, _ int) entity.VocabularyItem {
		return item.Item
	})

	toLearn, mastered := lo.FilterReject(detail.Items, func(item entity.VocabularyStatus, _ int) bool {
		return item.Status.NeedsLearning()
	})
	state.AlreadyMastered = len(mastered)
	if len(toLearn) == 0 {
		return state, nil
	}

	state.Status = SessionActive
	state.Round = 1
	state.Queue = toLearn
	return state, nil
}

// Transition applies an event to a state. The returned effects must be
// executed by the caller; state is left untouched.
func Transition(state State, event Event, now time.Time) (State, []Effect, error) {
	switch state.Status {
	case SessionIdle:
		return state, nil, entity.ErrSessionNotStarted
	case SessionComplete:
		return state, nil, entity.ErrSessionComplete
	}

	switch ev := event.(type) {
	case AnswerEvent:
		if state.AwaitingAck {
			return state, nil, entity.ErrAwaitingAcknowledge
		}
		if ev.Correct {
			next, effects := advance(state)
			return next, effects, nil
		}
		next, effects := recordFailure(state, now)
		return next, effects, nil
	case AcknowledgeEvent:
		if !state.AwaitingAck {
			return state, nil, entity.ErrNotAwaiting
		}
		state.AwaitingAck = false
		next, effects := advance(state)
		return next, effects, nil
	default:
		return state, nil, entity.ErrUnexpectedResponse
	}
}

func recordFailure(state State, now time.Time) (State, []Effect) {
	current, ok := state.Current()
	if !ok {
		return state, nil
	}
	id := current.Item.ID

	var effects []Effect
	state.failed = withMember(state.failed, id)
	if current.Status == entity.StatusUnlearned && !state.WasPromoted(id) {
		if effect, ok := promote(state.LessonID, current, entity.StatusLearning); ok {
			state.promoted = withMember(state.promoted, id)
			state.Queue = replaceAt(state.Queue, state.Index, current.WithStatus(entity.StatusLearning, now))
			effects = append(effects, effect)
		}
	}
	state.AwaitingAck = true
	return state, effects
}

func advance(state State) (State, []Effect) {
	state.Index++
	if state.Index < len(state.Queue) {
		return state, nil
	}
	if next, ok := state.Phase.Next(); ok {
		state.Phase = next
		state.Index = 0
		return state, nil
	}
	return endRound(state)
}

// endRound promotes every item that never failed in the round to mastered
// and carries the failed ones into the next round.
func endRound(state State) (State, []Effect) {
	carried, passed := lo.FilterReject(state.Queue, func(item entity.VocabularyStatus, _ int) bool {
		return state.HasFailed(item.Item.ID)
	})

	effects := lo.FilterMap(passed, func(item entity.VocabularyStatus, _ int) (Effect, bool) {
		return promote(state.LessonID, item, entity.StatusMastered)
	})
	mastered := make([]string, 0, len(state.MasteredIDs)+len(passed))
	mastered = append(mastered, state.MasteredIDs...)
	for _, item := range passed {
		mastered = append(mastered, item.Item.ID)
	}
	state.MasteredIDs = mastered

	state.failed = nil
	state.Phase = FirstPhase
	state.Index = 0
	state.AwaitingAck = false
	state.Queue = carried
	if len(carried) == 0 {
		state.Status = SessionComplete
		state.Queue = nil
		return state, effects
	}
	state.Round++
	return state, effects
}
