package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kovoc/internal/entity"
)

type progressLoader interface {
	GetDetail(ctx context.Context, lessonID string) (*entity.LessonProgress, error)
}

// Feedback describes the outcome of a submitted answer.
type Feedback struct {
	Correct  bool
	Expected string
	Item     entity.VocabularyItem
	// RoundEnded is set when the call closed a round. An incorrect answer
	// holds the cursor, so for it the flag comes from Acknowledge.
	RoundEnded bool
	// Complete is set when the call finished the session.
	Complete bool
}

// Summary reports what a session achieved so far.
type Summary struct {
	Rounds          int
	Mastered        int
	Remaining       int
	AlreadyMastered int
}

// Session is the controller of one learning session. It owns the State,
// renders the current question and hands emitted effects to the executor.
// A Session is driven by a single goroutine.
type Session struct {
	lessonID  string
	loader    progressLoader
	executor  EffectExecutor
	generator *QuestionGenerator
	evaluator Evaluator
	log       logrus.FieldLogger
	clock     func() time.Time
	newID     func() string

	state    State
	question *Question
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger logrus.FieldLogger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithQuestionGenerator replaces the default generator.
func WithQuestionGenerator(generator *QuestionGenerator) SessionOption {
	return func(s *Session) {
		if generator != nil {
			s.generator = generator
		}
	}
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() string) SessionOption {
	return func(s *Session) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewSession creates an idle session for a lesson.
func NewSession(lessonID string, loader progressLoader, executor EffectExecutor, opts ...SessionOption) *Session {
	s := &Session{
		lessonID:  lessonID,
		loader:    loader,
		executor:  executor,
		generator: NewQuestionGenerator(nil, DefaultOptionCount),
		log:       logrus.StandardLogger(),
		clock:     time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the lesson progress and builds the first round. A load failure
// leaves the session idle and is returned as is.
func (s *Session) Start(ctx context.Context) error {
	if s.state.Status != SessionIdle {
		return nil
	}
	detail, err := s.loader.GetDetail(ctx, s.lessonID)
	if err != nil {
		return fmt.Errorf("load lesson progress: %w", err)
	}

	state, effects := Start(s.newID(), detail)
	if state.LessonID == "" {
		state.LessonID = s.lessonID
	}
	s.log = s.log.WithFields(logrus.Fields{
		"session_id": state.SessionID,
		"lesson_id":  state.LessonID,
	})
	s.apply(ctx, state, effects)
	s.log.WithFields(logrus.Fields{
		"to_learn":         len(state.Queue),
		"already_mastered": state.AlreadyMastered,
		"status":           state.Status.String(),
	}).Info("learning session started")
	return nil
}

// Current returns the question for the item under the cursor. It is stable
// until the cursor moves, so options are not reshuffled between reads.
func (s *Session) Current() (Question, bool) {
	item, ok := s.state.Current()
	if !ok {
		return Question{}, false
	}
	if s.question == nil {
		q := s.generator.Generate(s.state.Phase, item.Item, s.state.Pool)
		s.question = &q
	}
	return *s.question, true
}

// Submit evaluates resp against the item under the cursor and advances the
// session. An incorrect answer must be acknowledged before the next one.
func (s *Session) Submit(ctx context.Context, resp Response) (Feedback, error) {
	if err := s.ready(); err != nil {
		return Feedback{}, err
	}
	if s.state.AwaitingAck {
		return Feedback{}, entity.ErrAwaitingAcknowledge
	}
	item, _ := s.state.Current()
	phase := s.state.Phase
	round := s.state.Round

	correct := s.evaluator.Evaluate(phase, item.Item, resp)
	next, effects, err := Transition(s.state, AnswerEvent{Correct: correct}, s.clock())
	if err != nil {
		return Feedback{}, err
	}
	s.apply(ctx, next, effects)

	s.log.WithFields(logrus.Fields{
		"vocabulary_id": item.Item.ID,
		"phase":         phase.String(),
		"round":         round,
		"correct":       correct,
	}).Debug("answer evaluated")

	return Feedback{
		Correct:    correct,
		Expected:   ExpectedAnswer(phase, item.Item),
		Item:       item.Item,
		RoundEnded: next.Round != round || next.Status == SessionComplete,
		Complete:   next.Status == SessionComplete,
	}, nil
}

// Acknowledge confirms the feedback of an incorrect answer and moves on.
// The returned feedback describes the acknowledged item and whether moving
// past it closed the round or the session.
func (s *Session) Acknowledge(ctx context.Context) (Feedback, error) {
	if err := s.ready(); err != nil {
		return Feedback{}, err
	}
	item, _ := s.state.Current()
	phase := s.state.Phase
	round := s.state.Round

	next, effects, err := Transition(s.state, AcknowledgeEvent{}, s.clock())
	if err != nil {
		return Feedback{}, err
	}
	s.apply(ctx, next, effects)
	return Feedback{
		Expected:   ExpectedAnswer(phase, item.Item),
		Item:       item.Item,
		RoundEnded: next.Round != round || next.Status == SessionComplete,
		Complete:   next.Status == SessionComplete,
	}, nil
}

// State returns the current snapshot.
func (s *Session) State() State {
	return s.state
}

// Done reports whether the session reached its terminal state.
func (s *Session) Done() bool {
	return s.state.Status == SessionComplete
}

// Summary reports progress of the session.
func (s *Session) Summary() Summary {
	return Summary{
		Rounds:          s.state.Round,
		Mastered:        len(s.state.MasteredIDs),
		Remaining:       len(s.state.Queue),
		AlreadyMastered: s.state.AlreadyMastered,
	}
}

func (s *Session) ready() error {
	switch s.state.Status {
	case SessionIdle:
		return entity.ErrSessionNotStarted
	case SessionComplete:
		return entity.ErrSessionComplete
	default:
		return nil
	}
}

func (s *Session) apply(ctx context.Context, next State, effects []Effect) {
	prev := s.state
	s.state = next
	if prev.Round != next.Round || prev.Phase != next.Phase || prev.Index != next.Index || prev.Status != next.Status {
		s.question = nil
	}
	if next.Status == SessionActive && prev.Round != next.Round && prev.Round != 0 {
		s.log.WithFields(logrus.Fields{
			"round":     next.Round,
			"remaining": len(next.Queue),
		}).Info("next round started")
	}
	if next.Status == SessionComplete && prev.Status == SessionActive {
		s.log.WithField("mastered", len(next.MasteredIDs)).Info("learning session complete")
	}
	if len(effects) > 0 && s.executor != nil {
		s.executor.Execute(ctx, effects)
	}
}
