package learning

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kovoc/internal/entity"
)

// EffectExecutor performs the side effects emitted by transitions.
type EffectExecutor interface {
	Execute(ctx context.Context, effects []Effect)
}

type statusUpdater interface {
	UpdateStatus(ctx context.Context, lessonID, vocabularyID string, status entity.MasteryStatus) error
}

// AsyncExecutor persists status updates in the background. Each effect is an
// independent call; failures are logged and counted, never retried or rolled
// back, so the local session may drift ahead of the server.
type AsyncExecutor struct {
	store   statusUpdater
	log     logrus.FieldLogger
	timeout time.Duration

	wg       sync.WaitGroup
	failures atomic.Int64
}

// NewAsyncExecutor returns an executor writing through store. A zero timeout disables the per-call deadline.
func NewAsyncExecutor(store statusUpdater, logger logrus.FieldLogger, timeout time.Duration) *AsyncExecutor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AsyncExecutor{
		store:   store,
		log:     logger.WithField("component", "effect_executor"),
		timeout: timeout,
	}
}

// Execute starts one goroutine per effect and returns immediately.
func (e *AsyncExecutor) Execute(ctx context.Context, effects []Effect) {
	for _, effect := range effects {
		if effect.Kind != EffectUpdateStatus {
			e.log.WithField("kind", effect.Kind).Warn("skipping unknown effect")
			continue
		}
		e.wg.Add(1)
		go e.run(context.WithoutCancel(ctx), effect)
	}
}

func (e *AsyncExecutor) run(ctx context.Context, effect Effect) {
	defer e.wg.Done()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	fields := logrus.Fields{
		"lesson_id":     effect.LessonID,
		"vocabulary_id": effect.VocabularyID,
		"status":        effect.Status,
	}
	if err := e.store.UpdateStatus(ctx, effect.LessonID, effect.VocabularyID, effect.Status); err != nil {
		e.failures.Add(1)
		e.log.WithFields(fields).WithError(err).Warn("update vocabulary status failed")
		return
	}
	e.log.WithFields(fields).Debug("vocabulary status updated")
}

// Wait blocks until every dispatched update has finished.
func (e *AsyncExecutor) Wait() {
	e.wg.Wait()
}

// Failures returns how many updates failed so far.
func (e *AsyncExecutor) Failures() int64 {
	return e.failures.Load()
}

// RecordingExecutor keeps effects in memory instead of performing them.
type RecordingExecutor struct {
	mu      sync.Mutex
	effects []Effect
}

func (r *RecordingExecutor) Execute(_ context.Context, effects []Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, effects...)
}

// Effects returns a copy of every effect recorded so far.
func (r *RecordingExecutor) Effects() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Effect(nil), r.effects...)
}
