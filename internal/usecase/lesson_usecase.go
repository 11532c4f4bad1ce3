package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/kovoc/internal/entity"
	"github.com/eslsoft/kovoc/internal/repository"
)

// LessonUsecase manages lesson content held in the local store.
type LessonUsecase interface {
	ImportLesson(ctx context.Context, lesson *entity.Lesson) (*entity.Lesson, error)
	GetLesson(ctx context.Context, id string) (*entity.Lesson, error)
	ListLessons(ctx context.Context, query *repository.ListLessonQuery) ([]entity.Lesson, int64, error)
}

// NewLessonUsecase wires the repository with default behaviour.
func NewLessonUsecase(repo repository.LessonRepository) LessonUsecase {
	return &lessonUsecase{
		repo:  repo,
		clock: time.Now,
	}
}

type lessonUsecase struct {
	repo  repository.LessonRepository
	clock func() time.Time
}

func (u *lessonUsecase) ImportLesson(ctx context.Context, lesson *entity.Lesson) (*entity.Lesson, error) {
	if lesson == nil {
		return nil, entity.ErrInvalidLesson
	}

	normalized := *lesson
	normalized.Vocabulary = append([]entity.VocabularyItem(nil), lesson.Vocabulary...)
	normalized.Normalize(u.clock())
	if _, err := normalizeLessonID(normalized.ID); err != nil {
		return nil, err
	}
	if normalized.Title == "" {
		normalized.Title = normalized.ID
	}

	for i, item := range normalized.Vocabulary {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("vocabulary #%d (%q): %w", i+1, item.ID, err)
		}
	}
	// Later rows override earlier rows with the same id; first position is kept.
	latest := lo.KeyBy(normalized.Vocabulary, func(item entity.VocabularyItem) string { return item.ID })
	unique := lo.UniqBy(normalized.Vocabulary, func(item entity.VocabularyItem) string { return item.ID })
	normalized.Vocabulary = lo.Map(unique, func(item entity.VocabularyItem, _ int) entity.VocabularyItem {
		return latest[item.ID]
	})
	if len(normalized.Vocabulary) == 0 {
		return nil, fmt.Errorf("lesson %q has no vocabulary: %w", normalized.ID, entity.ErrInvalidLesson)
	}

	return u.repo.SaveLesson(ctx, &normalized)
}

func (u *lessonUsecase) GetLesson(ctx context.Context, id string) (*entity.Lesson, error) {
	id, err := normalizeLessonID(id)
	if err != nil {
		return nil, err
	}
	return u.repo.GetLesson(ctx, id)
}

func (u *lessonUsecase) ListLessons(ctx context.Context, query *repository.ListLessonQuery) ([]entity.Lesson, int64, error) {
	if query == nil {
		query = &repository.ListLessonQuery{}
	}
	if query.PageSize <= 0 {
		query.PageSize = 50
	}
	return u.repo.ListLessons(ctx, query)
}
