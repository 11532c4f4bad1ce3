package repository

import (
	"context"

	"github.com/eslsoft/kovoc/internal/entity"
)

// ListLessonQuery holds parameters for listing lessons.
type ListLessonQuery struct {
	Pagination
	FilterOrder
}

// LessonRepository persists lesson content in the local store.
type LessonRepository interface {
	SaveLesson(ctx context.Context, lesson *entity.Lesson) (*entity.Lesson, error)
	GetLesson(ctx context.Context, id string) (*entity.Lesson, error)
	ListLessons(ctx context.Context, query *ListLessonQuery) ([]entity.Lesson, int64, error)
}
