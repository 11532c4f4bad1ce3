package repository

import (
	"context"

	"github.com/eslsoft/kovoc/internal/entity"
)

// ProgressRepository is the progress store consumed by learning sessions.
// Implementations scope every call to the current user.
type ProgressRepository interface {
	FetchDetail(ctx context.Context, lessonID string) (*entity.LessonProgress, error)
	UpdateStatus(ctx context.Context, lessonID, vocabularyID string, status entity.MasteryStatus) error
}
