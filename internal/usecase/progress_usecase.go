package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/kovoc/internal/entity"
	"github.com/eslsoft/kovoc/internal/repository"
	"github.com/eslsoft/kovoc/pkg/filterexpr"
)

// VocabularyFilterFields lists the variables a vocabulary filter may reference.
var VocabularyFilterFields = filterexpr.Fields{
	"id":            filterexpr.KindString,
	"word":          filterexpr.KindString,
	"meaning":       filterexpr.KindString,
	"pronunciation": filterexpr.KindString,
	"status":        filterexpr.KindString,
	"reviewed":      filterexpr.KindBool,
}

// ProgressSummary aggregates lesson progress for display.
type ProgressSummary struct {
	LessonID string
	Counts   entity.StatusCounts
	Percent  float64
}

// ProgressUsecase guards and forwards progress reads and writes to the store.
type ProgressUsecase interface {
	GetDetail(ctx context.Context, lessonID string) (*entity.LessonProgress, error)
	UpdateStatus(ctx context.Context, lessonID, vocabularyID string, status entity.MasteryStatus) error
	ListVocabulary(ctx context.Context, lessonID, filter string) ([]entity.VocabularyStatus, error)
	Summary(ctx context.Context, lessonID string) (*ProgressSummary, error)
}

// NewProgressUsecase wires the progress store.
func NewProgressUsecase(repo repository.ProgressRepository) ProgressUsecase {
	return &progressUsecase{repo: repo}
}

type progressUsecase struct {
	repo repository.ProgressRepository
}

func (u *progressUsecase) GetDetail(ctx context.Context, lessonID string) (*entity.LessonProgress, error) {
	id, err := normalizeLessonID(lessonID)
	if err != nil {
		return nil, err
	}
	detail, err := u.repo.FetchDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, entity.ErrLessonNotFound
	}
	if detail.LessonID == "" {
		detail.LessonID = id
	}
	if detail.ProgressPercent == 0 {
		detail.ProgressPercent = detail.ComputePercent()
	}
	return detail, nil
}

func (u *progressUsecase) UpdateStatus(ctx context.Context, lessonID, vocabularyID string, status entity.MasteryStatus) error {
	id, err := normalizeLessonID(lessonID)
	if err != nil {
		return err
	}
	vocabularyID = strings.TrimSpace(vocabularyID)
	if vocabularyID == "" {
		return entity.ErrInvalidVocabularyID
	}
	if !status.IsValid() {
		return entity.ErrInvalidStatus
	}
	return u.repo.UpdateStatus(ctx, id, vocabularyID, status)
}

func (u *progressUsecase) ListVocabulary(ctx context.Context, lessonID, filter string) ([]entity.VocabularyStatus, error) {
	predicate, err := filterexpr.Compile(filter, VocabularyFilterFields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}
	detail, err := u.GetDetail(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	result := make([]entity.VocabularyStatus, 0, len(detail.Items))
	for _, item := range detail.Items {
		ok, err := predicate.Match(vocabularyVars(item))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
		}
		if ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (u *progressUsecase) Summary(ctx context.Context, lessonID string) (*ProgressSummary, error) {
	detail, err := u.GetDetail(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	return &ProgressSummary{
		LessonID: detail.LessonID,
		Counts:   detail.Counts(),
		Percent:  detail.ProgressPercent,
	}, nil
}

func vocabularyVars(item entity.VocabularyStatus) map[string]any {
	return map[string]any{
		"id":            item.Item.ID,
		"word":          item.Item.Word,
		"meaning":       item.Item.Meaning,
		"pronunciation": item.Item.Pronunciation,
		"status":        string(item.Status),
		"reviewed":      item.LastReviewedAt != nil,
	}
}

var placeholderIDs = []string{"undefined", "null", "nil", "none"}

// normalizeLessonID rejects empty ids and unresolved route placeholders such
// as "[id]" or ":id" before any store call.
func normalizeLessonID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", entity.ErrInvalidLessonID
	}
	if lo.Contains(placeholderIDs, strings.ToLower(id)) {
		return "", entity.ErrInvalidLessonID
	}
	if strings.HasPrefix(id, "[") && strings.HasSuffix(id, "]") {
		return "", entity.ErrInvalidLessonID
	}
	if strings.HasPrefix(id, "{") && strings.HasSuffix(id, "}") {
		return "", entity.ErrInvalidLessonID
	}
	if strings.HasPrefix(id, ":") {
		return "", entity.ErrInvalidLessonID
	}
	return id, nil
}
