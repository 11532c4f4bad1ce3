package mapping

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/kovoc/internal/entity"
)

// Envelope wraps every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type VocabularyDTO struct {
	ID            string `json:"id"`
	Word          string `json:"word"`
	Meaning       string `json:"meaning"`
	Pronunciation string `json:"pronunciation,omitempty"`
}

type VocabularyStatusDTO struct {
	Vocabulary   VocabularyDTO `json:"vocabulary"`
	Status       string        `json:"status"`
	LastReviewed *time.Time    `json:"lastReviewed"`
}

type ProgressDTO struct {
	LessonID     string                `json:"lessonId"`
	Progress     float64               `json:"progress"`
	Vocabularies []VocabularyStatusDTO `json:"vocabularies"`
}

type StatusUpdateDTO struct {
	Status string `json:"status"`
}

type LessonDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Vocabulary []VocabularyDTO `json:"vocabulary,omitempty"`
}

type LessonListDTO struct {
	Lessons []LessonDTO `json:"lessons"`
	Total   int64       `json:"total"`
}

func ToVocabularyDTO(item entity.VocabularyItem) VocabularyDTO {
	return VocabularyDTO{
		ID:            item.ID,
		Word:          item.Word,
		Meaning:       item.Meaning,
		Pronunciation: item.Pronunciation,
	}
}

func ToVocabularyStatusDTOs(items []entity.VocabularyStatus) []VocabularyStatusDTO {
	return lo.Map(items, func(item entity.VocabularyStatus, _ int) VocabularyStatusDTO {
		return VocabularyStatusDTO{
			Vocabulary:   ToVocabularyDTO(item.Item),
			Status:       string(item.Status),
			LastReviewed: item.LastReviewedAt,
		}
	})
}

func ToProgressDTO(in *entity.LessonProgress) ProgressDTO {
	return ProgressDTO{
		LessonID:     in.LessonID,
		Progress:     in.ProgressPercent,
		Vocabularies: ToVocabularyStatusDTOs(in.Items),
	}
}

func ToLessonDTO(in entity.Lesson) LessonDTO {
	return LessonDTO{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Language:    in.Language.CodeOrDefault(),
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
		Vocabulary:  lo.Map(in.Vocabulary, func(item entity.VocabularyItem, _ int) VocabularyDTO { return ToVocabularyDTO(item) }),
	}
}
