package entity

import (
	"strings"
	"time"
)

// Lesson is a named unit of content. Only its vocabulary is used by learning sessions.
type Lesson struct {
	ID          string
	Title       string
	Description string
	Language    Language
	Vocabulary  []VocabularyItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize ensures defaults & constraints before persistence.
func (l *Lesson) Normalize(now time.Time) {
	l.ID = strings.TrimSpace(l.ID)
	l.Title = strings.TrimSpace(l.Title)
	l.Description = strings.TrimSpace(l.Description)
	l.Language = NormalizeLanguage(l.Language)
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	if l.Vocabulary == nil {
		l.Vocabulary = []VocabularyItem{}
	}
	for i := range l.Vocabulary {
		item := &l.Vocabulary[i]
		item.ID = strings.TrimSpace(item.ID)
		item.Word = strings.TrimSpace(item.Word)
		item.Meaning = strings.TrimSpace(item.Meaning)
		item.Pronunciation = strings.TrimSpace(item.Pronunciation)
	}
}
