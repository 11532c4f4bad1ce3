package entity

import (
	"strings"
	"time"
)

// VocabularyItem is a single word/phrase pair of a lesson. Word is the
// source-language (Korean) side, Meaning the target-language (Vietnamese) side.
type VocabularyItem struct {
	ID            string
	Word          string
	Meaning       string
	Pronunciation string
}

// Validate reports whether the item carries the fields a session needs.
func (v VocabularyItem) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return ErrInvalidVocabularyID
	}
	if strings.TrimSpace(v.Word) == "" || strings.TrimSpace(v.Meaning) == "" {
		return ErrInvalidLesson
	}
	return nil
}

// MasteryStatus is the per-user, per-item progress marker.
type MasteryStatus string

const (
	StatusUnlearned MasteryStatus = "unlearned"
	StatusLearning  MasteryStatus = "learning"
	StatusMastered  MasteryStatus = "mastered"
)

// ParseMasteryStatus converts a raw value into a MasteryStatus.
func ParseMasteryStatus(raw string) (MasteryStatus, error) {
	status := MasteryStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// IsValid reports whether s is one of the known statuses.
func (s MasteryStatus) IsValid() bool {
	switch s {
	case StatusUnlearned, StatusLearning, StatusMastered:
		return true
	default:
		return false
	}
}

// Rank orders statuses: unlearned < learning < mastered. Unknown values rank -1.
func (s MasteryStatus) Rank() int {
	switch s {
	case StatusUnlearned:
		return 0
	case StatusLearning:
		return 1
	case StatusMastered:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether a learning session may move s to next.
// Status never moves backwards; re-asserting the current status is allowed.
func (s MasteryStatus) CanTransitionTo(next MasteryStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	return next.Rank() >= s.Rank()
}

// NeedsLearning reports whether an item with this status enters a session queue.
func (s MasteryStatus) NeedsLearning() bool {
	return s == StatusUnlearned || s == StatusLearning
}

// VocabularyStatus binds an item to its mastery status for a (user, lesson) pair.
type VocabularyStatus struct {
	Item           VocabularyItem
	Status         MasteryStatus
	LastReviewedAt *time.Time
}

// WithStatus returns a copy carrying the new status and review time.
func (vs VocabularyStatus) WithStatus(status MasteryStatus, at time.Time) VocabularyStatus {
	reviewed := at
	vs.Status = status
	vs.LastReviewedAt = &reviewed
	return vs
}

// StatusCounts aggregates statuses of a lesson.
type StatusCounts struct {
	Unlearned int
	Learning  int
	Mastered  int
	Total     int
}

// LessonProgress is the progress detail of one lesson for the current user.
type LessonProgress struct {
	LessonID        string
	Items           []VocabularyStatus
	ProgressPercent float64
}

// Counts tallies item statuses. Items with an unknown status count as unlearned.
func (p *LessonProgress) Counts() StatusCounts {
	var counts StatusCounts
	if p == nil {
		return counts
	}
	for _, item := range p.Items {
		switch item.Status {
		case StatusMastered:
			counts.Mastered++
		case StatusLearning:
			counts.Learning++
		default:
			counts.Unlearned++
		}
	}
	counts.Total = len(p.Items)
	return counts
}

// ComputePercent returns the share of mastered items in percent.
func (p *LessonProgress) ComputePercent() float64 {
	counts := p.Counts()
	if counts.Total == 0 {
		return 0
	}
	return float64(counts.Mastered) * 100 / float64(counts.Total)
}
