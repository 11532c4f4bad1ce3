package entity

import "errors"

// Domain errors for lessons, vocabulary progress and learning sessions.
var (
	ErrNetwork             = errors.New("network error")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrVocabularyNotFound  = errors.New("vocabulary item not found")
	ErrInvalidLessonID     = errors.New("invalid lesson ID")
	ErrInvalidVocabularyID = errors.New("invalid vocabulary ID")
	ErrInvalidStatus       = errors.New("invalid mastery status")
	ErrInvalidLesson       = errors.New("invalid lesson")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrUnexpectedResponse  = errors.New("unexpected response")
	ErrInvalidFilter       = errors.New("invalid filter expression")

	ErrSessionNotStarted   = errors.New("learning session not started")
	ErrSessionComplete     = errors.New("learning session already complete")
	ErrAwaitingAcknowledge = errors.New("incorrect answer must be acknowledged first")
	ErrNotAwaiting         = errors.New("no incorrect answer to acknowledge")
)
