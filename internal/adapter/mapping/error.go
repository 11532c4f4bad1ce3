package mapping

import (
	"errors"
	"net/http"

	"github.com/eslsoft/kovoc/internal/entity"
)

// ToHTTPStatus maps domain errors to HTTP status codes.
func ToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, entity.ErrInvalidLessonID),
		errors.Is(err, entity.ErrInvalidVocabularyID),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, entity.ErrInvalidLesson),
		errors.Is(err, entity.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrLessonNotFound), errors.Is(err, entity.ErrVocabularyNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrNetwork), errors.Is(err, entity.ErrMalformedResponse), errors.Is(err, entity.ErrUnexpectedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
