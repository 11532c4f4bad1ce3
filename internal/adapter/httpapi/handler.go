// Package httpapi serves the lesson-progress JSON API from the local store.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kovoc/internal/adapter/mapping"
	"github.com/eslsoft/kovoc/internal/entity"
	"github.com/eslsoft/kovoc/internal/repository"
	"github.com/eslsoft/kovoc/internal/usecase"
)

const maxRequestBody = 1 << 20

// Handler exposes progress and lesson use cases over HTTP.
type Handler struct {
	progress usecase.ProgressUsecase
	lessons  usecase.LessonUsecase
	log      logrus.FieldLogger
}

// NewHandler wires the use cases.
func NewHandler(progress usecase.ProgressUsecase, lessons usecase.LessonUsecase, logger logrus.FieldLogger) *Handler {
	return &Handler{
		progress: progress,
		lessons:  lessons,
		log:      logger.WithField("component", "httpapi"),
	}
}

// NewRouter registers the API routes under /api plus /healthz.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	// Routes stay on the root router: a method mismatch inside a subrouter
	// never reaches MethodNotAllowedHandler.
	r.HandleFunc("/api/lessons", h.listLessons).Methods(http.MethodGet)
	r.HandleFunc("/api/lessons/{lessonId}", h.getLesson).Methods(http.MethodGet)
	r.HandleFunc("/api/lesson-progress/{lessonId}", h.getProgress).Methods(http.MethodGet)
	r.HandleFunc("/api/lesson-progress/{lessonId}/vocabulary", h.listVocabulary).Methods(http.MethodGet)
	r.HandleFunc("/api/lesson-progress/{lessonId}/vocabulary/{vocabularyId}", h.updateStatus).Methods(http.MethodPatch)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listLessons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &repository.ListLessonQuery{
		FilterOrder: repository.FilterOrder{Filter: q.Get("filter"), OrderBy: q.Get("order_by")},
	}
	var err error
	if query.PageNo, err = parseInt32(q.Get("page")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid page")
		return
	}
	if query.PageSize, err = parseInt32(q.Get("page_size")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid page_size")
		return
	}

	lessons, total, err := h.lessons.ListLessons(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dto := mapping.LessonListDTO{Total: total, Lessons: make([]mapping.LessonDTO, 0, len(lessons))}
	for _, lesson := range lessons {
		dto.Lessons = append(dto.Lessons, mapping.ToLessonDTO(lesson))
	}
	writeData(w, http.StatusOK, dto)
}

func (h *Handler) getLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.lessons.GetLesson(r.Context(), mux.Vars(r)["lessonId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, mapping.ToLessonDTO(*lesson))
}

func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	detail, err := h.progress.GetDetail(r.Context(), mux.Vars(r)["lessonId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, mapping.ToProgressDTO(detail))
}

func (h *Handler) listVocabulary(w http.ResponseWriter, r *http.Request) {
	items, err := h.progress.ListVocabulary(r.Context(), mux.Vars(r)["lessonId"], r.URL.Query().Get("filter"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, mapping.ToVocabularyStatusDTOs(items))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var body mapping.StatusUpdateDTO
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := entity.ParseMasteryStatus(body.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.progress.UpdateStatus(r.Context(), vars["lessonId"], vars["vocabularyId"], status); err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, mapping.StatusUpdateDTO{Status: string(status)})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := mapping.ToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeError(w, code, err.Error())
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, mapping.Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, mapping.Envelope{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func parseInt32(raw string) (int32, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative value")
	}
	return int32(n), nil
}
