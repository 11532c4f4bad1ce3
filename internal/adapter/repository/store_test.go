package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/kovoc/internal/entity"
	"github.com/eslsoft/kovoc/internal/infrastructure/database"
	"github.com/eslsoft/kovoc/internal/repository"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, cleanup, err := database.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared&_fk=1")
	require.NoError(t, err)
	t.Cleanup(cleanup)
	require.NoError(t, database.Migrate(context.Background(), db, nil))
	return db
}

func seedLesson(t *testing.T, db *database.DB, id string, created time.Time, items ...entity.VocabularyItem) {
	t.Helper()
	lesson := &entity.Lesson{ID: id, Title: "Lesson " + id, Vocabulary: items}
	lesson.Normalize(created)
	_, err := NewLessonRepository(db).SaveLesson(context.Background(), lesson)
	require.NoError(t, err)
}

func item(id, word, meaning string) entity.VocabularyItem {
	return entity.VocabularyItem{ID: id, Word: word, Meaning: meaning}
}

func TestFetchDetailCreatesUnlearnedStatuses(t *testing.T) {
	db := newTestDB(t)
	seedLesson(t, db, "l1", time.Now(), item("v1", "사랑", "tình yêu"), item("v2", "물", "nước"))
	repo := NewProgressRepository(db, "alice")
	ctx := context.Background()

	detail, err := repo.FetchDetail(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "v1", detail.Items[0].Item.ID)
	assert.Equal(t, entity.StatusUnlearned, detail.Items[0].Status)
	assert.Nil(t, detail.Items[0].LastReviewedAt)
	assert.Zero(t, detail.ProgressPercent)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM vocabulary_statuses WHERE user_id = ?", "alice"))
	assert.Equal(t, 2, count)

	_, err = repo.FetchDetail(ctx, "l1")
	require.NoError(t, err)
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM vocabulary_statuses"))
	assert.Equal(t, 2, count, "second fetch must not duplicate rows")
}

func TestUpdateStatusUpsertsAndStampsReview(t *testing.T) {
	db := newTestDB(t)
	seedLesson(t, db, "l1", time.Now(), item("v1", "사랑", "tình yêu"), item("v2", "물", "nước"))
	now := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	repo := &progressRepository{db: db, userID: "alice", clock: func() time.Time { return now }}
	ctx := context.Background()

	require.NoError(t, repo.UpdateStatus(ctx, "l1", "v2", entity.StatusLearning))
	require.NoError(t, repo.UpdateStatus(ctx, "l1", "v2", entity.StatusMastered))

	detail, err := repo.FetchDetail(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusUnlearned, detail.Items[0].Status)
	assert.Equal(t, entity.StatusMastered, detail.Items[1].Status)
	require.NotNil(t, detail.Items[1].LastReviewedAt)
	assert.True(t, detail.Items[1].LastReviewedAt.Equal(now))
	assert.InDelta(t, 50, detail.ProgressPercent, 0.001)

	other, err := NewProgressRepository(db, "bob").FetchDetail(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusUnlearned, other.Items[1].Status, "statuses are per user")
}

func TestProgressRepositoryNotFound(t *testing.T) {
	db := newTestDB(t)
	seedLesson(t, db, "l1", time.Now(), item("v1", "사랑", "tình yêu"))
	repo := NewProgressRepository(db, "alice")
	ctx := context.Background()

	_, err := repo.FetchDetail(ctx, "missing")
	require.ErrorIs(t, err, entity.ErrLessonNotFound)
	require.ErrorIs(t, repo.UpdateStatus(ctx, "missing", "v1", entity.StatusLearning), entity.ErrLessonNotFound)
	require.ErrorIs(t, repo.UpdateStatus(ctx, "l1", "v9", entity.StatusLearning), entity.ErrVocabularyNotFound)
	require.ErrorIs(t, repo.UpdateStatus(ctx, "l1", "v1", "bogus"), entity.ErrInvalidStatus)
}

func TestSaveLessonReplacesVocabulary(t *testing.T) {
	db := newTestDB(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedLesson(t, db, "l1", created, item("v1", "사랑", "tình yêu"), item("v2", "물", "nước"))
	ctx := context.Background()
	progress := NewProgressRepository(db, "alice")
	require.NoError(t, progress.UpdateStatus(ctx, "l1", "v2", entity.StatusLearning))

	updated := &entity.Lesson{
		ID:         "l1",
		Title:      "Renamed",
		Vocabulary: []entity.VocabularyItem{item("v3", "학교", "trường học"), item("v1", "사랑", "yêu")},
	}
	updated.Normalize(created.Add(time.Hour))
	updated.CreatedAt = created.Add(time.Hour)

	saved, err := NewLessonRepository(db).SaveLesson(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", saved.Title)
	assert.True(t, saved.CreatedAt.Equal(created), "created_at is immutable")
	assert.True(t, saved.UpdatedAt.Equal(created.Add(time.Hour)))
	require.Len(t, saved.Vocabulary, 2)
	assert.Equal(t, "v3", saved.Vocabulary[0].ID)
	assert.Equal(t, "yêu", saved.Vocabulary[1].Meaning)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM vocabulary_statuses WHERE vocabulary_id = ?", "v2"))
	assert.Zero(t, count, "statuses of removed items are deleted")
}

func TestListLessonsFilterOrderAndPaging(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedLesson(t, db, "a", base, item("v1", "사랑", "tình yêu"))
	seedLesson(t, db, "b", base.Add(time.Hour), item("v1", "물", "nước"))
	seedLesson(t, db, "c", base.Add(2*time.Hour), item("v1", "책", "sách"))
	repo := NewLessonRepository(db)
	ctx := context.Background()

	lessons, total, err := repo.ListLessons(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"c", "b", "a"}, lessonIDs(lessons))

	lessons, total, err = repo.ListLessons(ctx, &repository.ListLessonQuery{
		Pagination:  repository.Pagination{PageNo: 2, PageSize: 1},
		FilterOrder: repository.FilterOrder{Filter: `id != "b"`, OrderBy: "id asc"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"c"}, lessonIDs(lessons))

	_, _, err = repo.ListLessons(ctx, &repository.ListLessonQuery{FilterOrder: repository.FilterOrder{OrderBy: "word"}})
	require.ErrorIs(t, err, entity.ErrInvalidFilter)
	_, _, err = repo.ListLessons(ctx, &repository.ListLessonQuery{FilterOrder: repository.FilterOrder{Filter: `level > 1`}})
	require.ErrorIs(t, err, entity.ErrInvalidFilter)
}

func TestGetLessonNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := NewLessonRepository(db).GetLesson(context.Background(), "nope")
	require.ErrorIs(t, err, entity.ErrLessonNotFound)
}

func lessonIDs(lessons []entity.Lesson) []string {
	ids := make([]string, len(lessons))
	for i, lesson := range lessons {
		ids[i] = lesson.ID
	}
	return ids
}
