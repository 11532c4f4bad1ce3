package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/eslsoft/kovoc/internal/entity"
	"github.com/eslsoft/kovoc/internal/infrastructure/database"
	"github.com/eslsoft/kovoc/internal/repository"
	"github.com/eslsoft/kovoc/pkg/filterexpr"
)

var lessonFilterFields = filterexpr.Fields{
	"id":       filterexpr.KindString,
	"title":    filterexpr.KindString,
	"language": filterexpr.KindString,
	"created":  filterexpr.KindTimestamp,
	"updated":  filterexpr.KindTimestamp,
}

var lessonOrderColumns = map[string]string{
	"id":         "id",
	"title":      "title",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type lessonRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Language    string    `db:"language"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type vocabularyRow struct {
	ID            string `db:"id"`
	Word          string `db:"word"`
	Meaning       string `db:"meaning"`
	Pronunciation string `db:"pronunciation"`
}

type lessonRepository struct{ db *database.DB }

// NewLessonRepository constructs the local lesson store.
func NewLessonRepository(db *database.DB) repository.LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) SaveLesson(ctx context.Context, lesson *entity.Lesson) (*entity.Lesson, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lesson == nil || lesson.ID == "" {
		return nil, entity.ErrInvalidLesson
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	if err := r.upsertLesson(ctx, tx, lesson); err != nil {
		return nil, err
	}
	if err := r.replaceVocabulary(ctx, tx, lesson); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lesson: %w", err)
	}
	commit = true
	return r.GetLesson(ctx, lesson.ID)
}

func (r *lessonRepository) GetLesson(ctx context.Context, id string) (*entity.Lesson, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := r.db.Builder()
	query, args := b.Select("id", "title", "description", "language", "created_at", "updated_at").
		From(b.Table(database.LessonsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	var row lessonRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLessonNotFound
		}
		return nil, fmt.Errorf("get lesson: %w", err)
	}

	query, args = b.Select("id", "word", "meaning", "pronunciation").
		From(b.Table(database.VocabularyItemsTable.Name)).
		Where(entsql.EQ("lesson_id", id)).
		OrderBy("position", "id").
		Query()
	var items []vocabularyRow
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list lesson vocabulary: %w", err)
	}

	lesson := mapLessonRow(row)
	lesson.Vocabulary = lo.Map(items, func(item vocabularyRow, _ int) entity.VocabularyItem {
		return entity.VocabularyItem{
			ID:            item.ID,
			Word:          item.Word,
			Meaning:       item.Meaning,
			Pronunciation: item.Pronunciation,
		}
	})
	return &lesson, nil
}

func (r *lessonRepository) ListLessons(ctx context.Context, query *repository.ListLessonQuery) ([]entity.Lesson, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if query == nil {
		query = &repository.ListLessonQuery{}
	}
	predicate, err := filterexpr.Compile(query.GetFilter(), lessonFilterFields)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}
	orderBy, err := lessonOrder(query.GetOrderBy())
	if err != nil {
		return nil, 0, err
	}

	b := r.db.Builder()
	sel := b.Select("id", "title", "description", "language", "created_at", "updated_at").
		From(b.Table(database.LessonsTable.Name)).
		OrderBy(orderBy...)
	stmt, args := sel.Query()
	var rows []lessonRow
	if err := r.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	lessons := make([]entity.Lesson, 0, len(rows))
	for _, row := range rows {
		ok, err := predicate.Match(map[string]any{
			"id":       row.ID,
			"title":    row.Title,
			"language": row.Language,
			"created":  row.CreatedAt,
			"updated":  row.UpdatedAt,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
		}
		if ok {
			lessons = append(lessons, mapLessonRow(row))
		}
	}

	total := int64(len(lessons))
	if query.PageSize > 0 {
		offset := int(query.Offset())
		if offset >= len(lessons) {
			return []entity.Lesson{}, total, nil
		}
		end := min(offset+int(query.PageSize), len(lessons))
		lessons = lessons[offset:end]
	}
	return lessons, total, nil
}

func (r *lessonRepository) upsertLesson(ctx context.Context, tx *sqlx.Tx, lesson *entity.Lesson) error {
	query, args := r.db.Builder().
		Insert(database.LessonsTable.Name).
		Columns("id", "title", "description", "language", "created_at", "updated_at").
		Values(lesson.ID, lesson.Title, lesson.Description, lesson.Language.CodeOrDefault(), lesson.CreatedAt.UTC(), lesson.UpdatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("title")
				u.SetExcluded("description")
				u.SetExcluded("language")
				u.SetExcluded("updated_at")
			}),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert lesson: %w", err)
	}
	return nil
}

// replaceVocabulary upserts the lesson's items and removes items no longer
// present. Statuses of removed items are dropped by the cascade.
func (r *lessonRepository) replaceVocabulary(ctx context.Context, tx *sqlx.Tx, lesson *entity.Lesson) error {
	b := r.db.Builder()
	ids := lo.Map(lesson.Vocabulary, func(item entity.VocabularyItem, _ int) string { return item.ID })

	del := b.Delete(database.VocabularyItemsTable.Name).Where(entsql.EQ("lesson_id", lesson.ID))
	if len(ids) > 0 {
		del = b.Delete(database.VocabularyItemsTable.Name).Where(entsql.And(
			entsql.EQ("lesson_id", lesson.ID),
			entsql.NotIn("id", lo.ToAnySlice(ids)...),
		))
	}
	query, args := del.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove stale vocabulary: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	insert := b.Insert(database.VocabularyItemsTable.Name).
		Columns("lesson_id", "id", "position", "word", "meaning", "pronunciation")
	for i, item := range lesson.Vocabulary {
		insert.Values(lesson.ID, item.ID, i, item.Word, item.Meaning, item.Pronunciation)
	}
	query, args = insert.OnConflict(
		entsql.ConflictColumns("lesson_id", "id"),
		entsql.ResolveWith(func(u *entsql.UpdateSet) {
			u.SetExcluded("position")
			u.SetExcluded("word")
			u.SetExcluded("meaning")
			u.SetExcluded("pronunciation")
		}),
	).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert vocabulary: %w", err)
	}
	return nil
}

func lessonOrder(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{entsql.Desc("created_at"), "id"}, nil
	}
	var order []string
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Fields(strings.ToLower(part))
		if len(fields) == 0 || len(fields) > 2 {
			return nil, fmt.Errorf("%w: invalid order clause %q", entity.ErrInvalidFilter, part)
		}
		column, ok := lessonOrderColumns[fields[0]]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported order field %q", entity.ErrInvalidFilter, fields[0])
		}
		switch {
		case len(fields) == 1 || fields[1] == "asc":
			order = append(order, entsql.Asc(column))
		case fields[1] == "desc":
			order = append(order, entsql.Desc(column))
		default:
			return nil, fmt.Errorf("%w: invalid order direction %q", entity.ErrInvalidFilter, fields[1])
		}
	}
	return append(order, "id"), nil
}

func mapLessonRow(row lessonRow) entity.Lesson {
	return entity.Lesson{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Language:    entity.NormalizeLanguage(entity.Language(row.Language)),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}
