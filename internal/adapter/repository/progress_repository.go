package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/samber/lo"

	"github.com/eslsoft/kovoc/internal/entity"
	"github.com/eslsoft/kovoc/internal/infrastructure/database"
	"github.com/eslsoft/kovoc/internal/repository"
)

type progressRow struct {
	ID             string         `db:"id"`
	Word           string         `db:"word"`
	Meaning        string         `db:"meaning"`
	Pronunciation  string         `db:"pronunciation"`
	Status         sql.NullString `db:"status"`
	LastReviewedAt sql.NullTime   `db:"last_reviewed_at"`
}

type progressRepository struct {
	db     *database.DB
	userID string
	clock  func() time.Time
}

// NewProgressRepository constructs the local progress store scoped to userID.
func NewProgressRepository(db *database.DB, userID string) repository.ProgressRepository {
	return &progressRepository{db: db, userID: userID, clock: time.Now}
}

func (r *progressRepository) FetchDetail(ctx context.Context, lessonID string) (*entity.LessonProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := lessonExists(ctx, r.db, lessonID); err != nil {
		return nil, err
	}

	rows, err := r.selectProgress(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	missing := lo.FilterMap(rows, func(row progressRow, _ int) (string, bool) {
		return row.ID, !row.Status.Valid
	})
	if len(missing) > 0 {
		if err := r.createUnlearned(ctx, lessonID, missing); err != nil {
			return nil, err
		}
	}

	detail := &entity.LessonProgress{
		LessonID: lessonID,
		Items:    lo.Map(rows, func(row progressRow, _ int) entity.VocabularyStatus { return mapProgressRow(row) }),
	}
	detail.ProgressPercent = detail.ComputePercent()
	return detail, nil
}

func (r *progressRepository) UpdateStatus(ctx context.Context, lessonID, vocabularyID string, status entity.MasteryStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !status.IsValid() {
		return entity.ErrInvalidStatus
	}
	if err := vocabularyExists(ctx, r.db, lessonID, vocabularyID); err != nil {
		return err
	}

	now := r.clock().UTC()
	query, args := r.db.Builder().
		Insert(database.VocabularyStatusesTable.Name).
		Columns("user_id", "lesson_id", "vocabulary_id", "status", "last_reviewed_at", "updated_at").
		Values(r.userID, lessonID, vocabularyID, string(status), now, now).
		OnConflict(
			entsql.ConflictColumns("user_id", "lesson_id", "vocabulary_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("status")
				u.SetExcluded("last_reviewed_at")
				u.SetExcluded("updated_at")
			}),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update vocabulary status: %w", err)
	}
	return nil
}

func (r *progressRepository) selectProgress(ctx context.Context, lessonID string) ([]progressRow, error) {
	b := r.db.Builder()
	items := b.Table(database.VocabularyItemsTable.Name).As("v")
	statuses := b.Table(database.VocabularyStatusesTable.Name).As("s")
	query, args := b.Select(
		items.C("id"),
		items.C("word"),
		items.C("meaning"),
		items.C("pronunciation"),
		statuses.C("status"),
		statuses.C("last_reviewed_at"),
	).
		From(items).
		LeftJoin(statuses).
		OnP(entsql.And(
			entsql.ColumnsEQ(items.C("lesson_id"), statuses.C("lesson_id")),
			entsql.ColumnsEQ(items.C("id"), statuses.C("vocabulary_id")),
			entsql.EQ(statuses.C("user_id"), r.userID),
		)).
		Where(entsql.EQ(items.C("lesson_id"), lessonID)).
		OrderBy(items.C("position"), items.C("id")).
		Query()

	var rows []progressRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select lesson progress: %w", err)
	}
	return rows, nil
}

// createUnlearned stores the implicit unlearned status so later reads and
// exports see one row per item.
func (r *progressRepository) createUnlearned(ctx context.Context, lessonID string, vocabularyIDs []string) error {
	now := r.clock().UTC()
	insert := r.db.Builder().
		Insert(database.VocabularyStatusesTable.Name).
		Columns("user_id", "lesson_id", "vocabulary_id", "status", "updated_at")
	for _, id := range vocabularyIDs {
		insert.Values(r.userID, lessonID, id, string(entity.StatusUnlearned), now)
	}
	query, args := insert.OnConflict(entsql.DoNothing()).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create unlearned statuses: %w", err)
	}
	return nil
}

func mapProgressRow(row progressRow) entity.VocabularyStatus {
	status := entity.StatusUnlearned
	if row.Status.Valid {
		if parsed, err := entity.ParseMasteryStatus(row.Status.String); err == nil {
			status = parsed
		}
	}
	vs := entity.VocabularyStatus{
		Item: entity.VocabularyItem{
			ID:            row.ID,
			Word:          row.Word,
			Meaning:       row.Meaning,
			Pronunciation: row.Pronunciation,
		},
		Status: status,
	}
	if row.LastReviewedAt.Valid {
		reviewed := row.LastReviewedAt.Time.UTC()
		vs.LastReviewedAt = &reviewed
	}
	return vs
}

func lessonExists(ctx context.Context, db *database.DB, lessonID string) error {
	b := db.Builder()
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(database.LessonsTable.Name)).
		Where(entsql.EQ("id", lessonID)).
		Query()
	var count int
	if err := db.GetContext(ctx, &count, query, args...); err != nil {
		return fmt.Errorf("check lesson: %w", err)
	}
	if count == 0 {
		return entity.ErrLessonNotFound
	}
	return nil
}

func vocabularyExists(ctx context.Context, db *database.DB, lessonID, vocabularyID string) error {
	b := db.Builder()
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(database.VocabularyItemsTable.Name)).
		Where(entsql.And(entsql.EQ("lesson_id", lessonID), entsql.EQ("id", vocabularyID))).
		Query()
	var count int
	err := db.GetContext(ctx, &count, query, args...)
	switch {
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check vocabulary item: %w", err)
	case count > 0:
		return nil
	}
	if err := lessonExists(ctx, db, lessonID); err != nil {
		return err
	}
	return entity.ErrVocabularyNotFound
}
