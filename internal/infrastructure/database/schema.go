package database

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// LessonsColumns holds the columns for the "lessons" table.
	LessonsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 128},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "language", Type: field.TypeString, Size: 16, Default: "ko"},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// LessonsTable holds the schema information for the "lessons" table.
	LessonsTable = &schema.Table{
		Name:       "lessons",
		Columns:    LessonsColumns,
		PrimaryKey: []*schema.Column{LessonsColumns[0]},
	}

	// VocabularyItemsColumns holds the columns for the "vocabulary_items" table.
	VocabularyItemsColumns = []*schema.Column{
		{Name: "lesson_id", Type: field.TypeString, Size: 128},
		{Name: "id", Type: field.TypeString, Size: 128},
		{Name: "position", Type: field.TypeInt, Default: 0},
		{Name: "word", Type: field.TypeString},
		{Name: "meaning", Type: field.TypeString},
		{Name: "pronunciation", Type: field.TypeString, Default: ""},
	}
	// VocabularyItemsTable holds the schema information for the "vocabulary_items" table.
	VocabularyItemsTable = &schema.Table{
		Name:       "vocabulary_items",
		Columns:    VocabularyItemsColumns,
		PrimaryKey: []*schema.Column{VocabularyItemsColumns[0], VocabularyItemsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "vocabulary_items_lessons_vocabulary",
				Columns:    []*schema.Column{VocabularyItemsColumns[0]},
				RefColumns: []*schema.Column{LessonsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "vocabularyitem_lesson_id_position",
				Unique:  false,
				Columns: []*schema.Column{VocabularyItemsColumns[0], VocabularyItemsColumns[2]},
			},
		},
	}

	// VocabularyStatusesColumns holds the columns for the "vocabulary_statuses" table.
	VocabularyStatusesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Size: 128},
		{Name: "lesson_id", Type: field.TypeString, Size: 128},
		{Name: "vocabulary_id", Type: field.TypeString, Size: 128},
		{Name: "status", Type: field.TypeString, Size: 16, Default: "unlearned"},
		{Name: "last_reviewed_at", Type: field.TypeTime, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// VocabularyStatusesTable holds the schema information for the "vocabulary_statuses" table.
	VocabularyStatusesTable = &schema.Table{
		Name:    "vocabulary_statuses",
		Columns: VocabularyStatusesColumns,
		PrimaryKey: []*schema.Column{
			VocabularyStatusesColumns[0],
			VocabularyStatusesColumns[1],
			VocabularyStatusesColumns[2],
		},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "vocabulary_statuses_vocabulary_items_statuses",
				Columns:    []*schema.Column{VocabularyStatusesColumns[1], VocabularyStatusesColumns[2]},
				RefColumns: []*schema.Column{VocabularyItemsColumns[0], VocabularyItemsColumns[1]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "vocabularystatus_user_id_status",
				Unique:  false,
				Columns: []*schema.Column{VocabularyStatusesColumns[0], VocabularyStatusesColumns[3]},
			},
		},
	}

	// Tables holds all the tables in the schema, in dependency order.
	Tables = []*schema.Table{
		LessonsTable,
		VocabularyItemsTable,
		VocabularyStatusesTable,
	}
)

func init() {
	VocabularyItemsTable.ForeignKeys[0].RefTable = LessonsTable
	VocabularyStatusesTable.ForeignKeys[0].RefTable = VocabularyItemsTable
}
