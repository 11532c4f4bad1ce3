package database

import (
	"context"
	"strings"
	"testing"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestMigrateCreatesTablesIdempotently(t *testing.T) {
	db, cleanup, err := Open("sqlite3", "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer cleanup()

	logger, hook := logtest.NewNullLogger()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db, logger); err != nil {
			t.Fatalf("Migrate run %d returned error: %v", i+1, err)
		}
	}
	if len(hook.AllEntries()) != 2 {
		t.Fatalf("expected one log entry per run, got %d", len(hook.AllEntries()))
	}

	for _, table := range Tables {
		var count int
		query := "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
		if err := db.GetContext(ctx, &count, query, table.Name); err != nil {
			t.Fatalf("inspect %s: %v", table.Name, err)
		}
		if count != 1 {
			t.Fatalf("table %s not created", table.Name)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, _, err := Open("mysql", "root@/kovoc"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestBuilderUsesDialectPlaceholders(t *testing.T) {
	db := &DB{Dialect: dialect.Postgres}
	b := db.Builder()
	query, args := b.Select("id").From(b.Table("lessons")).Where(entsql.EQ("id", "l1")).Query()
	if !strings.Contains(query, `FROM "lessons"`) || !strings.Contains(query, "$1") || len(args) != 1 {
		t.Fatalf("unexpected query %q %v", query, args)
	}
}
