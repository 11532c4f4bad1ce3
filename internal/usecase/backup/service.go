// Package backup dumps and restores the local progress store as NDJSON.
package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/eslsoft/kovoc/internal/infrastructure/database"
)

const (
	defaultBatchSize = 512
	formatVersion    = 1
)

var errNoTablesSelected = errors.New("backup: no tables selected")

// ProgressReporter receives per-table progress during export.
type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

type Service struct {
	db         *database.DB
	batchSize  int
	tables     []*schema.Table
	tableIndex map[string]*schema.Table
	schemaHash string
}

type Option func(*Service)

func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService constructs a backup service over the local store tables.
func NewService(db *database.DB, opts ...Option) (*Service, error) {
	if db == nil {
		return nil, errors.New("backup: database is required")
	}
	tables, err := schema.CopyTables(database.Tables)
	if err != nil {
		return nil, fmt.Errorf("copy schema tables: %w", err)
	}
	svc := &Service{
		db:         db,
		batchSize:  defaultBatchSize,
		tables:     tables,
		tableIndex: lo.KeyBy(tables, func(tbl *schema.Table) string { return tbl.Name }),
		schemaHash: computeSchemaHash(tables),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithTables restricts export to the provided table names.
func WithTables(tables []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	tables []string
}

// WithImportTables restricts import to the provided table names.
func WithImportTables(tables []string) ImportOption {
	return func(cfg *importConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	SchemaHash string         `json:"schema_hash,omitempty"`
	Tables     []string       `json:"tables,omitempty"`
	RowCounts  map[string]int `json:"row_counts,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	SchemaHash string          `json:"schema_hash"`
	Payload    json.RawMessage `json:"payload"`
}

// Export writes a meta record followed by one record per row.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	counts := make(map[string]int, len(tables))
	for _, tbl := range tables {
		count, err := s.countTableRows(ctx, tbl.Name)
		if err != nil {
			return fmt.Errorf("count table %s: %w", tbl.Name, err)
		}
		counts[tbl.Name] = count
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := time.Now().UTC()
	meta := record{
		Type:       "meta",
		Version:    formatVersion,
		ExportedAt: &now,
		SchemaHash: s.schemaHash,
		Tables:     tableNames(tables),
		RowCounts:  counts,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, tbl := range tables {
		reporter.StartTable(tbl.Name, counts[tbl.Name])
		if err := s.exportTable(ctx, tbl, reporter, writer); err != nil {
			return err
		}
		reporter.FinishTable(tbl.Name)
	}
	return writer.Flush()
}

// Import upserts every row of the selected tables inside one transaction.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) error {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}
	tableFilter := lo.KeyBy(tables, func(tbl *schema.Table) string { return tbl.Name })

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	br := bufio.NewReader(r)
	metaSeen := false
	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}

			switch rec.Type {
			case "meta":
				if rec.Version != formatVersion {
					return fmt.Errorf("backup: unsupported format version %d", rec.Version)
				}
				if rec.SchemaHash != "" && rec.SchemaHash != s.schemaHash {
					return errors.New("backup: schema hash mismatch")
				}
				metaSeen = true
			default:
				if !metaSeen {
					return errors.New("backup: missing meta record")
				}
				tbl, ok := tableFilter[rec.Type]
				if !ok {
					break
				}
				if len(rec.Payload) == 0 {
					return fmt.Errorf("backup: missing payload for table %s", rec.Type)
				}
				if err := s.importRow(ctx, tx, tbl, rec.Payload); err != nil {
					return err
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if !metaSeen {
		return errors.New("backup: missing meta record")
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	commit = true
	return nil
}

func (s *Service) exportTable(ctx context.Context, table *schema.Table, reporter ProgressReporter, w io.Writer) error {
	columns := columnNames(table)
	b := s.db.Builder()
	for offset := 0; ; offset += s.batchSize {
		query, args := b.Select(columns...).
			From(b.Table(table.Name)).
			OrderBy(primaryKeyNames(table)...).
			Limit(s.batchSize).
			Offset(offset).
			Query()
		rows, err := s.db.QueryxContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query %s: %w", table.Name, err)
		}

		rowCount := 0
		for rows.Next() {
			values, err := rows.SliceScan()
			if err != nil {
				rows.Close()
				return fmt.Errorf("scan %s: %w", table.Name, err)
			}
			payload, err := convertRow(table, columns, values)
			if err != nil {
				rows.Close()
				return err
			}
			if err := writeRecord(w, record{Type: table.Name, Payload: payload}); err != nil {
				rows.Close()
				return err
			}
			reporter.Increment(table.Name, 1)
			rowCount++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate %s: %w", table.Name, err)
		}
		rows.Close()
		if rowCount < s.batchSize {
			return nil
		}
	}
}

func (s *Service) importRow(ctx context.Context, tx *sqlx.Tx, table *schema.Table, payload json.RawMessage) error {
	values, err := decodePayload(table, payload)
	if err != nil {
		return fmt.Errorf("decode payload for %s: %w", table.Name, err)
	}

	cols := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for _, col := range table.Columns {
		val, ok := values[col.Name]
		if !ok {
			continue
		}
		if val == nil && !col.Nullable {
			if col.Default == nil {
				return fmt.Errorf("backup: missing required value for %s.%s", table.Name, col.Name)
			}
			val = col.Default
		}
		cols = append(cols, col.Name)
		args = append(args, val)
	}
	if len(cols) == 0 {
		return nil
	}

	query, queryArgs := s.db.Builder().
		Insert(table.Name).
		Columns(cols...).
		Values(args...).
		OnConflict(
			entsql.ConflictColumns(primaryKeyNames(table)...),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, queryArgs...); err != nil {
		return fmt.Errorf("insert into %s: %w", table.Name, err)
	}
	return nil
}

// selectTables keeps schema order so parents are restored before children.
func (s *Service) selectTables(requested []string) ([]*schema.Table, error) {
	if len(requested) == 0 {
		return append([]*schema.Table(nil), s.tables...), nil
	}
	set := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		n := strings.TrimSpace(strings.ToLower(name))
		if n == "" {
			continue
		}
		if _, ok := s.tableIndex[n]; !ok {
			return nil, fmt.Errorf("backup: unsupported table %q", name)
		}
		set[n] = struct{}{}
	}
	if len(set) == 0 {
		return nil, errNoTablesSelected
	}
	return lo.Filter(s.tables, func(tbl *schema.Table, _ int) bool {
		_, ok := set[tbl.Name]
		return ok
	}), nil
}

func (s *Service) countTableRows(ctx context.Context, table string) (int, error) {
	b := s.db.Builder()
	query, args := b.Select(entsql.Count("*")).From(b.Table(table)).Query()
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func convertRow(table *schema.Table, columns []string, values []any) (map[string]any, error) {
	result := make(map[string]any, len(columns))
	for idx, name := range columns {
		col := findColumn(table, name)
		if col == nil {
			return nil, fmt.Errorf("column %s not found in table %s", name, table.Name)
		}
		val, err := convertDBValue(col, values[idx])
		if err != nil {
			return nil, fmt.Errorf("convert %s.%s: %w", table.Name, name, err)
		}
		result[name] = val
	}
	return result, nil
}

func convertDBValue(col *schema.Column, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		if col.Type == field.TypeInt {
			return strconv.ParseInt(string(v), 10, 64)
		}
		return string(v), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	}
	if col.Type == field.TypeInt {
		return toInt64(value)
	}
	return value, nil
}

func decodePayload(table *schema.Table, payload json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	result := make(map[string]any, len(raw))
	for key, val := range raw {
		col := findColumn(table, key)
		if col == nil {
			return nil, fmt.Errorf("column %s not found in table %s", key, table.Name)
		}
		converted, err := convertJSONValue(col, val)
		if err != nil {
			return nil, fmt.Errorf("convert %s.%s: %w", table.Name, key, err)
		}
		result[key] = converted
	}
	return result, nil
}

func convertJSONValue(col *schema.Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch col.Type {
	case field.TypeInt:
		return toInt64(value)
	case field.TypeTime:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("unsupported time value %T", value)
		}
		if str == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	case field.TypeString:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("unsupported string value %T", value)
		}
		return str, nil
	default:
		return value, nil
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported int type %T", value)
	}
}

func primaryKeyNames(table *schema.Table) []string {
	return lo.Map(table.PrimaryKey, func(col *schema.Column, _ int) string { return col.Name })
}

func columnNames(table *schema.Table) []string {
	return lo.Map(table.Columns, func(col *schema.Column, _ int) string { return col.Name })
}

func tableNames(tables []*schema.Table) []string {
	return lo.Map(tables, func(tbl *schema.Table, _ int) string { return tbl.Name })
}

func findColumn(table *schema.Table, name string) *schema.Column {
	col, _ := lo.Find(table.Columns, func(col *schema.Column) bool { return col.Name == name })
	return col
}

func computeSchemaHash(tables []*schema.Table) string {
	builder := &strings.Builder{}
	sortedTables := append([]*schema.Table(nil), tables...)
	sort.Slice(sortedTables, func(i, j int) bool { return sortedTables[i].Name < sortedTables[j].Name })

	for _, tbl := range sortedTables {
		builder.WriteString(tbl.Name)
		builder.WriteString("|cols:")
		sortedCols := append([]*schema.Column(nil), tbl.Columns...)
		sort.Slice(sortedCols, func(i, j int) bool { return sortedCols[i].Name < sortedCols[j].Name })
		for _, col := range sortedCols {
			fmt.Fprintf(builder, "%s:%d:%t;", col.Name, col.Type, col.Nullable)
		}
		builder.WriteString("|pk:")
		builder.WriteString(strings.Join(primaryKeyNames(tbl), ","))
		builder.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return fmt.Sprintf("%x", sum[:])
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
