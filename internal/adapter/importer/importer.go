// Package importer reads lesson files into lessons ready for the local store.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eslsoft/kovoc/internal/entity"
)

// Config defines which columns of a sheet hold which fields.
type Config struct {
	LessonID            string
	Title               string
	Language            string
	SheetName           string
	IDColumn            string
	WordColumn          string
	MeaningColumn       string
	PronunciationColumn string
	// StartRow is 1-based; rows before it are treated as headers.
	StartRow int
}

// DefaultConfig returns the layout A=id, B=word, C=meaning, D=pronunciation
// with a single header row.
func DefaultConfig() Config {
	return Config{
		IDColumn:            "A",
		WordColumn:          "B",
		MeaningColumn:       "C",
		PronunciationColumn: "D",
		StartRow:            2,
	}
}

// RowError reports a sheet row that could not be read.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

type lessonFile struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Language    string           `json:"language"`
	Vocabulary  []vocabularyFile `json:"vocabulary"`
}

type vocabularyFile struct {
	ID            itemID `json:"id"`
	Word          string `json:"word"`
	Meaning       string `json:"meaning"`
	Pronunciation string `json:"pronunciation"`
}

// itemID accepts string and numeric ids.
type itemID string

func (id *itemID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case nil:
		*id = ""
	case string:
		*id = itemID(value)
	case float64:
		*id = itemID(strconv.FormatFloat(value, 'f', -1, 64))
	default:
		return fmt.Errorf("unsupported id type %T", v)
	}
	return nil
}

// ReadFile picks the reader by file extension: .json, .xlsx or .csv.
func ReadFile(path string, cfg Config) (*entity.Lesson, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open lesson file: %w", err)
		}
		defer file.Close()
		return ReadJSON(file, cfg)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, cfg)
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open lesson file: %w", err)
		}
		defer file.Close()
		return ReadCSV(file, cfg)
	default:
		return nil, fmt.Errorf("unsupported lesson file type %q", filepath.Ext(path))
	}
}

// ReadJSON decodes {id,title,description,vocabulary:[...]}. Non-empty config
// values override the file's id and title.
func ReadJSON(r io.Reader, cfg Config) (*entity.Lesson, error) {
	dec := json.NewDecoder(r)
	var file lessonFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", entity.ErrInvalidLesson, err)
	}

	lesson := &entity.Lesson{
		ID:          file.ID,
		Title:       file.Title,
		Description: file.Description,
		Language:    entity.ParseLanguage(file.Language),
		Vocabulary:  make([]entity.VocabularyItem, 0, len(file.Vocabulary)),
	}
	for _, v := range file.Vocabulary {
		lesson.Vocabulary = append(lesson.Vocabulary, entity.VocabularyItem{
			ID:            string(v.ID),
			Word:          v.Word,
			Meaning:       v.Meaning,
			Pronunciation: v.Pronunciation,
		})
	}
	applyOverrides(lesson, cfg)
	return lesson, nil
}

// ReadXLSX reads the configured sheet, or the first sheet when none is set.
func ReadXLSX(path string, cfg Config) (*entity.Lesson, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows, cfg)
}

// ReadCSV reads rows with the same column layout as sheets.
func ReadCSV(r io.Reader, cfg Config) (*entity.Lesson, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows, cfg)
}

func fromRows(rows [][]string, cfg Config) (*entity.Lesson, error) {
	if cfg.LessonID == "" {
		return nil, fmt.Errorf("%w: lesson id is required for sheet imports", entity.ErrInvalidLessonID)
	}
	cols, err := resolveColumns(cfg)
	if err != nil {
		return nil, err
	}
	start := cfg.StartRow
	if start <= 0 {
		start = 1
	}

	lesson := &entity.Lesson{Language: entity.ParseLanguage(cfg.Language)}
	var rowErrs []error
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < start || isBlank(row) {
			continue
		}
		item := entity.VocabularyItem{
			ID:            cell(row, cols.id),
			Word:          cell(row, cols.word),
			Meaning:       cell(row, cols.meaning),
			Pronunciation: cell(row, cols.pronunciation),
		}
		if item.ID == "" {
			item.ID = strconv.Itoa(rowNum)
		}
		if err := item.Validate(); err != nil {
			rowErrs = append(rowErrs, &RowError{Row: rowNum, Err: err})
			continue
		}
		lesson.Vocabulary = append(lesson.Vocabulary, item)
	}
	if len(rowErrs) > 0 {
		return nil, errors.Join(rowErrs...)
	}
	applyOverrides(lesson, cfg)
	return lesson, nil
}

type columnIndexes struct {
	id, word, meaning, pronunciation int
}

func resolveColumns(cfg Config) (columnIndexes, error) {
	defaults := DefaultConfig()
	pick := func(value, fallback string) (int, error) {
		if strings.TrimSpace(value) == "" {
			value = fallback
		}
		n, err := excelize.ColumnNameToNumber(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("invalid column %q: %w", value, err)
		}
		return n - 1, nil
	}

	var idx columnIndexes
	var err error
	if idx.id, err = pick(cfg.IDColumn, defaults.IDColumn); err != nil {
		return idx, err
	}
	if idx.word, err = pick(cfg.WordColumn, defaults.WordColumn); err != nil {
		return idx, err
	}
	if idx.meaning, err = pick(cfg.MeaningColumn, defaults.MeaningColumn); err != nil {
		return idx, err
	}
	if idx.pronunciation, err = pick(cfg.PronunciationColumn, defaults.PronunciationColumn); err != nil {
		return idx, err
	}
	return idx, nil
}

func applyOverrides(lesson *entity.Lesson, cfg Config) {
	if id := strings.TrimSpace(cfg.LessonID); id != "" {
		lesson.ID = id
	}
	if title := strings.TrimSpace(cfg.Title); title != "" {
		lesson.Title = title
	}
	if lang := entity.ParseLanguage(cfg.Language); lang != entity.LanguageUnspecified {
		lesson.Language = lang
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
