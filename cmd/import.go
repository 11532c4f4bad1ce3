/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/kovoc/internal/adapter/importer"
)

const (
	importFileKey     = "import.file"
	importLessonKey   = "import.lesson"
	importTitleKey    = "import.title"
	importSheetKey    = "import.sheet"
	importLanguageKey = "import.language"
	importStartRowKey = "import.start_row"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a lesson from a JSON, CSV or XLSX file into the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		path := viper.GetString(importFileKey)
		if path == "" {
			return errors.New("set the lesson file with --file")
		}

		cfg := importer.DefaultConfig()
		cfg.LessonID = viper.GetString(importLessonKey)
		cfg.Title = viper.GetString(importTitleKey)
		cfg.SheetName = viper.GetString(importSheetKey)
		cfg.Language = viper.GetString(importLanguageKey)
		if row := viper.GetInt(importStartRowKey); row > 0 {
			cfg.StartRow = row
		}

		lesson, err := importer.ReadFile(path, cfg)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		container, cleanup, err := openLocal(ctx)
		if err != nil {
			return fmt.Errorf("open local store: %w", err)
		}
		defer cleanup()

		saved, err := container.Lessons.ImportLesson(ctx, lesson)
		if err != nil {
			return fmt.Errorf("import lesson: %w", err)
		}
		container.Logger.WithField("lesson_id", saved.ID).WithField("vocabulary", len(saved.Vocabulary)).Info("lesson imported")
		cmd.Printf("imported %q (%s): %d words\n", saved.Title, saved.ID, len(saved.Vocabulary))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("file", "f", "", "lesson file (.json, .csv, .xlsx)")
	importCmd.Flags().String("lesson", "", "lesson id (required for CSV and XLSX)")
	importCmd.Flags().String("title", "", "lesson title")
	importCmd.Flags().String("sheet", "", "XLSX sheet name (default: first sheet)")
	importCmd.Flags().String("language", "", "source language code")
	importCmd.Flags().Int("start-row", 0, "first data row of CSV and XLSX files (default 2)")

	bindFlagToViper(importFileKey, importCmd.Flags().Lookup("file"))
	bindFlagToViper(importLessonKey, importCmd.Flags().Lookup("lesson"))
	bindFlagToViper(importTitleKey, importCmd.Flags().Lookup("title"))
	bindFlagToViper(importSheetKey, importCmd.Flags().Lookup("sheet"))
	bindFlagToViper(importLanguageKey, importCmd.Flags().Lookup("language"))
	bindFlagToViper(importStartRowKey, importCmd.Flags().Lookup("start-row"))
}
