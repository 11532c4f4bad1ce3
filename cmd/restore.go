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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/kovoc/internal/usecase/backup"
)

const (
	restoreInputKey  = "backup.restore.input"
	restoreGzipKey   = "backup.restore.gzip"
	restoreTablesKey = "backup.restore.tables"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Load an NDJSON backup into the local store",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		inputPath := viper.GetString(restoreInputKey)
		if inputPath == "" {
			return fmt.Errorf("set the backup file with --input, or - for stdin")
		}

		container, cleanup, err := openLocal(ctx)
		if err != nil {
			return fmt.Errorf("open local store: %w", err)
		}
		defer cleanup()

		reader, cs, err := openBackupReader(inputPath, gzipByName(inputPath, viper.GetBool(restoreGzipKey)), cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer cs.close(&err)

		var opts []backup.ImportOption
		if tables := tablesFromConfig(restoreTablesKey); len(tables) > 0 {
			opts = append(opts, backup.WithImportTables(tables))
		}
		if err := container.Backup.Import(ctx, reader, opts...); err != nil {
			return fmt.Errorf("restore backup: %w", err)
		}

		container.Logger.WithField("input", inputPath).Info("backup restored")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().StringP("input", "i", "", "backup file path, - for stdin")
	restoreCmd.Flags().Bool("gzip", false, "input is gzip compressed")
	restoreCmd.Flags().StringSlice("tables", nil, "restore only these tables")

	bindFlagToViper(restoreInputKey, restoreCmd.Flags().Lookup("input"))
	bindFlagToViper(restoreGzipKey, restoreCmd.Flags().Lookup("gzip"))
	bindFlagToViper(restoreTablesKey, restoreCmd.Flags().Lookup("tables"))
}
