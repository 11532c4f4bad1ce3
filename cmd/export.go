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
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/kovoc/internal/usecase/backup"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
	exportTablesKey = "backup.export.tables"
	exportBatchKey  = "backup.export.batch_size"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump lessons and progress of the local store as NDJSON",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		container, cleanup, err := openLocal(ctx)
		if err != nil {
			return fmt.Errorf("open local store: %w", err)
		}
		defer cleanup()

		outputPath := viper.GetString(exportOutputKey)
		gzipEnabled := viper.GetBool(exportGzipKey)
		if outputPath == "" {
			outputPath = defaultExportFilename(gzipEnabled)
		}
		gzipEnabled = gzipByName(outputPath, gzipEnabled)

		service := container.Backup
		if size := viper.GetInt(exportBatchKey); size > 0 {
			if service, err = backup.NewService(container.DB, backup.WithBatchSize(size)); err != nil {
				return fmt.Errorf("create backup service: %w", err)
			}
		}

		writer, cs, err := openBackupWriter(outputPath, gzipEnabled, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer cs.close(&err)

		exportOpts := []backup.ExportOption{backup.WithProgressReporter(newCLIProgress(cmd.ErrOrStderr()))}
		if tables := tablesFromConfig(exportTablesKey); len(tables) > 0 {
			exportOpts = append(exportOpts, backup.WithTables(tables))
		}
		if err := service.Export(ctx, writer, exportOpts...); err != nil {
			return fmt.Errorf("export backup: %w", err)
		}

		if outputPath == stdStream {
			cmd.PrintErrln("export finished: written to stdout")
		} else {
			cmd.PrintErrf("export finished: %s\n", outputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "backup file path, - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")
	exportCmd.Flags().StringSlice("tables", nil, "export only these tables")
	exportCmd.Flags().Int("batch-size", 0, "rows per query (default 512)")

	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportTablesKey, exportCmd.Flags().Lookup("tables"))
	bindFlagToViper(exportBatchKey, exportCmd.Flags().Lookup("batch-size"))
}

func defaultExportFilename(gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("kovoc-backup-%s.jsonl", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

// cliProgress prints export progress roughly every 5% of a table.
type cliProgress struct {
	out         io.Writer
	totals      map[string]int
	counts      map[string]int
	lastPrinted map[string]int
}

func newCLIProgress(out io.Writer) *cliProgress {
	return &cliProgress{
		out:         out,
		totals:      make(map[string]int),
		counts:      make(map[string]int),
		lastPrinted: make(map[string]int),
	}
}

func (p *cliProgress) StartTable(table string, total int) {
	p.totals[table] = max(total, 0)
	p.counts[table] = 0
	p.lastPrinted[table] = 0
	fmt.Fprintf(p.out, "exporting %s (%d rows)\n", table, p.totals[table])
}

func (p *cliProgress) Increment(table string, delta int) {
	if delta <= 0 {
		return
	}
	current := p.counts[table] + delta
	p.counts[table] = current
	total := p.totals[table]
	if current == total || current-p.lastPrinted[table] >= progressStep(total) {
		fmt.Fprintf(p.out, "  %s: %d/%d\n", table, current, total)
		p.lastPrinted[table] = current
	}
}

func (p *cliProgress) FinishTable(table string) {
	fmt.Fprintf(p.out, "exported %s: %d rows\n", table, p.counts[table])
	delete(p.counts, table)
	delete(p.totals, table)
	delete(p.lastPrinted, table)
}

func progressStep(total int) int {
	if total <= 0 {
		return 1000
	}
	return min(max(total/20, 1), 1000)
}
