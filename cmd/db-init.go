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
)

// dbInitCmd creates or upgrades the local store schema.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create the local store schema",
	Long:  "Runs schema migrations for the configured database. go-sqlite3 needs a CGO_ENABLED=1 build.",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := openLocal(cmd.Context())
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		defer cleanup()

		driver, _ := container.Config.DatabaseDriver()
		cmd.Printf("schema ready (%s)\n", driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
}
