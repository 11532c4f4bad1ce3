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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	progressLessonKey  = "progress.lesson"
	progressFilterKey  = "progress.filter"
	progressOfflineKey = "progress.offline"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show the status of every word of a lesson",
	Example: `  kovoc progress --lesson lesson-1
  kovoc progress --lesson lesson-1 --filter 'status != "mastered"'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lessonID := strings.TrimSpace(viper.GetString(progressLessonKey))
		if lessonID == "" {
			return errors.New("set the lesson with --lesson")
		}

		progress, _, _, cleanup, err := openProgress(cmd, viper.GetBool(progressOfflineKey))
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := progress.Summary(ctx, lessonID)
		if err != nil {
			return err
		}
		items, err := progress.ListVocabulary(ctx, lessonID, viper.GetString(progressFilterKey))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		st := newStyles(out)
		fmt.Fprintln(out, st.header.Render(fmt.Sprintf("%s: %.0f%% mastered", summary.LessonID, summary.Percent)))
		fmt.Fprintf(out, "unlearned %d  learning %d  mastered %d  total %d\n",
			summary.Counts.Unlearned, summary.Counts.Learning, summary.Counts.Mastered, summary.Counts.Total)
		for _, item := range items {
			reviewed := "-"
			if item.LastReviewedAt != nil {
				reviewed = item.LastReviewedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(out, "%-12s %-20s %-24s %s %s\n",
				item.Item.ID, item.Item.Word, item.Item.Meaning, st.statusText(item.Status), st.muted.Render(reviewed))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)

	progressCmd.Flags().StringP("lesson", "l", "", "lesson id")
	progressCmd.Flags().String("filter", "", "CEL filter over id, word, meaning, pronunciation, status, reviewed")
	progressCmd.Flags().Bool("offline", false, "use the local store instead of the remote API")

	bindFlagToViper(progressLessonKey, progressCmd.Flags().Lookup("lesson"))
	bindFlagToViper(progressFilterKey, progressCmd.Flags().Lookup("filter"))
	bindFlagToViper(progressOfflineKey, progressCmd.Flags().Lookup("offline"))
}
