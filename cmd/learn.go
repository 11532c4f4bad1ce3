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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/kovoc/internal/app"
	"github.com/eslsoft/kovoc/internal/infrastructure/config"
	"github.com/eslsoft/kovoc/internal/usecase"
	"github.com/eslsoft/kovoc/internal/usecase/learning"
)

const (
	learnLessonKey  = "learn.lesson"
	learnOfflineKey = "learn.offline"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Run an interactive learning session for a lesson",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lessonID := strings.TrimSpace(viper.GetString(learnLessonKey))
		if lessonID == "" {
			return errors.New("set the lesson with --lesson")
		}

		progress, cfg, logger, cleanup, err := openProgress(cmd, viper.GetBool(learnOfflineKey))
		if err != nil {
			return err
		}
		defer cleanup()

		executor := learning.NewAsyncExecutor(progress, logger, cfg.API.Timeout)
		session := learning.NewSession(lessonID, progress, executor,
			learning.WithLogger(logger),
			learning.WithQuestionGenerator(learning.NewQuestionGenerator(nil, cfg.Learning.OptionCount)),
		)
		if err := session.Start(ctx); err != nil {
			return err
		}

		runErr := runQuiz(ctx, session, cmd.InOrStdin(), cmd.OutOrStdout())
		executor.Wait()
		printSummary(cmd.OutOrStdout(), session.Summary(), executor.Failures())
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(learnCmd)

	learnCmd.Flags().StringP("lesson", "l", "", "lesson id")
	learnCmd.Flags().Bool("offline", false, "use the local store instead of the remote API")

	bindFlagToViper(learnLessonKey, learnCmd.Flags().Lookup("lesson"))
	bindFlagToViper(learnOfflineKey, learnCmd.Flags().Lookup("offline"))
}

// openProgress returns the progress use case backed by the remote API, or by the local store when offline.
func openProgress(cmd *cobra.Command, offline bool) (usecase.ProgressUsecase, *config.Config, *logrus.Logger, func(), error) {
	if offline {
		container, cleanup, err := openLocal(cmd.Context())
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("open local store: %w", err)
		}
		return container.Progress, container.Config, container.Logger, cleanup, nil
	}
	remote, err := app.InitializeRemote(configPath())
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("create api client: %w", err)
	}
	return remote.Progress, remote.Config, remote.Logger, func() {}, nil
}
