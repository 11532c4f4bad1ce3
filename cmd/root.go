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
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/kovoc/internal/app"
)

const configKey = "config"

var rootCmd = &cobra.Command{
	Use:   "kovoc",
	Short: "Korean vocabulary drills for Vietnamese speakers",
	Long: `kovoc runs three-phase vocabulary learning sessions against a remote
lesson-progress API or a local store, and serves that store over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: .env in the working directory)")
	bindFlagToViper(configKey, rootCmd.PersistentFlags().Lookup("config"))
}

func configPath() app.ConfigPath {
	return app.ConfigPath(viper.GetString(configKey))
}

// openLocal builds the local-store container and migrates its schema.
func openLocal(ctx context.Context) (*app.Container, func(), error) {
	container, cleanup, err := app.Initialize(configPath())
	if err != nil {
		return nil, nil, err
	}
	if err := container.Migrate(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return container, cleanup, nil
}
