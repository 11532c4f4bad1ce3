package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kovoc/internal/infrastructure/config"
	"github.com/eslsoft/kovoc/internal/infrastructure/database"
	"github.com/eslsoft/kovoc/internal/infrastructure/server"
	"github.com/eslsoft/kovoc/internal/usecase"
	"github.com/eslsoft/kovoc/internal/usecase/backup"
)

// ConfigPath is the optional config file passed with --config.
type ConfigPath string

// Container aggregates the local-store dependencies produced by Wire.
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	DB       *database.DB
	Progress usecase.ProgressUsecase
	Lessons  usecase.LessonUsecase
	Backup   *backup.Service
	Server   *server.Server
}

// Migrate brings the local schema up to date.
func (c *Container) Migrate(ctx context.Context) error {
	return database.Migrate(ctx, c.DB, c.Logger)
}

// RemoteContainer holds what a session against the remote progress API needs.
type RemoteContainer struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Progress usecase.ProgressUsecase
}
