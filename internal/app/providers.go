package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kovoc/internal/adapter/repository"
	"github.com/eslsoft/kovoc/internal/adapter/restclient"
	"github.com/eslsoft/kovoc/internal/infrastructure/config"
	"github.com/eslsoft/kovoc/internal/infrastructure/database"
	repo "github.com/eslsoft/kovoc/internal/repository"
	"github.com/eslsoft/kovoc/internal/usecase/backup"
)

func provideConfig(path ConfigPath) (*config.Config, error) {
	return config.Load(string(path))
}

func provideLocalProgressRepository(db *database.DB, cfg *config.Config) repo.ProgressRepository {
	return repository.NewProgressRepository(db, cfg.User.ID)
}

func provideRemoteClient(cfg *config.Config, logger *logrus.Logger) (*restclient.Client, error) {
	return restclient.New(cfg.API.BaseURL,
		restclient.WithToken(cfg.API.Token),
		restclient.WithTimeout(cfg.API.Timeout),
		restclient.WithLogger(logger),
	)
}

func provideBackupService(db *database.DB) (*backup.Service, error) {
	return backup.NewService(db)
}
