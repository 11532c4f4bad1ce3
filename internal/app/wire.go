//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kovoc/internal/adapter/httpapi"
	"github.com/eslsoft/kovoc/internal/adapter/repository"
	"github.com/eslsoft/kovoc/internal/adapter/restclient"
	"github.com/eslsoft/kovoc/internal/infrastructure/database"
	"github.com/eslsoft/kovoc/internal/infrastructure/server"
	repo "github.com/eslsoft/kovoc/internal/repository"
	"github.com/eslsoft/kovoc/internal/usecase"
)

var configSet = wire.NewSet(
	provideConfig,
	server.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
)

var databaseSet = wire.NewSet(
	database.NewDB,
)

var repositorySet = wire.NewSet(
	provideLocalProgressRepository,
	repository.NewLessonRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewProgressUsecase,
	usecase.NewLessonUsecase,
	provideBackupService,
)

var serverSet = wire.NewSet(
	httpapi.NewHandler,
	httpapi.NewRouter,
	server.NewServer,
)

// Initialize builds the local-store container using Wire.
func Initialize(path ConfigPath) (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}

// InitializeRemote builds a container that reads and writes progress through the remote API.
func InitializeRemote(path ConfigPath) (*RemoteContainer, error) {
	wire.Build(
		configSet,
		provideRemoteClient,
		wire.Bind(new(repo.ProgressRepository), new(*restclient.Client)),
		usecase.NewProgressUsecase,
		wire.Struct(new(RemoteContainer), "*"),
	)
	return nil, nil
}
