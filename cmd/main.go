package main

import (
	"context"
	"log/slog"
	"os"

	application "github.com/freitasmatheusrn/fleamarket-inventory/application"
	configs "github.com/freitasmatheusrn/fleamarket-inventory/configs"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/database/postgres"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/logging"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/storage"
)

func main() {
	config, err := configs.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	db, err := postgres.Init(config.DSN())
	if err != nil {
		panic("error starting db: " + err.Error())
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		panic("error migrating db: " + err.Error())
	}

	redisClient, err := config.Redis()
	if err != nil {
		panic("error starting redis: " + err.Error())
	}
	defer redisClient.Close()

	store, err := storage.NewS3Store(context.Background(), config.Storage())
	if err != nil {
		panic("error starting storage: " + err.Error())
	}

	logger, closeLogger, err := logging.New(config.LogPath)
	if err != nil {
		panic(err)
	}
	defer closeLogger()

	app := application.Application{
		Config:  *config,
		Logger:  logger,
		DB:      db,
		Redis:   redisClient,
		Storage: store,
	}

	if err := app.Run(app.Mount()); err != nil {
		slog.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
