package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"postfeed/internal/config"
	"postfeed/internal/database"
	"postfeed/internal/feed"
	"postfeed/internal/logging"
	"postfeed/internal/repository"
	"postfeed/internal/service"
	"postfeed/internal/storage"
)

type App struct {
	DB       *database.DB
	Repo     *repository.Repository
	Services *service.Service
	Hub      *feed.Hub
	// Feed is the source for live streams: hub notifications plus reads
	// from the post repository.
	Feed feed.Source

	firestore *firestore.Client
}

// New connects the stores, builds the services and prepares the change hub.
// Start the hub with Watch.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	// connection DB
	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	a := &App{DB: db}

	// enabling dependencies
	a.Repo = repository.NewRepository(db.DB, cfg.DB.DSN(), logger)

	if cfg.Store.Driver == config.StoreDriverFirestore {
		client, err := firestore.NewClient(ctx, cfg.Store.FirestoreProjectID)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to firestore: %w", err)
		}
		a.firestore = client
		a.Repo.UseFirestore(client, logger)
		logger.Info(ctx, "documents stored in firestore", "project", cfg.Store.FirestoreProjectID)
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init minio: %w", err)
	}

	a.Services = service.NewService(a.Repo, cfg, minioClient, logger)
	a.Hub = feed.NewHub(logger)
	a.Feed = feed.Join(a.Hub, a.Repo.Post)

	return a, nil
}

// Watch feeds upstream post changes into the hub until ctx is done.
func (a *App) Watch(ctx context.Context) {
	a.Hub.Run(ctx, a.Repo.PostWatcher)
}

func (a *App) Close() {
	if a.firestore != nil {
		a.firestore.Close()
	}
	if a.DB != nil {
		a.DB.CloseDB()
	}
}
