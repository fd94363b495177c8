// Package app wires configuration, stores and services into one value shared
// by the CLI commands.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"accreditations/internal/adapters/opener"
	"accreditations/internal/config"
	"accreditations/internal/handlers"
	"accreditations/internal/metrics"
	"accreditations/internal/ports"
	importitems "accreditations/internal/repository/imports"
	"accreditations/internal/repository/migrations"
	recordstore "accreditations/internal/repository/records"
	"accreditations/internal/services/exporter"
	"accreditations/internal/services/importer"
	"accreditations/internal/services/importer/processors"
	"accreditations/internal/services/records"
	"accreditations/internal/services/stats"
)

type App struct {
	Config   *config.Config
	Store    ports.RecordStore
	Metrics  *metrics.Metrics
	Records  *records.Service
	Stats    *stats.Service
	Tracker  ports.ImportTracker
	Exporter *exporter.Exporter
	Logger   *log.Logger
}

// New builds the record store for cfg, migrating SQL stores to the latest
// schema, and the services on top of it.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}

	var store ports.RecordStore
	if db, dialect := cfg.SQL(); db != nil {
		if err := migrations.Up(ctx, db, dialect); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", dialect, err)
		}
		store = recordstore.NewSQLStore(db, cfg.RecordTable)
	} else {
		store = recordstore.NewMemory()
	}

	var tracker ports.ImportTracker = importitems.NewLogTracker(logger)
	if cfg.Mongo != nil {
		tracker = importitems.NewMongoTracker(cfg.Mongo)
	}

	m := metrics.New()
	recs := records.NewService(store, m, logger)

	logger.Printf("[APP] store=%s mongo=%t s3=%t", cfg.StoreDriver, cfg.Mongo != nil, cfg.S3 != nil)

	return &App{
		Config:   cfg,
		Store:    store,
		Metrics:  m,
		Records:  recs,
		Stats:    stats.NewService(store),
		Tracker:  tracker,
		Exporter: exporter.New(recs),
		Logger:   logger,
	}, nil
}

// Importer returns an import service reading http(s):// and, when S3 is
// enabled, s3:// sources. withLocal adds plain filesystem paths.
func (a *App) Importer(withLocal bool) *importer.Service {
	op := opener.NewCompoundOpener(opener.NewHTTPOpener(&http.Client{}), nil, "")
	if a.Config.S3 != nil {
		op.S3 = opener.NewS3Opener(a.Config.S3.Client)
		op.DefaultBucket = a.Config.S3.Bucket
	}
	if withLocal {
		op.Local = opener.NewLocalOpener()
	}

	reg := processors.Registry(processors.NewRecordsProcessor(a.Records, a.Tracker, a.Metrics))
	return importer.NewService(op, reg, a.Tracker, 0)
}

func (a *App) Handlers() *handlers.Handlers {
	jobs, _ := a.Tracker.(ports.ImportJobReader)
	return handlers.New(handlers.Deps{
		Records:  a.Records,
		Stats:    a.Stats,
		Importer: a.Importer(false),
		Exporter: a.Exporter,
		Jobs:     jobs,
		Mongo:    a.Config.Mongo,
		S3:       a.Config.S3,
		Metrics:  a.Metrics,
		Logger:   a.Logger,
	})
}

func (a *App) Close(ctx context.Context) {
	a.Config.Close(ctx)
}
