package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/japaniel/vocabforge/pkg/analyzer"
	"github.com/japaniel/vocabforge/pkg/config"
	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/ingest"
	"github.com/japaniel/vocabforge/pkg/lexicon"
	"github.com/japaniel/vocabforge/pkg/srs"
)

var rootCmd = &cobra.Command{
	Use:          "vocabforge",
	Short:        "Build English vocabulary from books and study it with spaced repetition",
	SilenceUsage: true,
}

// app holds what every command needs: configuration, a logger and an open,
// migrated store.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *db.Store
}

func newLogger(c config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// setup loads configuration and opens the database. Migrations run unless
// migrate is false.
func setup(ctx context.Context, migrate bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, db.Options{
		MaxOpenConns:     cfg.Database.MaxOpenConns,
		StatementTimeout: cfg.Database.StatementTimeout,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if migrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
	}
	logger.WithFields(logrus.Fields{"driver": cfg.Database.Driver}).Debug("database ready")
	return &app{cfg: cfg, log: logger, store: store}, nil
}

func (a *app) Close() error { return a.store.Close() }

// ingestOptions maps the ingestion section onto engine options.
func ingestOptions(c config.IngestionConfig, logger logrus.FieldLogger) ingest.Options {
	return ingest.Options{
		MaxProcessingTime: c.MaxProcessing(),
		SyncTimeout:       c.SyncTimeout(),
		MaxSyncSize:       c.MaxSyncProcessingSize,
		MaxConcurrent:     c.MaxConcurrentProcessing,
		AcquireTimeout:    c.AcquireTimeout(),
		CleanupInterval:   c.CleanupInterval(),
		MaxStatusAge:      c.StatusAge(),
		BatchSize:         c.BatchSize,
		StreamThreshold:   c.StreamThreshold,
		ChunkBytes:        c.ChunkBytes,
		QueueSize:         c.QueueSize,
		Workers:           c.Workers,
		Logger:            logger,
	}
}

// newEngine loads the lexicon, downloading the vocabulary list first when a
// URL is configured, and starts an ingestion engine.
func (a *app) newEngine(ctx context.Context) (*ingest.Engine, error) {
	lc := a.cfg.Lexicon
	if lc.VocabPath != "" && lc.VocabURL != "" {
		if err := lexicon.Ensure(ctx, lc.VocabPath, lc.VocabURL); err != nil {
			return nil, fmt.Errorf("vocabulary list: %w", err)
		}
	}
	lx, err := lexicon.Load(lexicon.Options{
		VocabPath:     lc.VocabPath,
		BrownPath:     lc.BrownPath,
		StopWordsPath: lc.StopWordsPath,
	})
	if err != nil {
		return nil, err
	}
	an, err := analyzer.NewAnalyzer(lx)
	if err != nil {
		return nil, err
	}
	return ingest.NewEngine(a.store, an, lx.Brown, ingestOptions(a.cfg.Ingestion, a.log)), nil
}

func (a *app) newStudy() *srs.Service {
	return srs.NewService(a.store, srs.Config{
		NewCardsPerDay:   a.cfg.SRS.NewCardsPerDay,
		LearnedThreshold: a.cfg.SRS.LearnedThreshold,
		Logger:           a.log,
	})
}
