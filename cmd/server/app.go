package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/config"
	"github.com/iliyamo/furniture-catalog/internal/database"
	"github.com/iliyamo/furniture-catalog/internal/handler"
	"github.com/iliyamo/furniture-catalog/internal/repository"
	"github.com/iliyamo/furniture-catalog/internal/repository/docstore"
	"github.com/iliyamo/furniture-catalog/internal/repository/memstore"
)

// newLogger builds the process logger: JSON in prod, text elsewhere.
func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.Env == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// openStores connects the backend selected by STORE_DRIVER, prepares its
// schema and returns the stores with a health pinger for it.
func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*repository.Stores, handler.Pinger, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("mysql schema: %w", err)
		}
		log.WithField("host", cfg.DBHost).Info("connected to mysql")
		return repository.NewMySQLStores(db), handler.PingFunc(db.PingContext), nil

	case config.DriverMongo:
		mdb, err := database.OpenMongo(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		if err := docstore.EnsureIndexes(ctx, mdb); err != nil {
			_ = mdb.Client().Disconnect(ctx)
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.WithField("db", cfg.MongoDB).Info("connected to mongodb")
		ping := handler.PingFunc(func(ctx context.Context) error { return mdb.Client().Ping(ctx, nil) })
		return docstore.New(mdb), ping, nil

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on exit")
		return memstore.New(), handler.PingFunc(func(context.Context) error { return nil }), nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func closeStores(stores *repository.Stores, log logrus.FieldLogger) {
	if stores.Close == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := stores.Close(ctx); err != nil {
		log.WithError(err).Warn("closing store")
	}
}
