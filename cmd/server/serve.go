package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/furniture-catalog/internal/config"
	"github.com/iliyamo/furniture-catalog/internal/handler"
	"github.com/iliyamo/furniture-catalog/internal/middleware"
	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/queue"
	"github.com/iliyamo/furniture-catalog/internal/router"
	"github.com/iliyamo/furniture-catalog/internal/service"
	"github.com/iliyamo/furniture-catalog/internal/storage"
	"github.com/iliyamo/furniture-catalog/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, storePing, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores(stores, log)

	files, err := storage.NewFiles(cfg.UploadDir)
	if err != nil {
		return err
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb != nil {
		defer rdb.Close()
	}

	var repairs service.RepairQueue
	if cfg.AMQPURL != "" {
		repairs = service.NewRepairPublisher(cfg.AMQPURL, log)
	} else {
		log.Warn("RABBITMQ_URL not set; principal repairs will only be logged")
	}

	codec := utils.NewTokenCodec(cfg.Tokens())
	resolver := service.NewResolver(stores)
	accounts := service.NewAccounts(stores, cfg.BcryptCost)
	roles := service.NewRoleService(stores, repairs, log)
	images := service.NewImageTracker(stores, files, log)

	if cfg.AMQPURL != "" {
		consumer := &queue.RepairConsumer{URL: cfg.AMQPURL, Reconciler: roles, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("repair consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		ExposeHeaders: []string{handler.HeaderAccessToken, handler.HeaderRefreshToken},
	}))

	deps := map[string]handler.Pinger{"store": storePing}
	if rdb != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	router.RegisterRoutes(e, handler.Health(deps), cfg.UploadDir)

	guards := router.Guards{
		Access:  middleware.AccessGuard(codec, resolver, log),
		Refresh: middleware.RefreshGuard(codec, resolver, log),
		Limit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	}
	cacheCfg := config.LoadCacheConfig()
	api := e.Group(cfg.APIPrefix)
	router.RegisterAuth(api, handler.NewAuthHandler(accounts, roles, codec, stores.Users, log), guards)
	router.RegisterPrincipals(api,
		handler.NewPrincipalHandler(model.KindUser, stores, accounts, log),
		handler.NewPrincipalHandler(model.KindAdmin, stores, accounts, log),
		guards)
	router.RegisterCatalog(api, router.Catalog{
		Categories: handler.NewCategoryHandler(stores, files, images, log),
		Brands:     handler.NewBrandHandler(stores, log),
		Products:   handler.NewProductHandler(stores, files, images, log),
		Cache:      middleware.NewRedisCache(cacheCfg, rdb, log),
		Invalidate: middleware.InvalidateCache(cacheCfg, rdb, log),
	}, guards)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "store": cfg.StoreDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	images.Wait()
	return nil
}
