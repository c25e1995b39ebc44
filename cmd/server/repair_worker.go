package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/furniture-catalog/internal/config"
	"github.com/iliyamo/furniture-catalog/internal/queue"
	"github.com/iliyamo/furniture-catalog/internal/service"
)

var repairWorkerCmd = &cobra.Command{
	Use:   "repair-worker",
	Short: "Consume principal repair events without serving HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := newLogger(cfg)
		if cfg.AMQPURL == "" {
			return fmt.Errorf("RABBITMQ_URL is required for the repair worker")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		stores, _, err := openStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStores(stores, log)

		roles := service.NewRoleService(stores, nil, log)
		consumer := &queue.RepairConsumer{URL: cfg.AMQPURL, Reconciler: roles, Log: log}
		log.Info("repair worker started")
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
