package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/furniture-catalog/internal/config"
	"github.com/iliyamo/furniture-catalog/internal/service"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the bootstrap admin account if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if len(password) < 5 {
			return fmt.Errorf("password must be at least 5 characters")
		}

		cfg := config.Load()
		log := newLogger(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		stores, _, err := openStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStores(stores, log)

		admin, created, err := service.NewAccounts(stores, cfg.BcryptCost).EnsureAdmin(ctx, name, email, password)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		entry := log.WithField("admin_id", admin.ID).WithField("email", admin.Email)
		if created {
			entry.Info("admin created")
		} else {
			entry.Info("admin already exists")
		}
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().String("name", "admin", "Admin display name")
	seedAdminCmd.Flags().String("email", "", "Admin email")
	seedAdminCmd.Flags().String("password", "", "Admin password")
	_ = seedAdminCmd.MarkFlagRequired("email")
	_ = seedAdminCmd.MarkFlagRequired("password")
}
