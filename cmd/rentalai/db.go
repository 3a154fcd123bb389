package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibujohny/rentalAI/internal/app"
	"github.com/bibujohny/rentalAI/internal/config"
	"github.com/bibujohny/rentalAI/internal/database"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DataBackend != config.BackendPostgres {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate for the memory backend")
			return nil
		}
		pool, err := app.ConnectDB(cfg.DBUrl)
		if err != nil {
			return err
		}
		defer pool.Close()

		migrator, err := database.NewMigrator(pool)
		if err != nil {
			return err
		}
		if migrateStatus {
			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", s.Version, state)
			}
			return nil
		}

		applied, err := migrator.Up(cmd.Context())
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		}
		for _, v := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", v)
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo login and sample portfolio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DataBackend != config.BackendPostgres {
			return errors.New("seed needs DATA_BACKEND=postgres; the memory backend seeds itself on serve")
		}
		application, err := app.NewApp(cfg)
		if err != nil {
			return err
		}
		defer application.Close()

		migrator, err := database.NewMigrator(application.DB)
		if err != nil {
			return err
		}
		if _, err := migrator.Up(cmd.Context()); err != nil {
			return err
		}
		if err := app.SeedDemoData(cmd.Context(), application.Repos); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded demo data (login %s/%s)\n", app.DemoUsername, app.DemoPassword)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "list applied and pending migrations")
}
