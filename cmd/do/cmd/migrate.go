package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/gallery/internal/config"
	"github.com/templui/gallery/internal/db"
)

func MigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(true)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(false)
		},
	})

	return migrateCmd
}

func runMigrate(up bool) error {
	cfg := config.Load()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer db.Close(database)

	if up {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
	} else {
		err = db.MigrateDown(database.DB, cfg.DBDriver)
	}
	if err != nil {
		return err
	}

	fmt.Println("done")
	return nil
}
