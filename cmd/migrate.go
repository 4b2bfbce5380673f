package cmd

import (
	"context"
	"fmt"

	"github.com/jairbenitez29/blueedu/pkg/config"
	"github.com/jairbenitez29/blueedu/pkg/db"
	"github.com/urfave/cli/v3"
)

// MigrateCommand creates the migrate command
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Show migration status without applying migrations",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runMigrations(c.String("config"), c.Bool("status"))
		},
	}
}

func runMigrations(configPath string, statusOnly bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Opening the store applies pending migrations.
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	manager := db.NewMigrationManager(store.DB())
	status, err := manager.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("getting migration status: %w", err)
	}

	if statusOnly || len(status.Pending) == 0 {
		fmt.Printf("Database: %s\n", cfg.DBPath())
		fmt.Printf("Applied migrations: %d\n", len(status.Applied))
		for _, m := range status.Applied {
			applied := ""
			if m.AppliedAt != nil {
				applied = m.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("  %03d %s (%s)\n", m.Version, m.Name, applied)
		}
		if len(status.Pending) > 0 {
			fmt.Printf("Pending migrations: %d\n", len(status.Pending))
			for _, m := range status.Pending {
				fmt.Printf("  %03d %s\n", m.Version, m.Name)
			}
		}
		return nil
	}

	for _, m := range status.Pending {
		fmt.Printf("Applying %03d %s...\n", m.Version, m.Name)
		if err := manager.ApplyMigration(m); err != nil {
			return fmt.Errorf("applying migration %d: %w", m.Version, err)
		}
	}
	fmt.Println("Migrations complete.")
	return nil
}
