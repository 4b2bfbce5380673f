package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/jairbenitez29/blueedu/pkg/config"
	"github.com/urfave/cli/v3"
)

// StatsCommand creates the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show storage statistics",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showStats(c.String("config"))
		},
	}
}

// showStats displays record counts per table
func showStats(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}

	tables := make([]string, 0, len(stats))
	for table := range stats {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	fmt.Printf("Database: %s\n", cfg.DBPath())
	for _, table := range tables {
		fmt.Printf("  %s: %v\n", table, stats[table])
	}
	return nil
}
