package cmd

import (
	"context"
	"fmt"

	"github.com/jairbenitez29/blueedu/pkg/config"
	"github.com/jairbenitez29/blueedu/pkg/extractor"
	"github.com/jairbenitez29/blueedu/pkg/ingest"
	"github.com/urfave/cli/v3"
)

// ExtractCommand creates the extract command
func ExtractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract a web page and store it as an unverified record",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Extract only, do not persist anything",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			url := c.Args().First()
			if url == "" {
				return fmt.Errorf("url argument required")
			}
			return runExtract(ctx, c.String("config"), url, c.Bool("dry-run"))
		},
	}
}

func runExtract(ctx context.Context, configPath, url string, dryRun bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ext := extractor.New(cfg.Extractor.Timeout.Duration)
	doc, err := ext.Extract(ctx, url)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	fmt.Println(titleStyle.Render(doc.Title))
	fmt.Println(metaStyle.Render(fmt.Sprintf("%s · %s", doc.Kind, doc.Source)))
	fmt.Println()
	fmt.Println(doc.Description)
	fmt.Println()
	fmt.Println(doc.Body)

	if dryRun {
		return nil
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	outcome := ingest.NewSink(store, nil).Ingest(ctx, doc)
	switch outcome.Status {
	case ingest.StatusCreated:
		fmt.Printf("\nStored as new unverified record %s\n", outcome.RecordID)
	case ingest.StatusDuplicate:
		fmt.Printf("\nAlready stored as %s\n", outcome.RecordID)
	case ingest.StatusSkipped:
		fmt.Printf("\nNot stored: %s\n", outcome.Reason)
	}
	return nil
}
