package cmd

import (
	"context"
	"fmt"

	"github.com/jairbenitez29/blueedu/pkg/indicators"
	"github.com/urfave/cli/v3"
)

// IndicatorsCommand creates the indicators command
func IndicatorsCommand() *cli.Command {
	return &cli.Command{
		Name:  "indicators",
		Usage: "Show the SDG 14 indicator panel",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showIndicators(ctx)
		},
	}
}

func showIndicators(ctx context.Context) error {
	client := indicators.NewClient(indicators.Config{})
	panel := client.Fetch(ctx)

	fmt.Println(titleStyle.Render("ODS 14: Vida Submarina"))
	for _, ind := range panel {
		line := fmt.Sprintf("%s: %s %s", ind.Name, ind.Value, ind.Unit)
		if ind.Trend != "" {
			line += fmt.Sprintf(" (%s)", ind.Trend)
		}
		fmt.Println(hitStyle.Render(fmt.Sprintf("%s\n%s", line,
			metaStyle.Render(fmt.Sprintf("%s · %s", ind.Source, ind.UpdatedAt)))))
	}
	return nil
}
