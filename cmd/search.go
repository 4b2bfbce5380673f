package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jairbenitez29/blueedu/pkg/config"
	"github.com/jairbenitez29/blueedu/pkg/search"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Margin(1, 0, 1, 0)

	hitStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run a hybrid search (local records + web)",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "local-only",
				Usage: "Skip the external web search",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if query == "" {
				return fmt.Errorf("query argument required")
			}
			return runSearch(ctx, c.String("config"), query, c.Bool("local-only"))
		},
	}
}

func runSearch(ctx context.Context, configPath, query string, localOnly bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	var svc *search.Service
	if localOnly {
		svc = search.NewService(store, nil)
	} else {
		svc = search.NewService(store, newWebClient(cfg, store))
	}

	envelope, err := svc.Aggregate(ctx, query)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Results for %q", query)))

	caser := cases.Title(language.Spanish)
	printSection := func(kind string, count int) {
		fmt.Println(headerStyle.Render(fmt.Sprintf("%s (%d)", caser.String(kind), count)))
	}

	printSection("artículos", len(envelope.Local.Articles))
	for _, hit := range envelope.Local.Articles {
		body := fmt.Sprintf("%s\n%s", hit.Title, metaStyle.Render(
			fmt.Sprintf("%s · %s", hit.Category, hit.Date.Format("2006-01-02"))))
		fmt.Println(hitStyle.Render(body))
	}

	printSection("especies", len(envelope.Local.Species))
	for _, hit := range envelope.Local.Species {
		body := fmt.Sprintf("%s\n%s", hit.Title, metaStyle.Render(hit.Description))
		fmt.Println(hitStyle.Render(body))
	}

	printSection("ecosistemas", len(envelope.Local.Ecosystems))
	for _, hit := range envelope.Local.Ecosystems {
		body := fmt.Sprintf("%s\n%s", hit.Title, metaStyle.Render(
			fmt.Sprintf("%s · salud %.1f%%", hit.Description, hit.Health)))
		fmt.Println(hitStyle.Render(body))
	}

	if !localOnly {
		printSection("web", len(envelope.Web))
		for _, result := range envelope.Web {
			body := fmt.Sprintf("%s\n%s\n%s", result.Title,
				metaStyle.Render(result.Description), urlStyle.Render(result.URL))
			fmt.Println(hitStyle.Render(body))
		}
	}

	if envelope.TotalLocal == 0 && envelope.TotalWeb == 0 {
		fmt.Println(noDataStyle.Render("No results found."))
	}

	fmt.Printf("Total: %d local, %d web\n", envelope.TotalLocal, envelope.TotalWeb)
	return nil
}
