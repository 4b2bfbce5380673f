package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jairbenitez29/blueedu/pkg/api"
	"github.com/jairbenitez29/blueedu/pkg/config"
	"github.com/jairbenitez29/blueedu/pkg/extractor"
	"github.com/jairbenitez29/blueedu/pkg/indicators"
	"github.com/jairbenitez29/blueedu/pkg/ingest"
	"github.com/jairbenitez29/blueedu/pkg/realtime"
	"github.com/jairbenitez29/blueedu/pkg/search"
	"github.com/jairbenitez29/blueedu/pkg/storage"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"))
		},
	}
}

func serve(ctx context.Context, configPath, listenOverride string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if listenOverride != "" {
		cfg.ListenAddr = listenOverride
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	// The web client sits behind a swappable holder so a config reload can
	// replace credentials and TTLs while the server keeps running.
	webClient := &swappableWebClient{}
	webClient.Store(newWebClient(cfg, store))
	if cfg.WebSearch.APIKey == "" || cfg.WebSearch.SearchEngineID == "" {
		log.Printf("Google Search credentials not set; web search disabled")
	}

	hub := realtime.NewHub(64)
	indicatorCache := indicators.NewCache(
		indicators.NewClient(indicators.Config{}),
		cfg.Indicators.CacheTTL.Duration,
	)

	server := api.NewServer(api.Deps{
		Store:      store,
		Search:     search.NewService(store, webClient),
		Extractor:  extractor.New(cfg.Extractor.Timeout.Duration),
		Sink:       ingest.NewSink(store, hub),
		Indicators: indicatorCache,
		Hub:        hub,
	})

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.CorsMiddleware(mux),
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Keep the indicator panel warm in the background.
	go func() {
		indicatorCache.Get(serveCtx)
		ticker := time.NewTicker(cfg.Indicators.RefreshInterval.Duration)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				indicatorCache.Refresh(serveCtx)
			case <-serveCtx.Done():
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("API server listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Watch the config file so credential or tuning changes apply without a
	// restart.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Warning: failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Printf("Warning: failed to close config file watcher: %v", err)
			}
		}()
		if err := watcher.Add(configPath); err != nil {
			log.Printf("Warning: failed to watch config file %s: %v", configPath, err)
		} else {
			log.Printf("Watching config file for changes: %s", configPath)
		}
	}

	fmt.Println("Server started. Press Ctrl+C to stop, send SIGHUP to reload, or modify config file for automatic reload.")

	for {
		select {
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading configuration...")
				reloadWebClient(configPath, store, webClient)
			case syscall.SIGINT, syscall.SIGTERM:
				fmt.Println("\nShutting down...")
				cancel()
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		case event, ok := <-watcher.Events:
			if !ok {
				continue
			}
			// Editors often replace the file, so rename/remove count as
			// changes too.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				log.Printf("Config file changed: %s (event: %s), reloading...", event.Name, event.Op.String())

				if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					time.Sleep(200 * time.Millisecond)
					if _, err := os.Stat(configPath); os.IsNotExist(err) {
						log.Printf("Config file was removed and not replaced, skipping reload")
						continue
					}
					if err := watcher.Add(configPath); err != nil {
						log.Printf("Warning: failed to re-add config file to watcher: %v", err)
					}
				} else {
					time.Sleep(100 * time.Millisecond)
				}

				reloadWebClient(configPath, store, webClient)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				continue
			}
			log.Printf("Config file watcher error: %v", err)
		}
	}
}

// reloadWebClient re-reads the config and swaps in a fresh search client.
// Storage and listen settings need a restart; only the web search side is
// hot-reloadable.
func reloadWebClient(configPath string, cache *storage.Store, holder *swappableWebClient) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Failed to reload configuration: %v", err)
		return
	}
	holder.Store(newWebClient(cfg, cache))
	log.Println("Configuration reloaded successfully")
}
