package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"congresswire/app/api"
	"congresswire/app/bluesky"
	"congresswire/app/cfg"
	"congresswire/app/congress"
	"congresswire/app/database"
	"congresswire/app/fetch"
	"congresswire/app/publish"
	"congresswire/app/retry"
	"congresswire/app/summarize"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Optional .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 2
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return 0
	}

	setupLogger(appCfg.Debug)

	if appCfg.Command == "" {
		fmt.Fprintln(os.Stderr, "Usage: congresswire [options] <fetch|publish|summarize|stats|serve>")
		return 2
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		return 1
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return 1
	}
	slog.Debug("Database ready", "schema_version", version, "dirty", dirty)

	repo := database.NewItemRepository(db)
	policy := retry.NewPolicy(appCfg.RetryMaxAttempts, time.Duration(appCfg.RetryBaseDelayMS)*time.Millisecond)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch appCfg.Command {
	case "fetch":
		return runFetch(ctx, appCfg, repo, policy)
	case "publish":
		return runPublish(ctx, appCfg, repo, policy)
	case "summarize":
		return runSummarize(ctx, appCfg, repo, policy)
	case "stats":
		return runStats(repo)
	case "serve":
		return runServe(ctx, appCfg, repo)
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n", appCfg.Command)
	return 2
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// targetDate resolves the --date flag, defaulting to yesterday.
func targetDate(appCfg *cfg.Cfg) (time.Time, error) {
	if appCfg.Date == "" {
		yesterday := time.Now().In(time.Local).AddDate(0, 0, -1)
		return time.Parse(database.DateLayout, yesterday.Format(database.DateLayout))
	}
	date, err := time.Parse(database.DateLayout, appCfg.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", appCfg.Date, err)
	}
	return date, nil
}

func runFetch(ctx context.Context, appCfg *cfg.Cfg, repo database.ItemRepository, policy retry.Policy) int {
	date, err := targetDate(appCfg)
	if err != nil {
		slog.Error("Invalid target date", "error", err)
		return 2
	}

	client := congress.NewClient(appCfg.CongressAPIBase, appCfg.CongressAPIKey, appCfg.UserAgent)
	coordinator := fetch.NewCoordinator(client, repo, policy)

	report := coordinator.Run(ctx, date)

	fmt.Printf("Fetched activity for %s: %d created, %d updated\n",
		date.Format(database.DateLayout), report.Created, report.Updated)
	for _, kind := range report.Failed {
		fmt.Printf("  %s: fetch failed\n", kind)
	}

	if report.AllFailed() {
		return 1
	}
	return 0
}

func runPublish(ctx context.Context, appCfg *cfg.Cfg, repo database.ItemRepository, policy retry.Policy) int {
	maxItems := appCfg.BatchSize
	if appCfg.MaxItems > 0 {
		maxItems = appCfg.MaxItems
	}

	// --date restricts the batch; without it any eligible item is fair
	// game, oldest first.
	var date *time.Time
	if appCfg.Date != "" {
		parsed, err := targetDate(appCfg)
		if err != nil {
			slog.Error("Invalid target date", "error", err)
			return 2
		}
		date = &parsed
	}

	sink := bluesky.NewClient(appCfg.BlueskyHost, appCfg.BlueskyHandle, appCfg.BlueskyPassword)
	scheduler := publish.NewScheduler(repo, sink, policy, appCfg.MaxPostAttempts)

	report, err := scheduler.RunBatch(ctx, maxItems, date, appCfg.DryRun)
	if err != nil {
		slog.Error("Publish batch failed", "error", err)
		return 1
	}

	if report.DryRun {
		fmt.Printf("Dry run: %d posts would be published\n", len(report.Rendered))
		for _, post := range report.Rendered {
			fmt.Printf("--- [%s]\n%s\n", post.Kind, post.Text)
		}
		return 0
	}

	fmt.Printf("Published %d items (%d skipped, %d failed)\n",
		report.Posted, report.Skipped, report.Failed)

	if report.AllFailed() {
		return 1
	}
	return 0
}

func runSummarize(ctx context.Context, appCfg *cfg.Cfg, repo database.ItemRepository, policy retry.Policy) int {
	if appCfg.AnthropicAPIKey == "" {
		slog.Warn("Anthropic API key not configured, summarization disabled")
		return 0
	}

	date, err := targetDate(appCfg)
	if err != nil {
		slog.Error("Invalid target date", "error", err)
		return 2
	}

	batchSize := appCfg.BatchSize
	if appCfg.MaxItems > 0 {
		batchSize = appCfg.MaxItems
	}

	client := summarize.NewAnthropicClient(appCfg.AnthropicAPIBase, appCfg.AnthropicAPIKey, appCfg.AnthropicModel)
	enricher := summarize.NewEnricher(repo, client, policy, batchSize)

	report, err := enricher.Run(ctx, date)
	if err != nil {
		slog.Error("Summarization failed", "error", err)
		return 1
	}

	fmt.Printf("Summarized %d items for %s (%d failed)\n",
		report.Summarized, date.Format(database.DateLayout), report.Failed)
	return 0
}

func runStats(repo database.ItemRepository) int {
	stats, err := repo.Stats()
	if err != nil {
		slog.Error("Failed to read stats", "error", err)
		return 1
	}

	fmt.Printf("Items: %d total, %d unposted\n", stats.Total(), stats.Unposted())
	for _, kind := range database.Kinds {
		counts := stats.ByKind[kind]
		fmt.Printf("  %-7s posted: %d, unposted: %d\n", kind, counts.Posted, counts.Unposted)
	}
	return 0
}

func runServe(ctx context.Context, appCfg *cfg.Cfg, repo database.ItemRepository) int {
	handler := api.NewHandler(repo)
	server := api.NewServer(handler, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
		return 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return 1
	}

	slog.Info("Server shutdown complete")
	return 0
}
