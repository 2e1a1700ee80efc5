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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thinkscotty/stylebot/internal/ai"
	"github.com/thinkscotty/stylebot/internal/bot"
	"github.com/thinkscotty/stylebot/internal/collector"
	"github.com/thinkscotty/stylebot/internal/config"
	"github.com/thinkscotty/stylebot/internal/content"
	"github.com/thinkscotty/stylebot/internal/corpus"
	"github.com/thinkscotty/stylebot/internal/database"
	"github.com/thinkscotty/stylebot/internal/scheduler"
	"github.com/thinkscotty/stylebot/internal/scraper"
	"github.com/thinkscotty/stylebot/internal/server"
	"github.com/thinkscotty/stylebot/internal/telegram"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	RunE:  runBot,
}

func newCollector(cfg config.Config) *collector.Collector {
	source := corpus.New(corpus.Options{
		BaseURL:     cfg.Corpus.BaseURL,
		UserAgent:   config.BrowserUserAgent,
		Timeout:     cfg.Corpus.RequestTimeout(),
		MinInterval: time.Duration(cfg.Corpus.MinIntervalMillis) * time.Millisecond,
	})
	return collector.New(source, collector.Options{
		MaxExamples:     cfg.Collector.MaxExamples,
		MinExamples:     cfg.Collector.MinExamples,
		ScanLimit:       cfg.Collector.ScanLimit,
		MinPostLen:      cfg.Collector.MinPostLen,
		DedupeThreshold: cfg.Collector.DedupeThreshold,
	})
}

func newExtractor(cfg config.Config) *content.Extractor {
	sc := scraper.New(config.BrowserUserAgent, cfg.Content.FetchTimeout())
	return content.New(sc, cfg.Content.MinTextLen, cfg.Content.MaxTextLen)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return err
	}

	slog.Info("Starting stylebot", "version", version)

	msgs, err := config.LoadMessages(cfg.MessagesFile)
	if err != nil {
		return err
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	slog.Info("Database initialized", "path", cfg.Database.Path)

	rewriter, err := ai.NewClientFromConfig(cfg.LLM)
	if err != nil {
		return err
	}

	api := telegram.NewAPI(&http.Client{Timeout: cfg.Telegram.PollTimeout() + 30*time.Second},
		cfg.Telegram.BaseURL, cfg.Telegram.Token)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	me, err := api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	slog.Info("Telegram bot authenticated", "username", me.Username, "provider", rewriter.Name(), "model", rewriter.Model())

	ctrl, err := bot.New(api, newCollector(cfg), newExtractor(cfg), rewriter, db, bot.Options{
		Messages:    msgs,
		FixedSource: cfg.Style.Source,
		MinExamples: cfg.Collector.MinExamples,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	sched := scheduler.New(db, cfg.Database.RetentionDays)
	g.Go(func() error {
		sched.Run(ctx)
		return nil
	})

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server, db, version)
		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	poller := telegram.NewPoller(api, cfg.Telegram.PollTimeout(), cfg.Telegram.MaxConcurrency)
	g.Go(func() error {
		poller.Run(ctx, ctrl.Handle)
		return nil
	})

	err = g.Wait()
	slog.Info("Shutting down...")
	return err
}
