package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tripbot/tripbot/internal/api"
	"github.com/tripbot/tripbot/internal/config"
	"github.com/tripbot/tripbot/internal/extract"
	"github.com/tripbot/tripbot/internal/handlers"
	"github.com/tripbot/tripbot/internal/index"
	"github.com/tripbot/tripbot/internal/publish"
	"github.com/tripbot/tripbot/internal/scraper"
	"github.com/tripbot/tripbot/internal/store"
	"github.com/tripbot/tripbot/internal/syncer"
	"github.com/tripbot/tripbot/internal/telegram"
	"github.com/tripbot/tripbot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting tripbot...")

	// Trip state
	st := store.New(cfg.StateFilePath, l)
	st.Load()
	l.Infof("State file: %s", st.Path())

	// External collaborators
	extractor := extract.New(cfg.OpenAIAPIKey, cfg.ExtractTimeout, l)
	if !extractor.Enabled() {
		l.Warn("OPENAI_API_KEY not set, criteria extraction and /ask are degraded")
	}
	scraperClient := scraper.NewClient(cfg.ScraperURL, l)
	indexClient := index.NewClient(cfg.ChromaURL, l)
	publisher := publish.NewClient(cfg.ScraperURL, func() string {
		return st.SyncConfig().DocURL
	}, l)

	// Snapshot syncer, wired back into the store as its mutation trigger
	sy := syncer.New(st, publisher, cfg.PublishTimeout, l)
	st.SetSyncTrigger(sy)

	// Telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, l)
	if err != nil {
		l.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// Register command handlers
	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))

	// Conversation handlers
	bot.RegisterCommand("track", handlers.NewTrackHandler(st, l))
	bot.RegisterCommand("reset", handlers.NewResetHandler(indexClient, l))
	bot.RegisterCommand("ask", handlers.NewAskHandler(st, extractor, indexClient, l))

	// Search handlers
	bot.RegisterCommand("venue", handlers.NewVenueHandler(st, extractor, scraperClient,
		cfg.VenuePageSize, cfg.MaxVenuesToStore, cfg.VenueSearchTimeout, l))
	bot.RegisterCommand("flight", handlers.NewFlightHandler(st, extractor, scraperClient,
		cfg.MaxFlightsToStore, cfg.FlightSearchTimeout, l))

	// Item handlers
	bot.RegisterCommand("list", handlers.NewListHandler(st, l))
	bot.RegisterCommand("show", handlers.NewShowHandler(st, l))
	bot.RegisterCommand("comment", handlers.NewCommentHandler(st, indexClient, l))
	bot.RegisterCommand("official", handlers.NewOfficialHandler(st, l))
	bot.RegisterCommand("delete", handlers.NewDeleteHandler(st, indexClient, l))

	// Document handlers
	bot.RegisterCommand("doc", handlers.NewDocHandler(st, extractor, l))
	bot.RegisterCommand("docs", handlers.NewDocsHandler(st, indexClient, l))

	// Trip handlers
	bot.RegisterCommand("trip", handlers.NewTripHandler(st, l))
	bot.RegisterCommand("budget", handlers.NewBudgetHandler(st, extractor, l))
	bot.RegisterCommand("status", handlers.NewStatusHandler(st, indexClient, l))
	bot.RegisterCommand("sync", handlers.NewSyncHandler(st, sy, l))

	// Plain messages: tracking, indexing and travel-link auto-saving
	bot.SetDefaultHandler(handlers.NewChatterHandler(st, scraperClient, indexClient, cfg.ScrapeTimeout, l))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Start HTTP server for the read-only API and metrics
	apiServer := api.NewServer(st, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	// Start Telegram bot polling
	go func() {
		if err := bot.Start(ctx); err != nil {
			l.Errorf("Bot error: %v", err)
		}
	}()

	l.Info("tripbot started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()

	l.Info("tripbot stopped")
}
