// Package main contains the entrypoint for the NeuroMirror backend.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/neuromirror/backend/internal/config"
	"github.com/neuromirror/backend/internal/database"
	"github.com/neuromirror/backend/internal/gemini"
	"github.com/neuromirror/backend/internal/logger"
	"github.com/neuromirror/backend/internal/scheduler"
	"github.com/neuromirror/backend/internal/server"
	"github.com/neuromirror/backend/internal/vision"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components (config, logger, db, classifier, Gemini
// client, HTTP server, scheduler), runs them until the context is cancelled,
// and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var generator gemini.Client
	if cfg.Gemini.APIKey != "" {
		generator, err = gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return 1
		}
	} else {
		log.Warn("Gemini API key not configured, serving fallback content only")
	}

	classifier, err := buildClassifier(cfg.Vision, generator, log)
	if err != nil {
		log.Error("Failed to initialize emotion classifier", "error", err)
		return 1
	}

	sched, err := scheduler.New(log, cfg.Maintenance, store)
	if err != nil {
		log.Error("Failed to initialize scheduler", "error", err)
		return 1
	}

	srv := server.New(cfg.Server, log, server.Deps{
		Logger:     log,
		Store:      store,
		Classifier: classifier,
		Generator:  generator,
	})

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gCtx)
	})

	g.Go(func() error {
		if err := sched.Start(); err != nil {
			return err
		}
		<-gCtx.Done()
		return sched.Stop()
	})

	log.Info("NeuroMirror backend running", "addr", cfg.Server.Addr)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Service stopped due to error", "error", err)
		return 1
	}

	log.Info("Service stopped gracefully.")
	return 0
}

// buildClassifier selects the classifier backend from configuration. The
// gemini backend reuses the generation client; it requires an API key.
func buildClassifier(cfg config.VisionConfig, generator gemini.Client, log *slog.Logger) (vision.Classifier, error) {
	switch cfg.Backend {
	case "gemini":
		if generator == nil {
			return nil, errors.New("vision backend \"gemini\" requires a Gemini API key")
		}
		return generator, nil
	default:
		return vision.NewFERClient(cfg.FERURL, cfg.Timeout, log)
	}
}
