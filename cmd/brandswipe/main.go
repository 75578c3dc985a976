package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/vbonduro/brandswipe/internal/catalog"
	"github.com/vbonduro/brandswipe/internal/config"
	"github.com/vbonduro/brandswipe/internal/db"
	"github.com/vbonduro/brandswipe/internal/ledger"
	"github.com/vbonduro/brandswipe/internal/logging"
	"github.com/vbonduro/brandswipe/internal/mediastore/local"
	"github.com/vbonduro/brandswipe/internal/session"
	"github.com/vbonduro/brandswipe/internal/store"
	"github.com/vbonduro/brandswipe/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	err = run(cfg, logger)
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath, cfg.MediaDir)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		fmt.Fprintln(os.Stderr, catalog.SetupHelp)
		return err
	}
	logger.Info("catalog loaded", "path", cfg.CatalogPath, "items", cat.Len())

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			logger.Error("failed to create database directory", "dir", dir, "error", err)
			return err
		}
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	votes := ledger.NewService(store.NewVoteStore(database), logger)

	if cfg.ImportVotesCSV != "" {
		if err := importVotes(ctx, votes, cfg.ImportVotesCSV); err != nil {
			logger.Error("failed to import votes", "path", cfg.ImportVotesCSV, "error", err)
			return err
		}
	}

	media, err := local.NewLocalMediaStore(cfg.MediaDir)
	if err != nil {
		logger.Error("failed to initialize media store", "error", err)
		return err
	}

	if cfg.AdminPassword == "" {
		logger.Info("ADMIN_PASSWORD not set, admin routes disabled")
	}

	sessions := session.NewRepository(cfg.SessionTTL)
	server := web.NewServer(votes, cat, media, sessions, web.Options{
		AdminPassword: cfg.AdminPassword,
		ReportLimit:   cfg.ReportLimit,
	}, logger)

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func importVotes(ctx context.Context, votes *ledger.Service, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = votes.ImportCSV(ctx, f)
	return err
}
