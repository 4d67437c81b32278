package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskvault/internal/config"
	"taskvault/internal/fieldcrypt"
	"taskvault/internal/logger"
	"taskvault/internal/repository/postgres"
	"taskvault/internal/service"
	"taskvault/internal/session"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)
	logger.Info("starting field migration", "version", buildVersion, "build_date", buildDate)

	sessions := session.NewManager(cfg.Session.Secret)
	identity, err := sessions.ParseIdentity(cfg.Session.Token)
	if err != nil {
		logger.Fatal("failed to resolve identity from session token", "error", err)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	tasks := postgres.NewTaskRepository(db)

	// One key cache per run: a batch over thousands of records would
	// otherwise pay the PBKDF2 cost floor for every field.
	crypto := service.NewTaskCryptoWithKeys(fieldcrypt.NewKeyCache(), logger.Component("taskcrypto"))
	migration := service.NewMigration(tasks, crypto, logger.Component("migration"))

	onProgress := func(p service.Progress) {
		if cfg.Migration.ProgressEvery <= 0 {
			return
		}
		if p.Current%cfg.Migration.ProgressEvery == 0 || p.Current == p.Total {
			logger.Info("migration progress",
				"current", p.Current, "total", p.Total,
				"migrated", p.Migrated, "skipped", p.Skipped, "errors", p.Errors)
		}
	}

	summary, err := migration.Run(ctx, identity, onProgress)
	if err != nil {
		logger.Fatal("migration failed", "error", err)
	}

	logger.Info("migration complete",
		"migrated", summary.Migrated,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"total", summary.Total)

	if summary.Errors > 0 {
		logger.Warn("some tasks were not migrated, re-run to retry them",
			"errors", summary.Errors)
		os.Exit(1)
	}
}
