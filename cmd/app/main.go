package main

import (
	"context"
	"embed"
	"fmt"

	"elobot/internal/application"
	"elobot/internal/delivery/discord"
	"elobot/internal/metrics"
	"elobot/internal/repository"
	"elobot/pkg/config"
	"elobot/pkg/logger"
	service "elobot/pkg/services"
	"elobot/pkg/sheets"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func main() {
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.ReadEnvConfig(&cfg); err != nil {
		panic(err)
	}

	log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, &cfg, log)
	if err != nil {
		log.Error("failed to init store: %s", err.Error())
		return
	}
	defer store.Close()

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		log.Error("failed to create discord session: %s", err.Error())
		return
	}

	var sheetsClient application.SheetsClient
	if cfg.GoogleCredentialsFile != "" {
		client, err := sheets.NewGoogleSheetsClient(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Warn("google sheets disabled: %s", err.Error())
		} else {
			sheetsClient = client
		}
	}

	m := metrics.New("elobot")
	platform := discord.NewPlatform(session, cfg.GuildID, cfg.AdminRoleID, log)
	services := application.NewService(store, platform, platform, sheetsClient, application.Options{
		Timing: application.Timing{
			ChallengeTimeout: cfg.ChallengeTimeout,
			ReportWindow:     cfg.ReportWindow,
			SweepInterval:    cfg.SweepInterval,
		},
		Venue: cfg.AllowedChannelID,
		Sheets: application.SheetsTarget{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			OwnerEmail:    cfg.GoogleOwnerEmail,
		},
		Clock:   clockwork.NewRealClock(),
		Metrics: m,
	}, log)

	bot := discord.NewBot(session, discord.Options{
		GuildID:          cfg.GuildID,
		AllowedChannelID: cfg.AllowedChannelID,
		AdminUserIDs:     cfg.AdminUserIDs,
		AdminRoleID:      cfg.AdminRoleID,
		ChallengeTimeout: cfg.ChallengeTimeout,
		ReportWindow:     cfg.ReportWindow,
	}, services, log)

	manager := service.NewManager(log)
	if cfg.MetricsAddr != "" {
		manager.AddService(metrics.NewServer(cfg.MetricsAddr, m, log))
	}
	manager.AddService(bot, services.Sweeper)

	if err := manager.Run(ctx); err != nil {
		log.Error("failed to run services: %s", err.Error())
		return
	}
	log.Info("Bot Stopped")
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Info("Using redis store")
		return repository.NewRedisStore(rdb), nil
	default:
		db, err := repository.NewPostgresDB(&cfg.Repo)
		if err != nil {
			return nil, err
		}

		log.Info("Running migrations...")
		version, err := repository.RunMigrations(db, migrationFS, "migrations")
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Migrations applied successfully, schema version %d", version)
		return repository.NewRepository(db), nil
	}
}
