package config

import (
	"fmt"
	"time"

	"elobot/internal/repository"

	"github.com/caarlos0/env/v11"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Repo         repository.Config `envPrefix:"REPO_"`
	StoreDriver  string            `env:"STORE_DRIVER" envDefault:"postgres"`
	RedisURL     string            `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	DiscordToken string            `env:"DISCORD_TOKEN,required,notEmpty"`
	GuildID      string            `env:"GUILD_ID,required,notEmpty"`
	LogLevel     string            `env:"LOGGER_LEVEL" envDefault:"debug"`
	LogFormat    string            `env:"LOGGER_FORMAT" envDefault:"json"`

	AllowedChannelID string   `env:"ALLOWED_CHANNEL_ID" envDefault:""`
	AdminUserIDs     []string `env:"ADMIN_USER_IDS" envSeparator:"," envDefault:""`
	AdminRoleID      string   `env:"ADMIN_ROLE_ID" envDefault:""`

	ChallengeTimeout time.Duration `env:"CHALLENGE_TIMEOUT" envDefault:"240s"`
	ReportWindow     time.Duration `env:"REPORT_WINDOW" envDefault:"1h"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" envDefault:""`
	GoogleSpreadsheetID   string `env:"GOOGLE_SPREADSHEET_ID" envDefault:""`
	GoogleOwnerEmail      string `env:"GOOGLE_OWNER_EMAIL" envDefault:""`
}

func ReadEnvConfig(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return err
	}
	return cfg.validate()
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StorePostgres, StoreRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	for name, d := range map[string]time.Duration{
		"CHALLENGE_TIMEOUT": c.ChallengeTimeout,
		"REPORT_WINDOW":     c.ReportWindow,
		"SWEEP_INTERVAL":    c.SweepInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}
