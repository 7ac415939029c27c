package config

import (
	"testing"
	"time"
)

func TestReadEnvConfigDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("GUILD_ID", "42")
	t.Setenv("ADMIN_USER_IDS", "1,2")

	var cfg Config
	if err := ReadEnvConfig(&cfg); err != nil {
		t.Fatalf("ReadEnvConfig: %v", err)
	}
	if cfg.ChallengeTimeout != 240*time.Second || cfg.ReportWindow != time.Hour || cfg.SweepInterval != 5*time.Minute {
		t.Errorf("timings = %s/%s/%s", cfg.ChallengeTimeout, cfg.ReportWindow, cfg.SweepInterval)
	}
	if cfg.StoreDriver != StorePostgres || cfg.Repo.Port != "5432" {
		t.Errorf("store = %q port %q", cfg.StoreDriver, cfg.Repo.Port)
	}
	if len(cfg.AdminUserIDs) != 2 || cfg.AdminUserIDs[1] != "2" {
		t.Errorf("admins = %v", cfg.AdminUserIDs)
	}
}

func TestReadEnvConfigRejectsBadValues(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("GUILD_ID", "42")

	t.Run("driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")
		var cfg Config
		if err := ReadEnvConfig(&cfg); err == nil {
			t.Error("expected error for unknown driver")
		}
	})
	t.Run("duration", func(t *testing.T) {
		t.Setenv("REPORT_WINDOW", "0s")
		var cfg Config
		if err := ReadEnvConfig(&cfg); err == nil {
			t.Error("expected error for zero report window")
		}
	})
	t.Run("required", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")
		var cfg Config
		if err := ReadEnvConfig(&cfg); err == nil {
			t.Error("expected error without token")
		}
	})
}
