package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("fails without a database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/splitledger")
		t.Setenv("LISTEN_ADDR", "")
		t.Setenv("SETTLE_DUE_DAYS", "")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, ":8080", cfg.ListenAddr)
		require.Equal(t, DefaultDueDays, cfg.DueDays)
	})

	t.Run("reads the due-day policy", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/splitledger")
		t.Setenv("SETTLE_DUE_DAYS", "14")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 14, cfg.DueDays)
	})

	t.Run("ignores invalid due-day values", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/splitledger")

		for _, bad := range []string{"abc", "-5", "0"} {
			t.Setenv("SETTLE_DUE_DAYS", bad)
			cfg, err := Load()
			require.NoError(t, err)
			require.Equal(t, DefaultDueDays, cfg.DueDays, "value %q", bad)
		}
	})

	t.Run("reads listen addr and log level", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/splitledger")
		t.Setenv("LISTEN_ADDR", ":9000")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, ":9000", cfg.ListenAddr)
		require.Equal(t, "debug", cfg.LogLevel)
	})
}
