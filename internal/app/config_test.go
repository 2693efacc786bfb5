package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_USER", "")
	t.Setenv("AUTH_PASSWORD_HASH", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "@every 60s", cfg.SheetRefreshSpec)
	require.Equal(t, 100, cfg.RowsPerPage)
	require.Equal(t, int64(20<<20), cfg.UploadMaxBytes)
	require.Equal(t, 5*time.Second, cfg.HintTimeout)
	require.False(t, cfg.AuthEnabled())
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresCompleteCredentials(t *testing.T) {
	t.Setenv("AUTH_USER", "admin")
	t.Setenv("AUTH_PASSWORD_HASH", "")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigRejectsBadLimits(t *testing.T) {
	t.Setenv("ROWS_PER_PAGE", "0")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", logLevel(&Config{LogLevel: "debug"}).String())
	require.Equal(t, "INFO", logLevel(&Config{LogLevel: "loud"}).String())
	require.Equal(t, "INFO", logLevel(nil).String())
}

func TestTestModeFlag(t *testing.T) {
	t.Setenv(testModeEnv, "true")
	RefreshTestMode()
	require.True(t, InTestMode())

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	require.False(t, InTestMode())
}
