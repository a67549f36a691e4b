package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofit/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, uint(10000), cfg.Bootstrap.Datasets)
	assert.GreaterOrEqual(t, cfg.Bootstrap.Workers, 1)
	assert.Equal(t, "fit_report.xlsx", cfg.Export.ExcelFile)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOOTSTRAP_DATASETS", "500")
	t.Setenv("BOOTSTRAP_WORKERS", "2")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("EXPORT_DIR", "/tmp/reports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, uint(500), cfg.Bootstrap.Datasets)
	assert.Equal(t, 2, cfg.Bootstrap.Workers)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/tmp/reports", cfg.Export.Dir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BOOTSTRAP_WORKERS", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
