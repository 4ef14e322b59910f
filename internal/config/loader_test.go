package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Engine.LeaseTimeout)
	assert.Equal(t, time.Hour, cfg.Engine.ProcessingRateWindow)
	assert.Equal(t, 24*time.Hour, cfg.Engine.RecrawlInterval)
	assert.Equal(t, "@every 1m", cfg.Engine.ReclaimSchedule)
	assert.True(t, cfg.Features.EnableLocks)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  driver: postgres
  host: db.internal
engine:
  claim_batch_size: 20
`), 0o600))

	t.Setenv("SCHOLAR_SERVER_PORT", "9100")
	t.Setenv("SCHOLAR_ENGINE_LEASE_TIMEOUT", "5m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Engine.LeaseTimeout)
	assert.Equal(t, 20, cfg.Engine.ClaimBatchSize)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db.internal port=5432 user=postgres password= dbname=scholarships sslmode=disable", cfg.Database.DSN())
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv("SCHOLAR_DATABASE_DRIVER", "mysql")

	_, err := Load("")
	assert.Error(t, err)
}
