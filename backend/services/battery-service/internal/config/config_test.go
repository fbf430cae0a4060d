package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"CONFIG_FILE", "DOTENV_FILE",
	"BATTERY_HTTP_PORT", "BATTERY_STORAGE_DRIVER", "BATTERY_POSTGRES_DSN",
	"BATTERY_MONGO_URI", "BATTERY_MONGO_DATABASE", "BATTERY_MONGO_COLLECTION",
	"BATTERY_REDIS_ADDR", "BATTERY_REDIS_PASSWORD", "BATTERY_REDIS_DB", "BATTERY_REDIS_TTL",
}

// isolate runs the test from an empty directory with no battery variables set.
func isolate(t *testing.T) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaultsRequireDSN(t *testing.T) {
	isolate(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database dsn required")
}

func TestLoadPostgresDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("BATTERY_POSTGRES_DSN", "postgres://localhost/batteries")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, 300*time.Second, cfg.CacheTTL())
	assert.Equal(t, "batteryhub", cfg.Mongo.Database)
	assert.Equal(t, "battery", cfg.Mongo.Collection)
}

func TestLoadMongoRequiresURI(t *testing.T) {
	isolate(t)
	t.Setenv("BATTERY_STORAGE_DRIVER", "Mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo uri required")

	t.Setenv("BATTERY_MONGO_URI", "mongodb://localhost:27017")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.Storage.Driver)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	isolate(t)
	t.Setenv("BATTERY_STORAGE_DRIVER", "cassandra")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage driver "cassandra"`)
}

func TestLoadFromYAMLAndDotEnv(t *testing.T) {
	isolate(t)

	yamlPath := filepath.Join(t.TempDir(), "battery.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
http:
  port: "9090"
storage:
  driver: memory
redis:
  addr: localhost:6379
  ttlSeconds: 60
`), 0o600))
	t.Setenv("CONFIG_FILE", yamlPath)
	require.NoError(t, os.WriteFile(".env", []byte("BATTERY_REDIS_PASSWORD=secret\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BATTERY_REDIS_PASSWORD") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, "secret", cfg.Redis.Password)
}

func TestHTTPAddressKeepsColonPrefix(t *testing.T) {
	cfg := &Config{}
	cfg.HTTP.Port = ":7000"
	assert.Equal(t, ":7000", cfg.HTTPAddress())
}
