package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Graz", cfg.Region.City)
	assert.Equal(t, "Graz, Austria", cfg.Region.Fallback())
	assert.Equal(t, 6, cfg.Region.AdminLevel)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Overpass.BaseURL)
	assert.Equal(t, 3, cfg.Overpass.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Overpass.CourtesyPause)
	assert.Equal(t, []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second}, cfg.Overpass.BackoffSchedule)
	assert.Len(t, cfg.Overpass.Amenities, 6)
	assert.Equal(t, 8, cfg.Search.MaxResults)
	assert.Equal(t, 3*time.Second, cfg.Search.Delay)
	assert.Equal(t, 2*time.Second, cfg.Scrape.EntityDelay)
	assert.Equal(t, time.Second, cfg.Scrape.SubfetchDelay)
	assert.Equal(t, 15*time.Second, cfg.Scrape.Timeout)
	assert.Equal(t, 3, cfg.Scrape.MinItems)
	assert.Equal(t, 20*time.Second, cfg.Browser.NavTimeout)
	assert.Equal(t, []string{"chrome"}, cfg.Browser.Renderers)
	assert.Equal(t, 5, cfg.Vision.MaxPages)
	assert.Equal(t, int64(20*1024*1024), cfg.Vision.MaxFileBytes)
	assert.Equal(t, "fitz", cfg.Vision.OCR.Provider)
	assert.Equal(t, int64(4000), cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 0.1, cfg.Anthropic.Temperature, 0.001)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data", cfg.Output.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
region:
  city: Wien
overpass:
  backoff_schedule: ["1s", "2s"]
scrape:
  entity_delay: 500ms
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Wien", cfg.Region.City)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, cfg.Overpass.BackoffSchedule)
	assert.Equal(t, 500*time.Millisecond, cfg.Scrape.EntityDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, "Austria", cfg.Region.Country)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("GRAZBITES_STORE_DRIVER", "postgres")
	t.Setenv("GRAZBITES_LOG_LEVEL", "warn")
	t.Setenv("GRAZBITES_ANTHROPIC_KEY", "sk-ant-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.Key)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("region: [unclosed"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}

// validDefaults returns a Config with the scrape defaults populated.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Region.City = "Graz"
	cfg.Overpass.BaseURL = "https://overpass.example"
	cfg.Overpass.MaxAttempts = 3
	cfg.Overpass.Amenities = []string{"restaurant"}
	cfg.Browser.Renderers = []string{"chrome"}
	cfg.Search.MaxResults = 8
	cfg.Store.Driver = "sqlite"
	return cfg
}

func TestValidateScrape(t *testing.T) {
	assert.NoError(t, validDefaults().Validate(ModeScrape))

	cfg := validDefaults()
	cfg.Overpass.BaseURL = ""
	cfg.Browser.Renderers = []string{"chrome", "lynx"}
	err := cfg.Validate(ModeScrape)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overpass.base_url is required")
	assert.Contains(t, err.Error(), "unknown renderer lynx")
}

func TestValidateDiscover(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate(ModeDiscover)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jina.key is required")

	cfg.Jina.Key = "jina_test"
	assert.NoError(t, cfg.Validate(ModeDiscover))
}

func TestValidateVision(t *testing.T) {
	cfg := validDefaults()
	assert.Error(t, cfg.Validate(ModeVision))
	cfg.Anthropic.Key = "sk-ant"
	assert.NoError(t, cfg.Validate(ModeVision))
}

func TestValidateSeed(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate(ModeSeed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "data/test.db"
	assert.NoError(t, cfg.Validate(ModeSeed))

	cfg.Store.Driver = "mysql"
	assert.Error(t, cfg.Validate(ModeSeed))
}

func TestValidateUnknownMode(t *testing.T) {
	assert.Error(t, validDefaults().Validate("serve"))
}
