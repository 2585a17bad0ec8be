package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Reports.ItemDelay)
	assert.Equal(t, 50, cfg.Reports.MaxBatch)
	assert.Equal(t, "de", cfg.Reports.Locale)
	assert.Equal(t, time.Sunday, cfg.Calendar.WeekStart)
	assert.Equal(t, 2, cfg.Calendar.InlineLimit)
	assert.Equal(t, []string{"SS25", "WS25"}, cfg.Profiles.Semesters)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9090")
	t.Setenv("EXPORT_ITEM_DELAY", "2s")
	t.Setenv("CALENDAR_WEEK_START", "monday")
	t.Setenv("SEMESTERS", "SS26, WS26 ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Reports.ItemDelay)
	assert.Equal(t, time.Monday, cfg.Calendar.WeekStart)
	assert.Equal(t, []string{"SS26", "WS26"}, cfg.Profiles.Semesters)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("nope", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(filepath.Clean(dir)))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
