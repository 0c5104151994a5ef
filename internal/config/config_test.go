package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadSiteConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadSiteConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultSiteConfig(), cfg)
	require.False(t, cfg.IncludeLastLocation)
}

func TestLoadSiteConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
menu_url: https://example.test/menu/
include_last_location: true
selectors:
  menu_item: li.dish
timeouts:
  menu: 30s
  expanded_content: 750ms
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := LoadSiteConfig(path)
	require.NoError(t, err)

	require.Equal(t, "https://example.test/menu/", cfg.MenuURL)
	require.True(t, cfg.IncludeLastLocation)
	require.Equal(t, "li.dish", cfg.Selectors.MenuItem)
	require.Equal(t, 30*time.Second, cfg.Timeouts.Menu)
	require.Equal(t, 750*time.Millisecond, cfg.Timeouts.ExpandedContent)

	// untouched keys keep their defaults
	def := DefaultSiteConfig()
	require.Equal(t, def.Selectors.NutritionPanel, cfg.Selectors.NutritionPanel)
	require.Equal(t, def.Timeouts.Nutrition, cfg.Timeouts.Nutrition)
}

func TestLoadSiteConfigRejectsEmptyURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("menu_url: \"\"\n"), 0o644))

	_, err := LoadSiteConfig(path)
	require.Error(t, err)
}

func TestGetAppConfigDefaults(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("OUTPUT_DIR", "")
	t.Setenv("PORT", "")

	cfg, err := GetAppConfig()
	require.NoError(t, err)
	require.Equal(t, "public/data", cfg.OutputDir)
	require.Equal(t, "config.yaml", cfg.ConfigPath)
	require.Equal(t, "3000", cfg.Port)
}
