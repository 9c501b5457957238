package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Digits)
	assert.Equal(t, 2000, cfg.MaxDigits)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/apery.db", cfg.DBPath)
	assert.Empty(t, cfg.Catalog)
	assert.Empty(t, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APERY_DIGITS", "120")
	t.Setenv("APERY_WORKERS", "3")
	t.Setenv("APERY_LOG_LEVEL", "DEBUG")
	t.Setenv("APERY_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Digits)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"not an int":      {"APERY_DIGITS": "many"},
		"zero digits":     {"APERY_DIGITS": "0"},
		"above limit":     {"APERY_DIGITS": "2000000"},
		"huge ceiling":    {"APERY_MAX_DIGITS": "100000000"},
		"negative worker": {"APERY_WORKERS": "-1"},
		"bad level":       {"APERY_LOG_LEVEL": "loud"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDigitsAboveRequestCeiling(t *testing.T) {
	t.Setenv("APERY_DIGITS", "5000")
	t.Setenv("APERY_MAX_DIGITS", "1000")

	// One-shot commands may exceed the per-request ceiling.
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Digits)

	err = cfg.ValidateServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APERY_MAX_DIGITS")
	assert.NotContains(t, err.Error(), "APERY_DIGITS ")

	cfg.Digits = 1000
	assert.NoError(t, cfg.ValidateServe())
}
