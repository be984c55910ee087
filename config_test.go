// FILE: config_test.go
package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "bithumb", cfg.Exchange)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.HFMode)
	assert.Equal(t, 8080, cfg.Port)

	band := cfg.ActiveBand()
	assert.Equal(t, 0.005, band.BuyStep)
	assert.Equal(t, 1.3, band.MartingaleMul)
	assert.Equal(t, 30, band.VolHalflife)
}

func TestLoadConfigYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot_config.yaml")
	yaml := `
exchange: paper
hf_mode: false
port: 9999
strategy:
  default:
    buy_step: 0.02
    max_steps: 4
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "paper", cfg.Exchange)
	assert.False(t, cfg.HFMode)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, 0.02, cfg.Strategy.Default.BuyStep)
	assert.Equal(t, 4, cfg.Strategy.Default.MaxSteps)
	// Unset YAML keys keep their defaults.
	assert.Equal(t, 1.5, cfg.Strategy.Default.MartingaleMul)
}

func TestLoadConfigEnvWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exchange: paper\nport: 9000\n"), 0o644))

	t.Setenv("EXCHANGE", "binance")
	t.Setenv("BINANCE_SYMBOL", "BTCUSDT")
	t.Setenv("PORT", "7000")
	t.Setenv("HF_BUY_STEP", "0.011")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.Exchange)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 0.011, cfg.Strategy.HighFrequency.BuyStep)
}

func TestValidateRejectsBadBands(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"exchange", func(c *Config) { c.Exchange = "mtgox" }},
		{"buy_step", func(c *Config) { c.Strategy.Default.BuyStep = 0 }},
		{"martingale", func(c *Config) { c.Strategy.Default.MartingaleMul = 0.9 }},
		{"max_steps", func(c *Config) { c.Strategy.HighFrequency.MaxSteps = 0 }},
		{"vol_bounds", func(c *Config) { c.Strategy.Default.VolMax = 0.0001 }},
		{"sleep", func(c *Config) { c.Strategy.Default.SleepSeconds = 0 }},
		{"cancel_clamp", func(c *Config) { c.Strategy.Default.CancelMinWait = 60 }},
		{"failure_pause", func(c *Config) { c.Strategy.Default.FailurePauseMax = 1 }},
		{"port", func(c *Config) { c.Port = 0 }},
		{"binance_symbol", func(c *Config) { c.Exchange = "binance"; c.Binance.Symbol = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, validate(cfg))
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validate(defaultConfig()))
}

func TestLoadBotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "BOT_TEST_KEY=file-value\nexport BOT_TEST_QUOTED=\"quoted\"\n# comment\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("BOT_TEST_KEY", "process-value")
	loadBotEnv(path)

	assert.Equal(t, "process-value", os.Getenv("BOT_TEST_KEY"))
	assert.Equal(t, "quoted", os.Getenv("BOT_TEST_QUOTED"))
	t.Cleanup(func() { os.Unsetenv("BOT_TEST_QUOTED") })
}
