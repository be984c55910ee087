// FILE: config.go
// Package main – Runtime configuration model and loader.
//
// Configuration values are merged from three sources, in order of precedence:
//   1) process environment (already hydrated from .env by loadBotEnv)
//   2) an optional YAML file (config/bot_config.yaml by default)
//   3) built-in defaults that are safe for dry-run simulations
//
// Two strategy bands exist, "default" and "high_frequency"; BOT_HF_MODE
// selects which one drives the loop. Band knobs are read with the DEFAULT_
// and HF_ env prefixes (e.g. HF_BUY_STEP, DEFAULT_MAX_STEPS).
//
// The merge happens exactly once at startup; the engine never reads ambient
// environment state mid-run.

package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StrategyBand holds every tunable of a single grid band. Immutable per run.
type StrategyBand struct {
	BuyStep        float64 `yaml:"buy_step"`
	MartingaleMul  float64 `yaml:"martingale_mul"`
	MaxSteps       int     `yaml:"max_steps"`
	BaseOrderValue float64 `yaml:"base_order_value"`

	TPMultiplier float64 `yaml:"tp_k"`
	SLMultiplier float64 `yaml:"sl_k"`
	TPFloor      float64 `yaml:"tp_floor"`
	SLFloor      float64 `yaml:"sl_floor"`

	VolHalflife int     `yaml:"vol_halflife"`
	VolMin      float64 `yaml:"vol_min"`
	VolMax      float64 `yaml:"vol_max"`

	SleepSeconds       float64 `yaml:"sleep_sec"`
	OrderCooldown      float64 `yaml:"order_cooldown"`
	MaxOrdersPerMinute int     `yaml:"max_orders_min"`

	CancelBaseWait    float64 `yaml:"cancel_base_wait"`
	CancelMinWait     float64 `yaml:"cancel_min_wait"`
	CancelMaxWait     float64 `yaml:"cancel_max_wait"`
	CancelVolumeScale float64 `yaml:"cancel_vol_scale"`

	FailurePauseSeconds  float64 `yaml:"failure_pause_seconds"`
	FailurePauseBackoff  float64 `yaml:"failure_pause_backoff"`
	FailurePauseMax      float64 `yaml:"failure_pause_max"`
	PostFillPauseSeconds float64 `yaml:"post_fill_pause_seconds"`
}

// BithumbSettings carries Bithumb REST credentials and endpoints.
type BithumbSettings struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

// BinanceSettings carries Binance spot credentials.
type BinanceSettings struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Symbol    string `yaml:"symbol"` // e.g. "USDTKRW" is not a Binance market; typically "BTCUSDT"
}

// MQTTSettings configures the optional metrics mirror.
type MQTTSettings struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	BaseTopic string `yaml:"base_topic"`
}

// Config holds all runtime knobs for trading and operations.
type Config struct {
	// Trading target
	Exchange        string `yaml:"exchange"`      // "bithumb" | "binance" | "paper"
	SymbolTicker    string `yaml:"symbol_ticker"` // e.g. "USDT_KRW"
	OrderCurrency   string `yaml:"order_currency"`
	PaymentCurrency string `yaml:"payment_currency"`

	// Modes
	DryRun          bool `yaml:"dry_run"`
	HFMode          bool `yaml:"hf_mode"`
	ResetBaseOnFlat bool `yaml:"reset_base_on_flat"` // re-anchor the ladder after a full exit

	// Ops
	Port              int    `yaml:"port"`
	DataDir           string `yaml:"data_dir"`
	MetricsFile       string `yaml:"metrics_file"`
	ReportPath        string `yaml:"report_path"`
	ReportIntervalMin int    `yaml:"report_interval_minutes"`
	ReportAuto        bool   `yaml:"report_auto_generate"`

	Strategy struct {
		Default       StrategyBand `yaml:"default"`
		HighFrequency StrategyBand `yaml:"high_frequency"`
	} `yaml:"strategy"`

	Bithumb BithumbSettings `yaml:"bithumb"`
	Binance BinanceSettings `yaml:"binance"`
	MQTT    MQTTSettings    `yaml:"mqtt"`
}

// ActiveBand returns the band selected by HFMode.
func (c *Config) ActiveBand() StrategyBand {
	if c.HFMode {
		return c.Strategy.HighFrequency
	}
	return c.Strategy.Default
}

// Slug is the per-exchange prefix used for log file names.
func (c *Config) Slug() string { return strings.ToLower(c.Exchange) }

// defaultBand mirrors the shipped "default" band tuning.
func defaultBand() StrategyBand {
	return StrategyBand{
		BuyStep:        0.008,
		MartingaleMul:  1.5,
		MaxSteps:       10,
		BaseOrderValue: 5000.0,
		TPMultiplier:   0.55,
		SLMultiplier:   1.25,
		TPFloor:        0.003,
		SLFloor:        0.007,
		VolHalflife:    60,
		VolMin:         0.001,
		VolMax:         0.015,
		SleepSeconds:   2.0,
		OrderCooldown:  6.0, MaxOrdersPerMinute: 6,
		CancelBaseWait: 10.0, CancelMinWait: 5.0, CancelMaxWait: 30.0, CancelVolumeScale: 2000.0,
		FailurePauseSeconds: 10.0, FailurePauseBackoff: 2.0, FailurePauseMax: 180.0,
		PostFillPauseSeconds: 3.0,
	}
}

// hfBand mirrors the shipped "high_frequency" band tuning.
func hfBand() StrategyBand {
	return StrategyBand{
		BuyStep:        0.005,
		MartingaleMul:  1.3,
		MaxSteps:       10,
		BaseOrderValue: 5000.0,
		TPMultiplier:   0.8,
		SLMultiplier:   1.0,
		TPFloor:        0.0015,
		SLFloor:        0.0025,
		VolHalflife:    30,
		VolMin:         0.0045,
		VolMax:         0.015,
		SleepSeconds:   1.5,
		OrderCooldown:  4.0, MaxOrdersPerMinute: 8,
		CancelBaseWait: 10.0, CancelMinWait: 5.0, CancelMaxWait: 30.0, CancelVolumeScale: 2000.0,
		FailurePauseSeconds: 8.0, FailurePauseBackoff: 2.0, FailurePauseMax: 120.0,
		PostFillPauseSeconds: 2.0,
	}
}

func defaultConfig() Config {
	var cfg Config
	cfg.Exchange = "bithumb"
	cfg.SymbolTicker = "USDT_KRW"
	cfg.OrderCurrency = "USDT"
	cfg.PaymentCurrency = "KRW"
	cfg.DryRun = true
	cfg.HFMode = true
	cfg.Port = 8080
	cfg.DataDir = "data"
	cfg.MetricsFile = "metrics.json"
	cfg.ReportPath = "reports/latest.html"
	cfg.ReportIntervalMin = 60
	cfg.Strategy.Default = defaultBand()
	cfg.Strategy.HighFrequency = hfBand()
	cfg.Bithumb.BaseURL = "https://api.bithumb.com"
	cfg.MQTT.Host = "127.0.0.1"
	cfg.MQTT.Port = 1883
	cfg.MQTT.BaseTopic = "gridbot"
	return cfg
}

// applyYAMLFile overlays the YAML file onto cfg, if the file exists. Unknown
// keys are ignored; a missing file is not an error.
func applyYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays process-env values onto cfg. Each getter falls back to
// the value already present, so unset keys leave YAML/defaults intact.
func applyEnv(cfg *Config) {
	cfg.Exchange = strings.ToLower(getEnv("EXCHANGE", cfg.Exchange))
	cfg.SymbolTicker = getEnv("BOT_SYMBOL_TICKER", cfg.SymbolTicker)
	cfg.OrderCurrency = getEnv("BOT_ORDER_CURRENCY", cfg.OrderCurrency)
	cfg.PaymentCurrency = getEnv("BOT_PAYMENT_CURRENCY", cfg.PaymentCurrency)
	cfg.DryRun = getEnvBool("BOT_DRY_RUN", cfg.DryRun)
	cfg.HFMode = getEnvBool("BOT_HF_MODE", cfg.HFMode)
	cfg.ResetBaseOnFlat = getEnvBool("BOT_RESET_BASE_ON_FLAT", cfg.ResetBaseOnFlat)

	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.DataDir = getEnv("BOT_DATA_DIR", cfg.DataDir)
	cfg.MetricsFile = getEnv("METRICS_FILE", cfg.MetricsFile)
	cfg.ReportPath = getEnv("REPORT_OUTPUT_PATH", cfg.ReportPath)
	cfg.ReportIntervalMin = getEnvInt("REPORT_INTERVAL_MINUTES", cfg.ReportIntervalMin)
	cfg.ReportAuto = getEnvBool("REPORT_AUTO_GENERATE", cfg.ReportAuto)

	applyBandEnv(&cfg.Strategy.Default, "DEFAULT")
	applyBandEnv(&cfg.Strategy.HighFrequency, "HF")

	cfg.Bithumb.APIKey = getEnv("BITHUMB_API_KEY", cfg.Bithumb.APIKey)
	cfg.Bithumb.APISecret = getEnv("BITHUMB_API_SECRET", cfg.Bithumb.APISecret)
	cfg.Bithumb.BaseURL = getEnv("BITHUMB_BASE_URL", cfg.Bithumb.BaseURL)

	cfg.Binance.APIKey = getEnv("BINANCE_API_KEY", cfg.Binance.APIKey)
	cfg.Binance.APISecret = getEnv("BINANCE_API_SECRET", cfg.Binance.APISecret)
	cfg.Binance.Symbol = getEnv("BINANCE_SYMBOL", cfg.Binance.Symbol)

	cfg.MQTT.Enabled = getEnvBool("MQTT_ENABLED", cfg.MQTT.Enabled)
	cfg.MQTT.Host = getEnv("MQTT_HOST", cfg.MQTT.Host)
	cfg.MQTT.Port = getEnvInt("MQTT_PORT", cfg.MQTT.Port)
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", cfg.MQTT.Username)
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", cfg.MQTT.Password)
	cfg.MQTT.BaseTopic = getEnv("MQTT_BASE_TOPIC", cfg.MQTT.BaseTopic)
}

func applyBandEnv(b *StrategyBand, prefix string) {
	k := func(name string) string { return prefix + "_" + name }
	b.BuyStep = getEnvFloat(k("BUY_STEP"), b.BuyStep)
	b.MartingaleMul = getEnvFloat(k("MARTINGALE_MUL"), b.MartingaleMul)
	b.MaxSteps = getEnvInt(k("MAX_STEPS"), b.MaxSteps)
	b.BaseOrderValue = getEnvFloat(k("BASE_ORDER_VALUE"), b.BaseOrderValue)
	b.TPMultiplier = getEnvFloat(k("TP_K"), b.TPMultiplier)
	b.SLMultiplier = getEnvFloat(k("SL_K"), b.SLMultiplier)
	b.TPFloor = getEnvFloat(k("TP_FLOOR"), b.TPFloor)
	b.SLFloor = getEnvFloat(k("SL_FLOOR"), b.SLFloor)
	b.VolHalflife = getEnvInt(k("VOL_HALFLIFE"), b.VolHalflife)
	b.VolMin = getEnvFloat(k("VOL_MIN"), b.VolMin)
	b.VolMax = getEnvFloat(k("VOL_MAX"), b.VolMax)
	b.SleepSeconds = getEnvFloat(k("SLEEP_SEC"), b.SleepSeconds)
	b.OrderCooldown = getEnvFloat(k("ORDER_COOLDOWN"), b.OrderCooldown)
	b.MaxOrdersPerMinute = getEnvInt(k("MAX_ORDERS_MIN"), b.MaxOrdersPerMinute)
	b.CancelBaseWait = getEnvFloat(k("CANCEL_BASE_WAIT"), b.CancelBaseWait)
	b.CancelMinWait = getEnvFloat(k("CANCEL_MIN_WAIT"), b.CancelMinWait)
	b.CancelMaxWait = getEnvFloat(k("CANCEL_MAX_WAIT"), b.CancelMaxWait)
	b.CancelVolumeScale = getEnvFloat(k("CANCEL_VOL_SCALE"), b.CancelVolumeScale)
	b.FailurePauseSeconds = getEnvFloat(k("FAILURE_PAUSE_SECONDS"), b.FailurePauseSeconds)
	b.FailurePauseBackoff = getEnvFloat(k("FAILURE_PAUSE_BACKOFF"), b.FailurePauseBackoff)
	b.FailurePauseMax = getEnvFloat(k("FAILURE_PAUSE_MAX"), b.FailurePauseMax)
	b.PostFillPauseSeconds = getEnvFloat(k("POST_FILL_PAUSE_SECONDS"), b.PostFillPauseSeconds)
}

// loadConfig builds the immutable Config used for the rest of the run.
func loadConfig(yamlPath string) (Config, error) {
	cfg := defaultConfig()
	if err := applyYAMLFile(&cfg, yamlPath); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate rejects configurations that would make the loop misbehave. This
// runs once before the loop starts; strategy code assumes a valid band.
func validate(cfg Config) error {
	switch cfg.Exchange {
	case "bithumb", "binance", "paper":
	default:
		return fmt.Errorf("unsupported exchange: %q", cfg.Exchange)
	}
	if cfg.SymbolTicker == "" {
		return fmt.Errorf("symbol ticker must not be empty")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port out of range: %d", cfg.Port)
	}
	for _, bd := range []struct {
		name string
		b    StrategyBand
	}{{"default", cfg.Strategy.Default}, {"high_frequency", cfg.Strategy.HighFrequency}} {
		b := bd.b
		if b.BuyStep <= 0 || b.BuyStep >= 1 {
			return fmt.Errorf("%s: buy_step must be in (0,1)", bd.name)
		}
		if b.MartingaleMul < 1 {
			return fmt.Errorf("%s: martingale_mul must be >= 1", bd.name)
		}
		if b.MaxSteps <= 0 {
			return fmt.Errorf("%s: max_steps must be > 0", bd.name)
		}
		if b.BaseOrderValue <= 0 {
			return fmt.Errorf("%s: base_order_value must be > 0", bd.name)
		}
		if b.VolHalflife < 1 {
			return fmt.Errorf("%s: vol_halflife must be >= 1", bd.name)
		}
		if b.VolMin < 0 || b.VolMax < b.VolMin {
			return fmt.Errorf("%s: need 0 <= vol_min <= vol_max", bd.name)
		}
		if b.TPFloor <= 0 || b.SLFloor <= 0 {
			return fmt.Errorf("%s: tp_floor and sl_floor must be > 0", bd.name)
		}
		if b.SleepSeconds <= 0 {
			return fmt.Errorf("%s: sleep_sec must be > 0", bd.name)
		}
		if b.OrderCooldown < 0 {
			return fmt.Errorf("%s: order_cooldown must be >= 0", bd.name)
		}
		if b.MaxOrdersPerMinute <= 0 {
			return fmt.Errorf("%s: max_orders_min must be > 0", bd.name)
		}
		if b.CancelMinWait > b.CancelMaxWait {
			return fmt.Errorf("%s: cancel_min_wait must be <= cancel_max_wait", bd.name)
		}
		if b.CancelVolumeScale <= 0 {
			return fmt.Errorf("%s: cancel_vol_scale must be > 0", bd.name)
		}
		if b.FailurePauseSeconds <= 0 || b.FailurePauseBackoff < 1 || b.FailurePauseMax < b.FailurePauseSeconds {
			return fmt.Errorf("%s: failure pause fields inconsistent", bd.name)
		}
	}
	if cfg.Exchange == "binance" && cfg.Binance.Symbol == "" {
		return fmt.Errorf("binance: BINANCE_SYMBOL is required")
	}
	return nil
}
