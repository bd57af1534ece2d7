package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Analysis struct {
		Period          string  `yaml:"period" default:"6mo" validate:"required"`
		Interval        string  `yaml:"interval" default:"1d" validate:"oneof=1d 1wk"`
		FastWindow      int     `yaml:"fast_window" default:"20" validate:"gt=0"`
		SlowWindow      int     `yaml:"slow_window" default:"50" validate:"gtfield=FastWindow"`
		DefaultBudget   float64 `yaml:"default_budget" default:"1000" validate:"gt=0"`
		MetadataWorkers int     `yaml:"metadata_workers" default:"4" validate:"gte=1,lte=32"`
	} `yaml:"analysis"`
	DataSource struct {
		// Provider auto selects rest when base_url is set and yahoo otherwise.
		Provider  string  `yaml:"provider" default:"auto" validate:"oneof=auto yahoo rest mock"`
		BaseURL   string  `yaml:"base_url" validate:"omitempty,url"`
		APIKey    string  `yaml:"api_key"`
		MockPrice float64 `yaml:"mock_price" default:"100" validate:"gt=0"`
	} `yaml:"data_source"`
	Cache struct {
		Backend    string        `yaml:"backend" default:"none" validate:"oneof=none sqlite redis"`
		TTL        time.Duration `yaml:"ttl" default:"15m"`
		SQLitePath string        `yaml:"sqlite_path" default:"data/quote_cache.db"`
		Redis      struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"stockadvisor"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Server struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Addr    string `yaml:"addr" default:":8080"`
	} `yaml:"server"`
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		WatchlistCron string   `yaml:"watchlist_cron" default:"0 30 16 * * 1-5"`
		Watchlist     []string `yaml:"watchlist"`
		Budget        float64  `yaml:"budget" validate:"gte=0"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

var validate = validator.New()

// Load applies defaults, reads .env (if present) and the YAML file, then environment variable overrides.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Defaults go in first so that explicit zero values in the file (enabled: false) survive.
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Schedule.Budget == 0 {
		cfg.Schedule.Budget = cfg.Analysis.DefaultBudget
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ANALYSIS_PERIOD"); v != "" {
		cfg.Analysis.Period = v
	}
	if v := os.Getenv("ANALYSIS_INTERVAL"); v != "" {
		cfg.Analysis.Interval = v
	}
	if v := os.Getenv("DEFAULT_BUDGET"); v != "" {
		if budget, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.DefaultBudget = budget
		}
	}
	if v := os.Getenv("DATA_SOURCE_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
		cfg.Telegram.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Schedule.Watchlist = splitList(v)
	}
	if v := os.Getenv("WATCHLIST_CRON"); v != "" {
		cfg.Schedule.WatchlistCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
}

// splitList splits comma-separated symbols, trimming and upper-casing each and dropping
// empty entries and repeats.
func splitList(v string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(v, ",") {
		s := strings.ToUpper(strings.TrimSpace(part))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ResolveProvider returns the concrete data source name: yahoo, rest or mock.
func (c *Config) ResolveProvider() string {
	if c.DataSource.Provider != "auto" && c.DataSource.Provider != "" {
		return c.DataSource.Provider
	}
	if c.DataSource.BaseURL != "" {
		return "rest"
	}
	return "yahoo"
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required")
		}
	}
	if c.DataSource.Provider == "rest" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the rest provider")
	}
	if c.Cache.Backend == "sqlite" && c.Cache.SQLitePath == "" {
		return fmt.Errorf("cache.sqlite_path is required for the sqlite backend")
	}
	if c.Cache.TTL <= 0 && c.Cache.Backend != "none" {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if !c.Server.Enabled && !c.Telegram.Enabled {
		return fmt.Errorf("at least one of server or telegram must be enabled")
	}
	return nil
}
