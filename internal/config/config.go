package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	HTTPAddr       string `mapstructure:"http_addr"`
	SourcesFile    string `mapstructure:"sources_file"`
	PublishersFile string `mapstructure:"publishers_file"`
	CorpusDir      string `mapstructure:"corpus_dir"`

	OpenAIAPIKey          string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL         string        `mapstructure:"openai_base_url"`
	LLMModel              string        `mapstructure:"llm_model"`
	LLMJudgeModel         string        `mapstructure:"llm_judge_model"`
	LLMTimeoutSeconds     int64         `mapstructure:"llm_timeout_seconds"`
	LLMRequestsPerSecond  float64       `mapstructure:"llm_requests_per_second"`
	LLMTimeout            time.Duration `mapstructure:"-"`
	JudgeConcurrency      int           `mapstructure:"judge_concurrency"`
	FuzzyThreshold        int           `mapstructure:"fuzzy_threshold"`
	NegativeMentionsLimit int           `mapstructure:"negative_mentions_threshold"`
	SuspiciousActLimit    int           `mapstructure:"suspicious_activity_threshold"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	SQLitePath             string        `mapstructure:"sqlite_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	HarvestUntilDate       string        `mapstructure:"harvest_until_date"`
	HarvestPostsPerPage    int           `mapstructure:"harvest_posts_per_page"`
	HarvestIntervalSeconds int64         `mapstructure:"harvest_interval_seconds"`
	HarvestUntil           time.Time     `mapstructure:"-"`
	HarvestInterval        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "samvad-declaration-auditor")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":7860")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("corpus_dir", "./bihus_modified_identity_data")

	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm_model", "gpt-4o-2024-08-06")
	v.SetDefault("llm_judge_model", "gpt-4o-mini")
	v.SetDefault("llm_timeout_seconds", 120)
	v.SetDefault("llm_requests_per_second", 0)
	v.SetDefault("judge_concurrency", 1)
	v.SetDefault("fuzzy_threshold", 75)
	v.SetDefault("negative_mentions_threshold", 5)
	v.SetDefault("suspicious_activity_threshold", 3)

	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/auditor.db")
	v.SetDefault("sqlite_path", "./data/auditor.sqlite")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.SetDefault("harvest_until_date", "2013-01-01")
	v.SetDefault("harvest_posts_per_page", 24)
	v.SetDefault("harvest_interval_seconds", 0)
}

func (cfg *Config) finalize() error {
	if cfg.LLMTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid llm_timeout_seconds (must be positive seconds)")
	}
	cfg.LLMTimeout = time.Duration(cfg.LLMTimeoutSeconds) * time.Second

	if cfg.LLMRequestsPerSecond < 0 {
		return fmt.Errorf("invalid llm_requests_per_second (must not be negative)")
	}
	if cfg.JudgeConcurrency <= 0 {
		return fmt.Errorf("invalid judge_concurrency (must be positive)")
	}
	if cfg.FuzzyThreshold < 0 || cfg.FuzzyThreshold > 100 {
		return fmt.Errorf("invalid fuzzy_threshold (must be within 0..100)")
	}
	if cfg.NegativeMentionsLimit <= 0 || cfg.SuspiciousActLimit <= 0 {
		return fmt.Errorf("invalid media thresholds (must be positive counts)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	until, err := time.Parse(time.DateOnly, strings.TrimSpace(cfg.HarvestUntilDate))
	if err != nil {
		return fmt.Errorf("invalid harvest_until_date (want YYYY-MM-DD): %w", err)
	}
	cfg.HarvestUntil = until
	if cfg.HarvestPostsPerPage <= 0 {
		return fmt.Errorf("invalid harvest_posts_per_page (must be positive)")
	}
	if cfg.HarvestIntervalSeconds < 0 {
		return fmt.Errorf("invalid harvest_interval_seconds (0 runs a single pass)")
	}
	cfg.HarvestInterval = time.Duration(cfg.HarvestIntervalSeconds) * time.Second

	return nil
}

// StoragePath returns the on-disk path for the configured storage backend.
func (cfg *Config) StoragePath() string {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageType)) {
	case "sqlite":
		return cfg.SQLitePath
	default:
		return cfg.BBoltPath
	}
}

// Redacted returns a copy safe to log: the API key is masked.
func (cfg *Config) Redacted() Config {
	out := *cfg
	if out.OpenAIAPIKey != "" {
		out.OpenAIAPIKey = "***"
	}
	return out
}
