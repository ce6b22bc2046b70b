// Package config loads bloomlet settings from defaults, a YAML file, an
// optional .env file and BLOOMLET_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/utils"
)

// Config is the root configuration structure. It is read-only after Load.
type Config struct {
	Timezone   string          `yaml:"timezone"`
	WeeklyGoal int             `yaml:"weekly_goal"`
	CountRule  string          `yaml:"count_rule"`
	Analysis   AnalysisConfig  `yaml:"analysis"`
	Companion  CompanionConfig `yaml:"companion"`
	Backup     BackupConfig    `yaml:"backup"`
	Reminder   ReminderConfig  `yaml:"reminder"`
}

// AnalysisConfig points the client at a companion service. An empty URL
// selects the offline keyword heuristic.
type AnalysisConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// CompanionConfig configures `bloomlet serve`.
type CompanionConfig struct {
	Addr     string   `yaml:"addr"`
	Model    string   `yaml:"model"`
	APIKey   string   `yaml:"-"` // env-only, never in YAML
	RedisURL string   `yaml:"redis_url"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

type BackupConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config describes an optional S3-compatible bucket for offsite backup
// copies. Upload is disabled while Endpoint or Bucket is empty.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether offsite upload is configured.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type ReminderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Time    string `yaml:"time"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads path (missing is fine), then envFile (missing is fine), then
// the environment. Variables already set in the environment win over the
// .env file.
func Load(path, envFile string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAMLFile(cfg, path); err != nil {
		return nil, err
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Timezone:   "Local",
		WeeklyGoal: constants.DefaultWeeklyGoal,
		CountRule:  "entries",
		Analysis: AnalysisConfig{
			Timeout: Duration(constants.DefaultAnalysisTimeout),
		},
		Companion: CompanionConfig{
			Addr:     "127.0.0.1:8787",
			Model:    "gpt-4o-mini",
			CacheTTL: Duration(24 * time.Hour),
		},
		Backup: BackupConfig{
			S3: S3Config{Region: "us-east-1", UseSSL: true},
		},
		Reminder: ReminderConfig{
			Time: "20:00",
		},
	}
}

func loadYAMLFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies non-empty environment variables. Malformed
// numbers and durations are errors rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("BLOOMLET_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("BLOOMLET_WEEKLY_GOAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BLOOMLET_WEEKLY_GOAL: %w", err)
		}
		cfg.WeeklyGoal = n
	}
	if v := os.Getenv("BLOOMLET_COUNT_RULE"); v != "" {
		cfg.CountRule = v
	}

	// Analysis
	if v := os.Getenv("BLOOMLET_ANALYSIS_URL"); v != "" {
		cfg.Analysis.URL = v
	}
	if err := envDuration("BLOOMLET_ANALYSIS_TIMEOUT", &cfg.Analysis.Timeout); err != nil {
		return err
	}

	// Companion (OPENAI_API_KEY is industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Companion.APIKey = v
	}
	if v := os.Getenv("BLOOMLET_COMPANION_ADDR"); v != "" {
		cfg.Companion.Addr = v
	}
	if v := os.Getenv("BLOOMLET_COMPANION_MODEL"); v != "" {
		cfg.Companion.Model = v
	}
	if v := os.Getenv("BLOOMLET_REDIS_URL"); v != "" {
		cfg.Companion.RedisURL = v
	}
	if err := envDuration("BLOOMLET_CACHE_TTL", &cfg.Companion.CacheTTL); err != nil {
		return err
	}

	// Backup
	if v := os.Getenv("BLOOMLET_S3_ENDPOINT"); v != "" {
		cfg.Backup.S3.Endpoint = v
	}
	if v := os.Getenv("BLOOMLET_S3_BUCKET"); v != "" {
		cfg.Backup.S3.Bucket = v
	}
	if v := os.Getenv("BLOOMLET_S3_REGION"); v != "" {
		cfg.Backup.S3.Region = v
	}
	if v := os.Getenv("BLOOMLET_S3_ACCESS_KEY"); v != "" {
		cfg.Backup.S3.AccessKey = v
	}
	if v := os.Getenv("BLOOMLET_S3_SECRET_KEY"); v != "" {
		cfg.Backup.S3.SecretKey = v
	}
	if v := os.Getenv("BLOOMLET_S3_USE_SSL"); v != "" {
		cfg.Backup.S3.UseSSL = v == "true" || v == "1"
	}

	// Reminder
	if v := os.Getenv("BLOOMLET_REMINDER_ENABLED"); v != "" {
		cfg.Reminder.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("BLOOMLET_REMINDER_TIME"); v != "" {
		cfg.Reminder.Time = v
	}
	return nil
}

func envDuration(key string, dst *Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	*dst = Duration(d)
	return nil
}

// Validate checks value ranges. It does not require an API key: only
// `bloomlet serve` needs one and checks for it itself.
func (c *Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.WeeklyGoal < constants.MinWeeklyGoal || c.WeeklyGoal > constants.MaxWeeklyGoal {
		return fmt.Errorf("weekly_goal must be between %d and %d, got %d",
			constants.MinWeeklyGoal, constants.MaxWeeklyGoal, c.WeeklyGoal)
	}
	switch c.CountRule {
	case "", "entries", "distinct_days":
	default:
		return fmt.Errorf("count_rule must be entries or distinct_days, got %q", c.CountRule)
	}
	if c.Analysis.Timeout <= 0 {
		return errors.New("analysis.timeout must be positive")
	}
	if c.Companion.CacheTTL < 0 {
		return errors.New("companion.cache_ttl cannot be negative")
	}
	if !utils.ValidateTimeFormat(c.Reminder.Time) {
		return fmt.Errorf("reminder.time must be HH:MM, got %q", c.Reminder.Time)
	}
	if (c.Backup.S3.Endpoint == "") != (c.Backup.S3.Bucket == "") {
		return errors.New("backup.s3 needs both endpoint and bucket")
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}
