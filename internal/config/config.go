// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults Defaults `yaml:"defaults"`

	OCR     OCRConfig     `yaml:"ocr"`
	Tables  TablesConfig  `yaml:"tables"`
	Limits  LimitsConfig  `yaml:"limits"`
	Models  ModelsConfig  `yaml:"models"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`

	// Profiles for different analysis scenarios
	Profiles map[string]Profile `yaml:"profiles" validate:"dive"`
}

// Defaults are the values used when neither a profile nor a flag overrides them.
type Defaults struct {
	Format              string  `yaml:"format" validate:"oneof=text json yaml csv xlsx"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" validate:"gte=0,lte=1"`
	Checks              string  `yaml:"checks" validate:"required"`
	EnableOCR           bool    `yaml:"enable_ocr"`
	Verbose             bool    `yaml:"verbose"`
	Debug               bool    `yaml:"debug"`
	NoColor             bool    `yaml:"no_color"`
	Workers             int     `yaml:"workers" validate:"gte=1,lte=64"`
}

// OCRConfig selects and tunes the page OCR engine.
type OCRConfig struct {
	Engine      string        `yaml:"engine" validate:"oneof=tesseract textract"`
	DPI         float64       `yaml:"dpi" validate:"gte=72,lte=600"`
	PageTimeout time.Duration `yaml:"page_timeout" validate:"gte=0"`
	TempDir     string        `yaml:"temp_dir"`
	Tesseract   struct {
		Binary      string `yaml:"binary"`
		Language    string `yaml:"language"`
		PSM         int    `yaml:"psm" validate:"gte=0,lte=13"`
		TessdataDir string `yaml:"tessdata_dir"`
	} `yaml:"tesseract"`
	Textract struct {
		Region string `yaml:"region"`
	} `yaml:"textract"`
}

// TablesConfig tunes stream table detection.
type TablesConfig struct {
	Enabled bool    `yaml:"enabled"`
	MinRows int     `yaml:"min_rows" validate:"gte=2"`
	CellGap float64 `yaml:"cell_gap" validate:"gt=0"` // in multiples of the font size
}

// LimitsConfig bounds the documents the loader accepts. Zero disables a limit.
type LimitsConfig struct {
	MaxDocumentMB int64 `yaml:"max_document_mb" validate:"gte=0"`
	MaxPages      int   `yaml:"max_pages" validate:"gte=0"`
}

// ModelsConfig configures the semantic embedding model and entity recognizer.
type ModelsConfig struct {
	Preload   bool            `yaml:"preload"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Entities  EntitiesConfig  `yaml:"entities"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider" validate:"oneof=local http gemini"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Dimension int           `yaml:"dimension" validate:"gte=0"`
	BatchSize int           `yaml:"batch_size" validate:"gte=1"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
}

// APIKey resolves the provider key from the configured environment variable.
func (e EmbeddingConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// EntitiesConfig selects the named-entity recognizer.
type EntitiesConfig struct {
	Provider string `yaml:"provider" validate:"oneof=rules comprehend"`
	Region   string `yaml:"region"`
}

// CacheConfig configures the embedding cache.
type CacheConfig struct {
	Backend    string        `yaml:"backend" validate:"oneof=none memory redis"`
	MaxEntries int           `yaml:"max_entries" validate:"gte=0"`
	TTL        time.Duration `yaml:"ttl" validate:"gte=0"`
	Redis      struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error disabled off"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxUploadMB    int64         `yaml:"max_upload_mb" validate:"gte=1"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Profile represents an analysis profile with specific settings
type Profile struct {
	Description         string   `yaml:"description"`
	Format              string   `yaml:"format" validate:"omitempty,oneof=text json yaml csv xlsx"`
	Checks              string   `yaml:"checks"`
	ConfidenceThreshold *float64 `yaml:"confidence_threshold" validate:"omitempty,gte=0,lte=1"`
	EnableOCR           *bool    `yaml:"enable_ocr"`
	Verbose             bool     `yaml:"verbose"`
	NoColor             bool     `yaml:"no_color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{Profiles: make(map[string]Profile)}

	cfg.Defaults = Defaults{
		Format:              "text",
		ConfidenceThreshold: 0.5,
		Checks:              "all",
		EnableOCR:           true,
		Workers:             4,
	}

	cfg.OCR.Engine = "tesseract"
	cfg.OCR.DPI = 200
	cfg.OCR.PageTimeout = 60 * time.Second
	cfg.OCR.Tesseract.Binary = "tesseract"
	cfg.OCR.Tesseract.Language = "eng"
	cfg.OCR.Tesseract.PSM = 3
	cfg.OCR.Textract.Region = "us-east-1"

	cfg.Tables = TablesConfig{Enabled: true, MinRows: 2, CellGap: 1.5}
	cfg.Limits = LimitsConfig{MaxDocumentMB: 100, MaxPages: 2000}

	cfg.Models.Embedding = EmbeddingConfig{
		Provider:  "local",
		Model:     "hashed-bow-384",
		Dimension: 384,
		BatchSize: 64,
		Timeout:   30 * time.Second,
	}
	cfg.Models.Entities = EntitiesConfig{Provider: "rules", Region: "us-east-1"}

	cfg.Cache.Backend = "memory"
	cfg.Cache.MaxEntries = 10000
	cfg.Cache.TTL = 24 * time.Hour
	cfg.Cache.Redis.Addr = "localhost:6379"
	cfg.Cache.Redis.Prefix = "doclens:emb:"

	cfg.Logging = LoggingConfig{Level: "info", Format: "console"}

	cfg.Server = ServerConfig{
		Addr:           ":8080",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   5 * time.Minute,
		MaxUploadMB:    50,
		RequestTimeout: 5 * time.Minute,
	}

	// The analysis focus choices of the original dashboard.
	cfg.Profiles["comprehensive"] = Profile{Description: "All analyzers", Checks: "all"}
	cfg.Profiles["financial-focus"] = Profile{Description: "Financial metrics, ratios and trends", Checks: "financial"}
	cfg.Profiles["legal-focus"] = Profile{Description: "Contract information, risk clauses and obligations", Checks: "legal"}
	cfg.Profiles["compliance-focus"] = Profile{Description: "Regulatory compliance requirements", Checks: "compliance"}

	return cfg
}

// LoadConfig loads configuration from the specified file path on top of the defaults.
// An empty path returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// yaml.v3 leaves fields absent from the document untouched, so defaults survive.
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns the defaults and the error.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}

// FindConfigFile looks for a configuration file in the working directory,
// then under $DOCLENS_CONFIG_DIR, then the XDG config directory.
func FindConfigFile() string {
	for _, name := range []string{"doclens.yaml", "doclens.yml", ".doclens.yaml", ".doclens.yml"} {
		if fileExists(name) {
			return name
		}
	}

	var dirs []string
	if dir := os.Getenv("DOCLENS_CONFIG_DIR"); dir != "" {
		dirs = append(dirs, dir)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "doclens"))
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "doclens"))
	}

	for _, dir := range dirs {
		for _, name := range []string{"config.yaml", "config.yml"} {
			if candidate := filepath.Join(dir, name); fileExists(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// LoadDotEnv loads provider credentials from .env files when present.
// Variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if fileExists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// ApplyEnv overrides configuration from DOCLENS_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString("DOCLENS_FORMAT", &c.Defaults.Format)
	setString("DOCLENS_CHECKS", &c.Defaults.Checks)
	setString("DOCLENS_OCR_ENGINE", &c.OCR.Engine)
	setString("DOCLENS_TESSERACT", &c.OCR.Tesseract.Binary)
	setString("DOCLENS_EMBEDDING_PROVIDER", &c.Models.Embedding.Provider)
	setString("DOCLENS_EMBEDDING_MODEL", &c.Models.Embedding.Model)
	setString("DOCLENS_EMBEDDING_URL", &c.Models.Embedding.BaseURL)
	setString("DOCLENS_ENTITY_PROVIDER", &c.Models.Entities.Provider)
	setString("DOCLENS_CACHE_BACKEND", &c.Cache.Backend)
	setString("DOCLENS_REDIS_ADDR", &c.Cache.Redis.Addr)
	setString("DOCLENS_LOG_LEVEL", &c.Logging.Level)
	setString("DOCLENS_LOG_FORMAT", &c.Logging.Format)
	setString("DOCLENS_ADDR", &c.Server.Addr)
	setString("AWS_REGION", &c.OCR.Textract.Region)
	setString("AWS_REGION", &c.Models.Entities.Region)

	if v := getenv("DOCLENS_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DOCLENS_THRESHOLD: %w", err)
		}
		c.Defaults.ConfidenceThreshold = f
	}
	if v := getenv("DOCLENS_OCR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DOCLENS_OCR: %w", err)
		}
		c.Defaults.EnableOCR = b
	}
	if v := getenv("DOCLENS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DOCLENS_WORKERS: %w", err)
		}
		c.Defaults.Workers = n
	}

	return ValidateConfig(c)
}

// ApplyProfile merges the named profile into Defaults.
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(c.ListProfiles(), ", "))
	}
	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	if profile.Checks != "" {
		c.Defaults.Checks = profile.Checks
	}
	if profile.ConfidenceThreshold != nil {
		c.Defaults.ConfidenceThreshold = *profile.ConfidenceThreshold
	}
	if profile.EnableOCR != nil {
		c.Defaults.EnableOCR = *profile.EnableOCR
	}
	c.Defaults.Verbose = c.Defaults.Verbose || profile.Verbose
	c.Defaults.NoColor = c.Defaults.NoColor || profile.NoColor
	return nil
}

// ListProfiles returns the available profile names, sorted.
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks field constraints and cross-field requirements.
func ValidateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if config.Models.Embedding.Provider == "http" && config.Models.Embedding.BaseURL == "" {
		return errors.New("models.embedding.base_url is required for the http provider")
	}
	if config.Cache.Backend == "redis" && config.Cache.Redis.Addr == "" {
		return errors.New("cache.redis.addr is required for the redis backend")
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
