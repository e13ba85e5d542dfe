package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "termsim.yaml"

// Exercise source kinds.
const (
	SourceBuiltin = "builtin"
	SourceDir     = "dir"
	SourceHTTP    = "http"
)

type ExercisesConfig struct {
	Source string `yaml:"source,omitempty"`
	Dir    string `yaml:"dir,omitempty"`
	URL    string `yaml:"url,omitempty"`
}

type BreakerConfig struct {
	MaxFailures uint32 `yaml:"max_failures,omitempty"`
	Timeout     string `yaml:"timeout,omitempty"`
}

type AIConfig struct {
	Endpoint    string        `yaml:"endpoint,omitempty"`
	Timeout     string        `yaml:"timeout,omitempty"`
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	Breaker     BreakerConfig `yaml:"breaker,omitempty"`
}

type ProgressConfig struct {
	Store          string `yaml:"store,omitempty"`
	Path           string `yaml:"path,omitempty"`
	DSN            string `yaml:"dsn,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Config mirrors termsim.yaml. Durations are kept as strings so that a
// malformed value is reported with its key.
type Config struct {
	Exercises ExercisesConfig `yaml:"exercises,omitempty"`
	AI        AIConfig        `yaml:"ai,omitempty"`
	Progress  ProgressConfig  `yaml:"progress,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
	EnvFile   string          `yaml:"env_file,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`

	baseDir string
}

// Load reads path. A directory is resolved to the termsim.yaml inside it.
func Load(path string) (*Config, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ConfigFileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.baseDir = filepath.Dir(path)
	return &cfg, nil
}

// Save writes c as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ConfigFileName, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Discover loads .env into the process environment and then the config
// file. An explicit path must exist; without one, termsim.yaml in the
// working directory is optional and its absence yields an empty Config.
// TERMSIM_* variables override the file.
func Discover(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = ConfigFileName
	}

	cfg, err := Load(path)
	switch {
	case err == nil:
	case errors.Is(err, ErrConfigNotFound) && !explicit:
		cfg = &Config{}
	case errors.Is(err, ErrConfigNotFound):
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	default:
		return nil, fmt.Errorf("failed to load %s: %w", ConfigFileName, err)
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from TERMSIM_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Exercises.Source, "TERMSIM_EXERCISES_SOURCE")
	set(&c.Exercises.Dir, "TERMSIM_EXERCISES_DIR")
	set(&c.Exercises.URL, "TERMSIM_EXERCISES_URL")
	set(&c.AI.Endpoint, "TERMSIM_AI_ENDPOINT")
	set(&c.Progress.Store, "TERMSIM_PROGRESS_STORE")
	set(&c.Progress.DSN, "TERMSIM_PROGRESS_DSN")
	set(&c.Log.Level, "TERMSIM_LOG_LEVEL")
	set(&c.Log.Format, "TERMSIM_LOG_FORMAT")
	set(&c.Server.Addr, "TERMSIM_SERVER_ADDR")
	if c.Progress.DSN == "" {
		set(&c.Progress.DSN, "DATABASE_URL")
	}
}

// Validate reports every malformed field at once.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Exercises.Source) {
	case "", SourceBuiltin:
	case SourceDir:
		if c.Exercises.Dir == "" {
			errs = append(errs, fmt.Errorf("exercises.dir is required for source %q: %w", SourceDir, termsim.ErrInvalidConfig))
		}
	case SourceHTTP:
		if c.Exercises.URL == "" {
			errs = append(errs, fmt.Errorf("exercises.url is required for source %q: %w", SourceHTTP, termsim.ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("exercises.source %q (want builtin, dir or http): %w", c.Exercises.Source, termsim.ErrInvalidConfig))
	}

	if _, err := c.AITimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.BreakerTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.AI.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("ai.max_attempts must not be negative: %w", termsim.ErrInvalidConfig))
	}
	if _, err := termsim.ParseAuthMethod(c.Progress.AuthMethod); err != nil {
		errs = append(errs, fmt.Errorf("progress.auth_method: %w", err))
	}

	return errors.Join(errs...)
}

// AITimeout returns ai.timeout, or the default when unset.
func (c *Config) AITimeout() (time.Duration, error) {
	return parseDuration("ai.timeout", c.AI.Timeout, termsim.DefaultAITimeout)
}

// BreakerTimeout returns ai.breaker.timeout, or the default when unset.
func (c *Config) BreakerTimeout() (time.Duration, error) {
	return parseDuration("ai.breaker.timeout", c.AI.Breaker.Timeout, termsim.DefaultBreakerTimeout)
}

// BreakerFailures returns ai.breaker.max_failures, or the default when unset.
func (c *Config) BreakerFailures() uint32 {
	if c.AI.Breaker.MaxFailures == 0 {
		return termsim.DefaultBreakerFailures
	}
	return c.AI.Breaker.MaxFailures
}

// MaxAttempts returns ai.max_attempts, or the default when unset.
func (c *Config) MaxAttempts() int {
	if c.AI.MaxAttempts == 0 {
		return termsim.DefaultRetryMaxAttempts
	}
	return c.AI.MaxAttempts
}

// ServerAddr returns server.addr, or the default when unset.
func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return termsim.DefaultServerAddr
	}
	return c.Server.Addr
}

// ExercisesDir resolves exercises.dir against the config file's directory.
func (c *Config) ExercisesDir() string {
	return c.resolve(c.Exercises.Dir)
}

// ProgressPath resolves progress.path against the config file's directory.
func (c *Config) ProgressPath() string {
	return c.resolve(c.Progress.Path)
}

// Database builds the progress database settings. The Azure client secret
// is read from AZURE_CLIENT_SECRET and never from the file.
func (c *Config) Database() (*termsim.DatabaseConfig, error) {
	method, err := termsim.ParseAuthMethod(c.Progress.AuthMethod)
	if err != nil {
		return nil, err
	}
	return &termsim.DatabaseConfig{
		DSN:               c.Progress.DSN,
		AuthMethod:        method,
		AWSRegion:         c.Progress.AWSRegion,
		AzureTenantID:     c.Progress.AzureTenantID,
		AzureClientID:     c.Progress.AzureClientID,
		AzureClientSecret: os.Getenv("AZURE_CLIENT_SECRET"),
		GoogleInstance:    c.Progress.GoogleInstance,
	}, nil
}

// BaseEnvironment returns the simulated shell environment: the defaults
// overlaid with env_file when one is configured.
func (c *Config) BaseEnvironment() (termsim.Environment, error) {
	env := termsim.DefaultEnvironment()
	if c.EnvFile == "" {
		return env, nil
	}

	path := c.resolve(c.EnvFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env_file '%s': %w", path, err)
	}
	vars, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse env_file '%s': %w\n\nTip: Verify the file format (KEY=VALUE)", path, err)
	}
	for k, v := range vars {
		env[k] = v
	}
	return env, nil
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s in %s: %v: %w", key, ConfigFileName, err, termsim.ErrInvalidConfig)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive: %w", key, termsim.ErrInvalidConfig)
	}
	return d, nil
}
