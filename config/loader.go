package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/retailflow/budget"
	"github.com/BaSui01/retailflow/coordination"
	"github.com/BaSui01/retailflow/debate"
	"github.com/BaSui01/retailflow/oracle"
	"github.com/BaSui01/retailflow/translate"
	"github.com/BaSui01/retailflow/types"
)

// Config is the full configuration of the coordination core.
type Config struct {
	// Coordination drives the round pipeline.
	Coordination coordination.Config `yaml:"coordination" env:"COORDINATION"`

	// Budget configures the daily ledger.
	Budget BudgetConfig `yaml:"budget" env:"BUDGET"`

	// Debate configures the debate engine.
	Debate debate.Config `yaml:"debate" env:"DEBATE"`

	// Translate configures decision translation.
	Translate translate.Config `yaml:"translate" env:"TRANSLATE"`

	// Oracle configures the LLM backing the debates.
	Oracle OracleConfig `yaml:"oracle" env:"ORACLE"`

	// Log configures logging output.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics configures the prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// BudgetConfig mirrors budget.Config with yaml-friendly role shares.
type BudgetConfig struct {
	AllocatableShare float64 `yaml:"allocatable_share" env:"ALLOCATABLE_SHARE"`
	ReserveShare     float64 `yaml:"reserve_share" env:"RESERVE_SHARE"`
	MaxDailyBudget   float64 `yaml:"max_daily_budget" env:"MAX_DAILY_BUDGET"`
	AlertThreshold   float64 `yaml:"alert_threshold" env:"ALERT_THRESHOLD"`
	// Shares maps role name to its fraction of the allocatable pool. Empty
	// means the standard 40/20/15/15/10 split.
	Shares map[string]float64 `yaml:"shares"`
}

// ToLedgerConfig converts to the ledger's config type.
func (b BudgetConfig) ToLedgerConfig() budget.Config {
	cfg := budget.Config{
		AllocatableShare: b.AllocatableShare,
		ReserveShare:     b.ReserveShare,
		MaxDailyBudget:   b.MaxDailyBudget,
		AlertThreshold:   b.AlertThreshold,
	}
	if len(b.Shares) > 0 {
		cfg.Shares = make(map[types.Role]float64, len(b.Shares))
		for role, share := range b.Shares {
			cfg.Shares[types.Role(role)] = share
		}
	}
	return cfg
}

// OracleConfig configures the LLM oracle. Enabled false runs the core fully
// deterministic with the neutral default positions.
type OracleConfig struct {
	Enabled     bool          `yaml:"enabled" env:"ENABLED"`
	APIKey      string        `yaml:"api_key" env:"API_KEY"`
	Model       string        `yaml:"model" env:"MODEL"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Temperature float64       `yaml:"temperature" env:"TEMPERATURE"`
}

// ToOracleConfig converts to the oracle's config type.
func (o OracleConfig) ToOracleConfig() oracle.Config {
	return oracle.Config{
		APIKey:      o.APIKey,
		Model:       o.Model,
		Timeout:     o.Timeout,
		Temperature: float32(o.Temperature),
	}
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is json or console.
	Format string `yaml:"format" env:"FORMAT"`
	// EnableCaller annotates entries with the calling site.
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
	Addr      string `yaml:"addr" env:"ADDR"`
}

// Loader loads configuration in layers: defaults, then the YAML file, then
// environment variables.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the RETAILFLOW env prefix.
func NewLoader() *Loader {
	return &Loader{envPrefix: "RETAILFLOW"}
}

// WithConfigPath sets the YAML file path. A missing file is not an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix overrides the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a validation hook run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}
	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}
		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	}
	return nil
}

// MustLoad loads the configuration, panicking on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate checks the declared ranges.
func (c *Config) Validate() error {
	var errs []string

	if s := c.Budget.AllocatableShare + c.Budget.ReserveShare; s > 1.0+1e-9 {
		errs = append(errs, fmt.Sprintf("budget shares sum to %.2f, above 1.0", s))
	}
	var shareSum float64
	for _, share := range c.Budget.Shares {
		shareSum += share
	}
	if len(c.Budget.Shares) > 0 && (shareSum < 1.0-1e-9 || shareSum > 1.0+1e-9) {
		errs = append(errs, fmt.Sprintf("role shares sum to %.2f, want 1.0", shareSum))
	}
	if c.Coordination.DebateThreshold < 0 || c.Coordination.DebateThreshold > 10 {
		errs = append(errs, "debate_threshold outside [0,10]")
	}
	if c.Oracle.Enabled && c.Oracle.APIKey == "" {
		errs = append(errs, "oracle enabled without an api_key")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
