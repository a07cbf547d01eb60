package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/resellkit/research-core/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Sim        SimConfig        `yaml:"sim" mapstructure:"sim"`
	Registry   RegistryConfig   `yaml:"registry" mapstructure:"registry"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// PipelineConfig bounds a research session. Zero values defer to the
// mode preset; explicit values override it knob by knob.
type PipelineConfig struct {
	Mode                  string  `yaml:"mode" mapstructure:"mode"`
	MaxIterations         int     `yaml:"max_iterations" mapstructure:"max_iterations"`
	MaxCostUsd            float64 `yaml:"max_cost_usd" mapstructure:"max_cost_usd"`
	MaxTimeMs             int64   `yaml:"max_time_ms" mapstructure:"max_time_ms"`
	RequiredConfidence    float64 `yaml:"required_confidence" mapstructure:"required_confidence"`
	RecommendedConfidence float64 `yaml:"recommended_confidence" mapstructure:"recommended_confidence"`
	ToolRatePerSec        float64 `yaml:"tool_rate_per_sec" mapstructure:"tool_rate_per_sec"`
}

// Constraints resolves the session envelope: the mode preset, with any
// explicitly configured knob taking precedence.
func (p PipelineConfig) Constraints() model.ResearchConstraints {
	c := model.DefaultConstraints(model.ResearchMode(p.Mode))
	if p.MaxIterations > 0 {
		c.MaxIterations = p.MaxIterations
	}
	if p.MaxCostUsd > 0 {
		c.MaxCostUsd = p.MaxCostUsd
	}
	if p.MaxTimeMs > 0 {
		c.MaxTimeMs = p.MaxTimeMs
	}
	if p.RequiredConfidence > 0 {
		c.RequiredConfidence = p.RequiredConfidence
	}
	if p.RecommendedConfidence > 0 {
		c.RecommendedConfidence = p.RecommendedConfidence
	}
	return c
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentItems int `yaml:"max_concurrent_items" mapstructure:"max_concurrent_items"`
}

// SimConfig configures the simulated tool executor.
type SimConfig struct {
	Seed           uint64   `yaml:"seed" mapstructure:"seed"`
	Comps          int      `yaml:"comps" mapstructure:"comps"`
	FailTools      []string `yaml:"fail_tools" mapstructure:"fail_tools"`
	ConflictFields []string `yaml:"conflict_fields" mapstructure:"conflict_fields"`
}

// RegistryConfig points at tool catalog and category schema overrides.
// Empty paths fall back to the embedded defaults.
type RegistryConfig struct {
	ToolsPath   string `yaml:"tools_path" mapstructure:"tools_path"`
	SchemasPath string `yaml:"schemas_path" mapstructure:"schemas_path"`
}

// RetryConfig configures transient-failure retries around tool calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// MonitoringConfig configures run-statistics checks and webhook alerts.
type MonitoringConfig struct {
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackWindowHours  int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	StallRateThreshold   float64 `yaml:"stall_rate_threshold" mapstructure:"stall_rate_threshold"`
	CostThresholdUSD     float64 `yaml:"cost_threshold_usd" mapstructure:"cost_threshold_usd"`
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "research.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("pipeline.mode", "standard")
	v.SetDefault("pipeline.max_iterations", 0)
	v.SetDefault("pipeline.max_cost_usd", 0)
	v.SetDefault("pipeline.max_time_ms", 0)
	v.SetDefault("pipeline.required_confidence", 0)
	v.SetDefault("pipeline.recommended_confidence", 0)
	v.SetDefault("pipeline.tool_rate_per_sec", 0)
	v.SetDefault("batch.max_concurrent_items", 4)
	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.comps", 0)
	v.SetDefault("registry.tools_path", "")
	v.SetDefault("registry.schemas_path", "")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 250)
	v.SetDefault("retry.max_backoff_ms", 5000)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.failure_rate_threshold", 0.25)
	v.SetDefault("monitoring.stall_rate_threshold", 0.5)
	v.SetDefault("monitoring.cost_threshold_usd", 25.0)
	v.SetDefault("monitoring.webhook_url", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for a run mode: "research" (single
// item), "batch" (manifest fan-out), or "runs" (history queries). All
// problems are reported in one error.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required for the postgres driver")
	}

	switch c.Pipeline.Mode {
	case "", "fast", "standard", "thorough":
	default:
		problems = append(problems, fmt.Sprintf("pipeline.mode must be fast, standard, or thorough, got %q", c.Pipeline.Mode))
	}
	if c.Pipeline.MaxIterations < 0 || c.Pipeline.MaxIterations > 500 {
		problems = append(problems, "pipeline.max_iterations must be between 0 and 500")
	}
	if c.Pipeline.MaxCostUsd < 0 {
		problems = append(problems, "pipeline.max_cost_usd must be >= 0")
	}
	if c.Pipeline.RequiredConfidence < 0 || c.Pipeline.RequiredConfidence > 1 {
		problems = append(problems, "pipeline.required_confidence must be between 0 and 1")
	}
	if c.Pipeline.RecommendedConfidence < 0 || c.Pipeline.RecommendedConfidence > 1 {
		problems = append(problems, "pipeline.recommended_confidence must be between 0 and 1")
	}
	if c.Pipeline.ToolRatePerSec < 0 {
		problems = append(problems, "pipeline.tool_rate_per_sec must be >= 0")
	}
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		problems = append(problems, "retry.max_attempts must be between 1 and 10")
	}

	switch mode {
	case "research", "runs":
	case "batch":
		if c.Batch.MaxConcurrentItems < 1 || c.Batch.MaxConcurrentItems > 32 {
			problems = append(problems, "batch.max_concurrent_items must be between 1 and 32")
		}
	case "watch":
		if c.Monitoring.CheckIntervalSecs < 1 {
			problems = append(problems, "monitoring.check_interval_secs must be >= 1")
		}
		if c.Monitoring.LookbackWindowHours < 1 {
			problems = append(problems, "monitoring.lookback_window_hours must be >= 1")
		}
		if c.Monitoring.FailureRateThreshold < 0 || c.Monitoring.FailureRateThreshold > 1 {
			problems = append(problems, "monitoring.failure_rate_threshold must be between 0 and 1")
		}
		if c.Monitoring.StallRateThreshold < 0 || c.Monitoring.StallRateThreshold > 1 {
			problems = append(problems, "monitoring.stall_rate_threshold must be between 0 and 1")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown mode %q", mode))
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
