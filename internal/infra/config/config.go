package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Includes lists extra YAML files merged over this one, resolved
	// relative to the main config's directory.
	Includes []string `yaml:"includes,omitempty"`

	LLM     LLMConfig     `yaml:"llm"`
	Router  RouterConfig  `yaml:"router"`
	Session SessionConfig `yaml:"session"`
	Gateway GatewayConfig `yaml:"gateway"`
	Prompts PromptsConfig `yaml:"prompts"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// LLMConfig holds provider settings.
type LLMConfig struct {
	DefaultProvider string               `yaml:"default_provider"`
	Providers       []ProviderConfig     `yaml:"providers"`
	CircuitBreaker  CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"` // "gemini", "claude", "bedrock"
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Region      string        `yaml:"region,omitempty"` // bedrock only
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	Pool        PoolConfig    `yaml:"pool"`
}

// PoolConfig holds HTTP connection pool settings for LLM providers.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// CircuitBreakerConfig holds circuit breaker settings for LLM providers.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// RouterConfig tunes the routing decision core.
type RouterConfig struct {
	// MinInterval is the minimum time between routing decisions for one
	// session. Raise it when providers report quota exhaustion.
	MinInterval time.Duration `yaml:"min_interval"`
	// RandomRouteProbability is the chance a routing decision picks a
	// routable agent by weighted random draw instead of calling the
	// classifier. Corrects for classifier bias and saves a model call.
	RandomRouteProbability float64 `yaml:"random_route_probability"`
	// Weights is the weight table for the random draw, keyed by agent
	// name. Agents absent from the table get weight 1.
	Weights map[string]float64 `yaml:"weights,omitempty"`
	// ClassifierTemperature and ClassifierMaxTokens shape the
	// classification call.
	ClassifierTemperature float64 `yaml:"classifier_temperature"`
	ClassifierMaxTokens   int     `yaml:"classifier_max_tokens"`
}

// SessionConfig tunes per-session transcript handling.
type SessionConfig struct {
	// BufferCapacity is the number of recent segments kept per session.
	BufferCapacity int `yaml:"buffer_capacity"`
	// MinSegmentLen is the shortest trimmed segment that is routed.
	MinSegmentLen int `yaml:"min_segment_len"`
	// DrainTimeout bounds how long a closing session waits for an
	// in-flight dispatch.
	DrainTimeout time.Duration `yaml:"drain_timeout"`
}

// GatewayConfig holds WebSocket gateway settings.
type GatewayConfig struct {
	Addr string `yaml:"addr"`
	// AuthToken, when set, is required as the ?token= query parameter on
	// connect. Empty disables authentication.
	AuthToken string `yaml:"auth_token,omitempty"`
	// RatePerMin and RateBurst gate requests per client IP. Zero
	// disables the limiter.
	RatePerMin int `yaml:"rate_per_min,omitempty"`
	RateBurst  int `yaml:"rate_burst,omitempty"`
	// TrustedProxies lists proxy IPs whose forwarding headers are
	// honored when resolving the client address.
	TrustedProxies []string `yaml:"trusted_proxies,omitempty"`
}

// PromptsConfig holds versioned prompt store settings.
type PromptsConfig struct {
	Path string `yaml:"path"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		LLM: LLMConfig{
			DefaultProvider: "gemini",
			CircuitBreaker: CircuitBreakerConfig{
				Enabled: true,
			},
		},
		Router: RouterConfig{
			MinInterval:            15 * time.Second,
			RandomRouteProbability: 0.6,
			ClassifierTemperature:  0.2,
			ClassifierMaxTokens:    50,
		},
		Session: SessionConfig{
			BufferCapacity: 10,
			MinSegmentLen:  5,
			DrainTimeout:   2 * time.Second,
		},
		Gateway: GatewayConfig{
			Addr: ":8080",
		},
		Prompts: PromptsConfig{
			Path: "./data/prompts.db",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Exporter: "stdout",
		},
	}
}

// Load reads the config file at path, applies env overrides, and
// validates the result. A missing file is not an error: defaults plus
// env overrides are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Includes) > 0 {
		if err := processIncludes(cfg, filepath.Dir(path), nil, 0); err != nil {
			return nil, err
		}
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}

// ApplyEnvOverrides lets the environment win over file values for the
// settings operators most commonly change per deployment.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MEETINGMIND_ACTIVE_PROVIDER"); v != "" {
		cfg.LLM.DefaultProvider = v
	}
	if v := os.Getenv("MEETINGMIND_GATEWAY_ADDR"); v != "" {
		cfg.Gateway.Addr = v
	}
	if v := os.Getenv("MEETINGMIND_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("MEETINGMIND_PROMPTS_PATH"); v != "" {
		cfg.Prompts.Path = v
	}
	if v := os.Getenv("MEETINGMIND_MIN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Router.MinInterval = d
		}
	}
	if v := os.Getenv("MEETINGMIND_BUFFER_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Session.BufferCapacity = n
		}
	}

	// Provider API keys are env-first so they never land in files.
	for i := range cfg.LLM.Providers {
		p := &cfg.LLM.Providers[i]
		switch p.Type {
		case "gemini":
			if v := os.Getenv("GEMINI_API_KEY"); v != "" {
				p.APIKey = v
			}
		case "claude":
			if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
				p.APIKey = v
			}
		}
	}
}

// Validate checks settings that would otherwise fail deep inside a
// session at an awkward time.
func Validate(cfg *Config) error {
	if cfg.Router.MinInterval <= 0 {
		return fmt.Errorf("router.min_interval must be positive, got %s", cfg.Router.MinInterval)
	}
	if p := cfg.Router.RandomRouteProbability; p < 0 || p > 1 {
		return fmt.Errorf("router.random_route_probability must be in [0,1], got %v", p)
	}
	if cfg.Session.BufferCapacity <= 0 {
		return fmt.Errorf("session.buffer_capacity must be positive, got %d", cfg.Session.BufferCapacity)
	}
	for name, w := range cfg.Router.Weights {
		if w < 0 {
			return fmt.Errorf("router.weights[%q] must be non-negative, got %v", name, w)
		}
	}
	seen := map[string]bool{}
	for _, p := range cfg.LLM.Providers {
		if p.Name == "" {
			return fmt.Errorf("llm.providers: provider with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("llm.providers: duplicate provider name %q", p.Name)
		}
		seen[p.Name] = true
		switch p.Type {
		case "gemini", "claude", "bedrock":
		default:
			return fmt.Errorf("llm.providers[%s]: unknown type %q", p.Name, p.Type)
		}
	}
	return nil
}
