// Package config holds the recognized configuration surface, per spec.md
// section 6: Model, Browser, and Agent sections. Grounded on the teacher's
// internal/config/config.go yaml.v3-tagged struct tree, simplified from its
// $include-resolving loader to a single-file yaml.Unmarshal since this
// module has no multi-file config layering to resolve.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration tree.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Browser BrowserConfig `yaml:"browser"`
	Agent   AgentConfig   `yaml:"agent"`
}

// Load reads and parses a yaml config file at path into Default()'s
// starting point, so an omitted section keeps its default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration spec.md's defaults imply: priority
// strategy, a headless 1280x800 viewport, loop detection and memory both
// enabled.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Strategy:   "priority",
			MaxTokens:  -1,
			MaxRetries: 2,
			RetryDelay: 200 * time.Millisecond,
			Timeout:    30 * time.Second,
			LoadBalance: LoadBalanceConfig{
				Window:              30 * time.Second,
				HealthCheckInterval: 10 * time.Second,
				FailureThreshold:    3,
				RecoveryThreshold:   1,
			},
		},
		Browser: BrowserConfig{
			Headless: true,
			Viewport: ViewportConfig{Width: 1280, Height: 800},
			Timeout:  30 * time.Second,
		},
		Agent: AgentConfig{
			MaxSteps:               50,
			MaxActionsPerStep:      1,
			EnableMemory:           true,
			MemorySize:             10,
			EnableLoopDetection:    true,
			MaxConsecutiveFailures: 3,
			MaxSimilarActions:      3,
			EnablePlugins:          true,
		},
	}
}

// EndpointConfig describes one configured model endpoint.
type EndpointConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model"`
	Priority int    `yaml:"priority"`
	Weight   int    `yaml:"weight"`
	Enabled  bool   `yaml:"enabled"`
}

// LoadBalanceConfig tunes the health-accounting window the manager uses.
type LoadBalanceConfig struct {
	Window              time.Duration `yaml:"window"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	FailureThreshold    int           `yaml:"failure_threshold"`
	RecoveryThreshold   int           `yaml:"recovery_threshold"`
}

// UserControlConfig exposes manual overrides to the selection/retry policy.
type UserControlConfig struct {
	DisableHealthCheck bool `yaml:"disable_health_check"`
	AlwaysRetryAll     bool `yaml:"always_retry_all"`
	EnableFallbackMode bool `yaml:"enable_fallback_mode"`
	StrictMode         bool `yaml:"strict_mode"`
	DebugMode          bool `yaml:"debug_mode"`
}

// ModelConfig is the Model Endpoint Manager's configuration surface, per
// spec.md section 6.
type ModelConfig struct {
	Strategy    string            `yaml:"strategy"` // priority | round_robin | load_balance | failover | random
	Endpoints   []EndpointConfig  `yaml:"endpoints"`
	Temperature float64           `yaml:"temperature"`
	MaxTokens   int               `yaml:"max_tokens"` // -1 for unbounded
	MaxRetries  int               `yaml:"max_retries"`
	RetryDelay  time.Duration     `yaml:"retry_delay"`
	Timeout     time.Duration     `yaml:"timeout"`
	LoadBalance LoadBalanceConfig `yaml:"load_balance"`
	UserControl UserControlConfig `yaml:"user_control"`
}

// ViewportConfig is the browser's initial viewport size.
type ViewportConfig struct {
	Width  int `yaml:"w"`
	Height int `yaml:"h"`
}

// BrowserConfig is the browser pool's configuration surface, per spec.md
// section 6.
type BrowserConfig struct {
	Headless        bool           `yaml:"headless"`
	Viewport        ViewportConfig `yaml:"viewport"`
	UserDataDir     string         `yaml:"user_data_dir,omitempty"`
	ExecutablePath  string         `yaml:"executable_path,omitempty"`
	Timeout         time.Duration  `yaml:"timeout"`
	Args            []string       `yaml:"args,omitempty"`
	Locale          string         `yaml:"locale,omitempty"`
	Timezone        string         `yaml:"timezone,omitempty"`
	UserAgent       string         `yaml:"user_agent,omitempty"`
	ColorScheme     string         `yaml:"color_scheme,omitempty"`
	AcceptDownloads bool           `yaml:"accept_downloads,omitempty"`
	DownloadsPath   string         `yaml:"downloads_path,omitempty"`
}

// AgentConfig is the agent loop's configuration surface, per spec.md
// section 6.
type AgentConfig struct {
	MaxSteps               int           `yaml:"max_steps"`
	MaxActionsPerStep      int           `yaml:"max_actions_per_step"`
	UseVision              bool          `yaml:"use_vision"`
	MaxRetries             int           `yaml:"max_retries"`
	RetryDelay             time.Duration `yaml:"retry_delay"`
	EnableMemory           bool          `yaml:"enable_memory"`
	MemorySize             int           `yaml:"memory_size"`
	EnableLoopDetection    bool          `yaml:"enable_loop_detection"`
	MaxConsecutiveFailures int           `yaml:"max_consecutive_failures"`
	MaxSimilarActions      int           `yaml:"max_similar_actions"`
	EnablePlugins          bool          `yaml:"enable_plugins"`
}
