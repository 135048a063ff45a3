package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config describes the top-level application configuration loaded from YAML and ENV.
type Config struct {
	Version   string                    `mapstructure:"version"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Router    RouterConfig              `mapstructure:"router"`
	Agent     AgentConfig               `mapstructure:"agent"`
	Robot     RobotConfig               `mapstructure:"robot"`
	Paths     PathsConfig               `mapstructure:"paths"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	Server    ServerConfig              `mapstructure:"server"`
}

// ProviderConfig represents one LLM backend such as OpenAI, Anthropic, Yi,
// Qwen (DashScope compatible mode), or a local Ollama instance.
type ProviderConfig struct {
	Type        string        `mapstructure:"type"`        // openai, anthropic, ollama, yi, qwen, custom
	Model       string        `mapstructure:"model"`       // physical model name
	BaseURL     string        `mapstructure:"base_url"`    // API base URL
	APIKey      string        `mapstructure:"api_key"`     // optional API key
	Timeout     time.Duration `mapstructure:"timeout"`     // per-attempt request timeout
	MaxTokens   int           `mapstructure:"max_tokens"`  // optional token cap
	Temperature float64       `mapstructure:"temperature"` // sampling temperature
	Vision      bool          `mapstructure:"vision"`      // backend accepts image input
}

// RouterConfig holds the per-modality fallback chains.
type RouterConfig struct {
	Text   ChainConfig `mapstructure:"text"`
	Vision ChainConfig `mapstructure:"vision"`
}

// ChainConfig names the default provider and the ordered fallbacks after it.
type ChainConfig struct {
	Default   string   `mapstructure:"default"`
	Fallbacks []string `mapstructure:"fallbacks"`
}

// Chain returns the full ordered chain, default first, without duplicates.
func (c ChainConfig) Chain() []string {
	out := make([]string, 0, len(c.Fallbacks)+1)
	seen := make(map[string]bool, len(c.Fallbacks)+1)
	if c.Default != "" {
		out = append(out, c.Default)
		seen[c.Default] = true
	}
	for _, id := range c.Fallbacks {
		if !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

// AgentConfig describes planning-turn parameters.
type AgentConfig struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	MaxHistory  int     `mapstructure:"max_history"` // retained turns; 0 = unlimited
}

// RobotConfig holds arm geometry and speed settings.
type RobotConfig struct {
	SerialPort      string `mapstructure:"serial_port"`
	SafeHeight      int    `mapstructure:"safe_height"`      // transit height for XY moves
	GraspHeight     int    `mapstructure:"grasp_height"`     // z offset for picking up
	ReleaseHeight   int    `mapstructure:"release_height"`   // z offset for setting down
	ApproachHeight  int    `mapstructure:"approach_height"`  // z offset when hovering
	DefaultSpeed    int    `mapstructure:"default_speed"`
	CoordinateSpeed int    `mapstructure:"coordinate_speed"`
	Simulated       bool   `mapstructure:"simulated"`
}

// PathsConfig holds filesystem locations for transient artefacts.
type PathsConfig struct {
	TempDir     string `mapstructure:"temp_dir"`
	TeachingDir string `mapstructure:"teaching_dir"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// ServerConfig describes the HTTP service settings.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// Load reads configuration from the provided path or defaults to configs/config.yaml.
// Environment variables override file values (prefix: EMBODIED_, dots replaced
// with underscores).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EMBODIED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			v.SetConfigName("config.example")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults populates sensible defaults for optional fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("agent.max_tokens", 2048)
	v.SetDefault("agent.temperature", 0.3)
	v.SetDefault("agent.max_history", 0)

	v.SetDefault("robot.serial_port", "/dev/ttyAMA0")
	v.SetDefault("robot.safe_height", 220)
	v.SetDefault("robot.grasp_height", 10)
	v.SetDefault("robot.release_height", 20)
	v.SetDefault("robot.approach_height", 50)
	v.SetDefault("robot.default_speed", 40)
	v.SetDefault("robot.coordinate_speed", 20)
	v.SetDefault("robot.simulated", true)

	v.SetDefault("paths.temp_dir", "temp")
	v.SetDefault("paths.teaching_dir", "temp/teachings")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_enabled", true)
}

// Validate performs basic sanity checks on configuration values. A text
// chain with no usable provider is the one failure allowed to abort startup.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return errors.New("at least one provider must be configured")
	}

	for name, p := range c.Providers {
		switch p.Type {
		case "openai", "anthropic", "ollama", "yi", "qwen", "custom":
		case "":
			return fmt.Errorf("provider %q must define type", name)
		default:
			return fmt.Errorf("provider %q has unknown type %q", name, p.Type)
		}
		if p.Model == "" {
			return fmt.Errorf("provider %q must define model", name)
		}
		if p.Temperature < 0 || p.Temperature > 2 {
			return fmt.Errorf("provider %q temperature must be within [0,2]", name)
		}
		if p.MaxTokens < 0 {
			return fmt.Errorf("provider %q max_tokens cannot be negative", name)
		}
	}

	textChain := c.Router.Text.Chain()
	if len(textChain) == 0 {
		return errors.New("router.text must configure a default provider")
	}
	for _, id := range textChain {
		if _, ok := c.Providers[id]; !ok {
			return fmt.Errorf("router.text references unknown provider %q", id)
		}
	}
	for _, id := range c.Router.Vision.Chain() {
		p, ok := c.Providers[id]
		if !ok {
			return fmt.Errorf("router.vision references unknown provider %q", id)
		}
		if !p.Vision {
			return fmt.Errorf("router.vision references provider %q which is not vision-capable", id)
		}
	}

	if c.Robot.SafeHeight <= 0 {
		return errors.New("robot.safe_height must be > 0")
	}
	if c.Robot.DefaultSpeed <= 0 || c.Robot.CoordinateSpeed <= 0 {
		return errors.New("robot speeds must be > 0")
	}
	if c.Agent.MaxHistory < 0 {
		return errors.New("agent.max_history must be >= 0")
	}

	return nil
}
