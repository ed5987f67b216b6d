package config

import (
	"cmp"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"panelsmith/pkg/provider"
	"panelsmith/pkg/synth"
	"panelsmith/pkg/utils"
)

// Config is the runtime configuration assembled from an optional YAML file and
// the environment.
type Config struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`

	Providers     map[provider.ID]provider.Spec `yaml:"providers"`
	FallbackOrder []provider.ID                 `yaml:"fallback"`
	Image         synth.Options                 `yaml:"image"`
	Story         Story                         `yaml:"story"`

	// Credentials only come from the environment.
	Credentials map[provider.ID]string `yaml:"-"`
}

type Story struct {
	Panels   int           `yaml:"panels"`
	Interval time.Duration `yaml:"interval"`
}

var credentialEnv = map[provider.ID]string{
	provider.Gemini:   "GEMINI_API_KEY",
	provider.OpenAI:   "OPENAI_API_KEY",
	provider.Grok:     "GROK_API_KEY",
	provider.Kimi:     "KIMI_API_KEY",
	provider.Moonshot: "MOONSHOT_API_KEY",
}

// DefaultFile is read by Load when PANELSMITH_CONFIG is unset and the file
// exists in the working directory.
const DefaultFile = "panelsmith.yaml"

// Load reads the YAML file named by PANELSMITH_CONFIG, falling back to
// DefaultFile, and applies environment overrides on top.
func Load() (*Config, error) {
	path := os.Getenv("PANELSMITH_CONFIG")
	if path == "" && utils.Exists(DefaultFile) {
		path = DefaultFile
	}
	return LoadFile(path)
}

// LoadFile reads path (which may be empty) and applies environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{Providers: make(map[provider.ID]provider.Spec)}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if cfg.Providers == nil {
			cfg.Providers = make(map[provider.ID]provider.Spec)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.validate()
}

func (c *Config) applyEnv() error {
	addr := cmp.Or(c.Addr, ":8080")
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	c.Addr = addr
	c.LogLevel = cmp.Or(os.Getenv("LOG_LEVEL"), c.LogLevel, "info")

	c.Credentials = make(map[provider.ID]string)
	for id, env := range credentialEnv {
		if key := strings.TrimSpace(os.Getenv(env)); key != "" {
			c.Credentials[id] = key
		}

		prefix := strings.ToUpper(string(id))
		spec := c.Providers[id]
		spec.Model = cmp.Or(os.Getenv(prefix+"_MODEL"), spec.Model)
		spec.Endpoint = cmp.Or(os.Getenv(prefix+"_BASE_URL"), spec.Endpoint)
		if spec != (provider.Spec{}) {
			c.Providers[id] = spec
		}
	}

	if order := os.Getenv("FALLBACK_ORDER"); order != "" {
		c.FallbackOrder = nil
		for _, name := range strings.Split(order, ",") {
			id, err := provider.Parse(name)
			if err != nil {
				return fmt.Errorf("FALLBACK_ORDER: %w", err)
			}
			c.FallbackOrder = append(c.FallbackOrder, id)
		}
	}

	c.Image.Model = cmp.Or(os.Getenv("IMAGE_MODEL"), c.Image.Model)
	c.Image.AspectRatio = cmp.Or(os.Getenv("IMAGE_ASPECT_RATIO"), c.Image.AspectRatio, synth.DefaultAspectRatio)
	c.Image.ImageSize = cmp.Or(os.Getenv("IMAGE_SIZE"), c.Image.ImageSize, synth.DefaultImageSize)

	if v := os.Getenv("STORY_PANELS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STORY_PANELS: %w", err)
		}
		c.Story.Panels = n
	}
	if v := os.Getenv("STORY_RATE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STORY_RATE_INTERVAL: %w", err)
		}
		c.Story.Interval = d
	}
	return nil
}

func (c *Config) validate() error {
	for id := range c.Providers {
		if !id.Valid() {
			return fmt.Errorf("unknown provider %q in config", id)
		}
	}
	for _, id := range c.FallbackOrder {
		if !id.Valid() {
			return fmt.Errorf("unknown provider %q in fallback order", id)
		}
	}
	if c.Story.Panels < 0 {
		return fmt.Errorf("story panels must not be negative")
	}
	return nil
}

// Registry builds the provider registry and seeds it with the configured credentials.
func (c *Config) Registry() *provider.Registry {
	r := provider.NewRegistry(c.Providers, c.FallbackOrder)
	r.SetCredentials(c.Credentials)
	return r
}
