package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/keyring"
	"github.com/julianstephens/posy/internal/logger"
)

// EnvPrefix is prepended to every variable, e.g. POSY_MODEL.
const EnvPrefix = "POSY"

// Config holds runtime settings that are not part of the persisted user settings.
type Config struct {
	AffirmationSource string        `envconfig:"AFFIRMATION_SOURCE" default:"auto"`
	APIKey            string        `envconfig:"API_KEY"`
	Model             string        `envconfig:"MODEL" default:"gemini-3-flash-preview"`
	Temperature       float32       `envconfig:"TEMPERATURE" default:"1.0"`
	TopP              float32       `envconfig:"TOP_P" default:"0.95"`
	Timeout           time.Duration `envconfig:"TIMEOUT" default:"20s"`
	MaxRetries        uint64        `envconfig:"MAX_RETRIES" default:"2"`

	GrowthBush int `envconfig:"GROWTH_BUSH" default:"3"`
	GrowthTree int `envconfig:"GROWTH_TREE" default:"7"`
}

// New reads the POSY_ environment and validates the result.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded",
		"affirmation_source", cfg.AffirmationSource,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"top_p", cfg.TopP,
		"api_key_present", cfg.APIKey != "",
		"growth_bush", cfg.GrowthBush,
		"growth_tree", cfg.GrowthTree,
	)
	return &cfg, nil
}

// Default returns the configuration used when the environment is empty.
func Default() *Config {
	return &Config{
		AffirmationSource: constants.AffirmationSourceAuto,
		Model:             constants.DefaultAffirmationModel,
		Temperature:       constants.DefaultTemperature,
		TopP:              constants.DefaultTopP,
		Timeout:           20 * time.Second,
		MaxRetries:        2,
		GrowthBush:        constants.GrowthBushAt,
		GrowthTree:        constants.GrowthTreeAt,
	}
}

func (c *Config) Validate() error {
	switch c.AffirmationSource {
	case constants.AffirmationSourceAuto, constants.AffirmationSourceLibrary, constants.AffirmationSourceGemini:
	default:
		return fmt.Errorf("unsupported AFFIRMATION_SOURCE: %s", c.AffirmationSource)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("TEMPERATURE must be within [0, 2], got %v", c.Temperature)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("TOP_P must be within (0, 1], got %v", c.TopP)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.GrowthBush <= 0 || c.GrowthBush >= c.GrowthTree {
		return fmt.Errorf("GROWTH_BUSH (%d) must be positive and below GROWTH_TREE (%d)", c.GrowthBush, c.GrowthTree)
	}
	return nil
}

// keyringLookup is swapped out in tests.
var keyringLookup = keyring.GetAPIKey

// ResolveAPIKey returns the first key found in POSY_API_KEY, GEMINI_API_KEY,
// API_KEY and finally the OS keyring. An empty string means no key.
func (c *Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	for _, name := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	key, err := keyringLookup()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("Keyring lookup failed", "error", err)
		}
		return ""
	}
	return key
}
