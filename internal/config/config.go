package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type GameConfig struct {
	// JokerCount is the number of jokers added to the 52-card pool.
	JokerCount int `mapstructure:"joker_count"`
	MinPlayers int `mapstructure:"min_players"`
	MaxPlayers int `mapstructure:"max_players"`
	TickRate   int `mapstructure:"tick_rate"`
	// OneChanceTimeoutSeconds is how long an Ace holder may think before the
	// match answers "skip" for them.
	OneChanceTimeoutSeconds int `mapstructure:"one_chance_timeout_seconds"`
}

// OneChanceTimeout returns the one-chance answer window as a duration.
func (c *GameConfig) OneChanceTimeout() time.Duration {
	return time.Duration(c.OneChanceTimeoutSeconds) * time.Second
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("joker_count", 2)
	v.SetDefault("min_players", 2)
	v.SetDefault("max_players", 6)
	v.SetDefault("tick_rate", 5)
	v.SetDefault("one_chance_timeout_seconds", 10)
}

// Default returns the configuration used when no file has been loaded.
func Default() *GameConfig {
	v := viper.New()
	setDefaults(v)
	c, _ := decode(v)
	return c
}

// Read parses a config file, filling unset keys with defaults.
func Read(path string) (*GameConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	c, err := decode(v)
	if err != nil {
		return nil, err
	}
	if c.MinPlayers < 1 || c.MaxPlayers < c.MinPlayers {
		return nil, fmt.Errorf("invalid player bounds %d..%d", c.MinPlayers, c.MaxPlayers)
	}
	if c.JokerCount < 0 {
		return nil, fmt.Errorf("invalid joker count %d", c.JokerCount)
	}
	return c, nil
}

func decode(v *viper.Viper) (*GameConfig, error) {
	var c GameConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return &c, nil
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg, loadErr = Read(path)
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when
// nothing was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}
