package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Addr           string     `mapstructure:"addr"`
	AllowedOrigins []string   `mapstructure:"allowed_origins"`
	LogLevel       string     `mapstructure:"log_level"`
	Game           GameConfig `mapstructure:"game"`
}

type GameConfig struct {
	MaxPlayers         int `mapstructure:"max_players"`
	DefaultRounds      int `mapstructure:"default_rounds"`
	DefaultDrawSeconds int `mapstructure:"default_draw_seconds"`
	SelectSeconds      int `mapstructure:"select_seconds"`
	GraceSeconds       int `mapstructure:"grace_seconds"`
	WordChoices        int `mapstructure:"word_choices"`
}

// Load reads configuration from an optional yaml file, with DRAWCHAIN_*
// environment variables taking precedence over both file and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":5000")
	v.SetDefault("allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("log_level", "info")
	v.SetDefault("game.max_players", 20)
	v.SetDefault("game.default_rounds", 3)
	v.SetDefault("game.default_draw_seconds", 80)
	v.SetDefault("game.select_seconds", 15)
	v.SetDefault("game.grace_seconds", 10)
	v.SetDefault("game.word_choices", 3)

	v.SetEnvPrefix("DRAWCHAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
