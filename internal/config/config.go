// Package config loads the server and engine configuration from an optional
// YAML file and GOMOKU_* environment variables, with sane defaults for every
// knob.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/knah1d/gomokuAI/internal/engine"
	"github.com/knah1d/gomokuAI/internal/game"
)

type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_seconds"`
}

type AIConfig struct {
	MaxDepth      int  `mapstructure:"max_depth"`
	MaxCandidates int  `mapstructure:"max_candidates"`
	TimeBudgetMs  int  `mapstructure:"time_budget_ms"`
	TTSize        int  `mapstructure:"tt_size"`
	TTBuckets     int  `mapstructure:"tt_buckets"`
	KillerMoves   bool `mapstructure:"killer_moves"`
}

type GameConfig struct {
	BoardSize   int    `mapstructure:"board_size"`
	Mode        string `mapstructure:"mode"`
	HumanPlayer int    `mapstructure:"human_player"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	AI      AIConfig       `mapstructure:"ai"`
	Game    GameConfig     `mapstructure:"game"`
	Log     LogConfig      `mapstructure:"log"`
	Weights engine.Weights `mapstructure:"weights"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5,
		},
		AI: AIConfig{
			MaxDepth:      6,
			MaxCandidates: 12,
			TimeBudgetMs:  2000,
			TTSize:        1 << 16,
			TTBuckets:     2,
			KillerMoves:   true,
		},
		Game: GameConfig{
			BoardSize:   10,
			Mode:        "human_vs_ai",
			HumanPlayer: 1,
		},
		Weights: engine.DefaultWeights(),
	}
}

// Load reads the config file at cfgPath, or the first gomoku.yaml found in
// the working directory when cfgPath is empty. A missing file is not an
// error; defaults and environment variables still apply.
func Load(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("gomoku")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("GOMOKU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout_seconds", d.Server.ShutdownTimeout)
	v.SetDefault("ai.max_depth", d.AI.MaxDepth)
	v.SetDefault("ai.max_candidates", d.AI.MaxCandidates)
	v.SetDefault("ai.time_budget_ms", d.AI.TimeBudgetMs)
	v.SetDefault("ai.tt_size", d.AI.TTSize)
	v.SetDefault("ai.tt_buckets", d.AI.TTBuckets)
	v.SetDefault("ai.killer_moves", d.AI.KillerMoves)
	v.SetDefault("game.board_size", d.Game.BoardSize)
	v.SetDefault("game.mode", d.Game.Mode)
	v.SetDefault("game.human_player", d.Game.HumanPlayer)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("weights.open4", d.Weights.Open4)
	v.SetDefault("weights.closed4", d.Weights.Closed4)
	v.SetDefault("weights.broken4", d.Weights.Broken4)
	v.SetDefault("weights.open3", d.Weights.Open3)
	v.SetDefault("weights.broken3", d.Weights.Broken3)
	v.SetDefault("weights.closed3", d.Weights.Closed3)
	v.SetDefault("weights.open2", d.Weights.Open2)
	v.SetDefault("weights.broken2", d.Weights.Broken2)
	v.SetDefault("weights.forkOpen3", d.Weights.ForkOpen3)
	v.SetDefault("weights.forkFourPlus", d.Weights.ForkFourPlus)
}

func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		MaxDepth:      c.AI.MaxDepth,
		MaxCandidates: c.AI.MaxCandidates,
		TTSize:        uint64(c.AI.TTSize),
		TTBuckets:     c.AI.TTBuckets,
		KillerMoves:   c.AI.KillerMoves,
	}
}

func (c Config) GameSettings() game.Settings {
	settings := game.DefaultSettings()
	settings.BoardSize = c.Game.BoardSize
	settings.AITimeBudget = time.Duration(c.AI.TimeBudgetMs) * time.Millisecond
	switch c.Game.Mode {
	case "ai_vs_ai":
		settings.BlackType = game.PlayerAI
		settings.WhiteType = game.PlayerAI
	case "human_vs_human":
		settings.BlackType = game.PlayerHuman
		settings.WhiteType = game.PlayerHuman
	default:
		if c.Game.HumanPlayer == 2 {
			settings.BlackType = game.PlayerAI
			settings.WhiteType = game.PlayerHuman
		} else {
			settings.BlackType = game.PlayerHuman
			settings.WhiteType = game.PlayerAI
		}
	}
	return settings
}
