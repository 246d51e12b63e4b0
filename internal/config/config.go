// Package config provides Viper-based configuration loading for the battle simulator.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink path such as "stdout" or a file; empty means stderr.
	Output string `mapstructure:"output"`
}

// BattleConfig holds the rules every battle is built with.
type BattleConfig struct {
	// HitPoints is the starting HP of every unit.
	HitPoints int `mapstructure:"hit_points"`
	// ElfPower is the Elf attack power for a plain battle run.
	ElfPower int `mapstructure:"elf_power"`
	// GoblinPower is the Goblin attack power; the boost search never changes it.
	GoblinPower int `mapstructure:"goblin_power"`
	// MaxRounds bounds a single battle; 0 means unbounded.
	MaxRounds int `mapstructure:"max_rounds"`
}

// SearchConfig holds minimal-boost search settings.
type SearchConfig struct {
	// MaxPower is the largest Elf power to try; 0 means unbounded.
	MaxPower int `mapstructure:"max_power"`
}

// ScriptingConfig holds Lua observer hook settings.
type ScriptingConfig struct {
	// Dir holds *.lua hook scripts; empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps opcodes per hook call; 0 uses the scripting default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// RenderConfig holds text rendering settings.
type RenderConfig struct {
	// Color enables ANSI colours in rendered battlefields.
	Color bool `mapstructure:"color"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Search    SearchConfig    `mapstructure:"search"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Render    RenderConfig    `mapstructure:"render"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSearch(c.Search, c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.HitPoints < 1 {
		errs = append(errs, fmt.Sprintf("battle.hit_points must be >= 1, got %d", b.HitPoints))
	}
	if b.ElfPower < 1 {
		errs = append(errs, fmt.Sprintf("battle.elf_power must be >= 1, got %d", b.ElfPower))
	}
	if b.GoblinPower < 1 {
		errs = append(errs, fmt.Sprintf("battle.goblin_power must be >= 1, got %d", b.GoblinPower))
	}
	if b.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("battle.max_rounds must be >= 0, got %d", b.MaxRounds))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSearch(s SearchConfig, b BattleConfig) error {
	if s.MaxPower < 0 {
		return fmt.Errorf("search.max_power must be >= 0, got %d", s.MaxPower)
	}
	if s.MaxPower != 0 && s.MaxPower <= b.ElfPower {
		return fmt.Errorf("search.max_power must exceed battle.elf_power (%d), got %d", b.ElfPower, s.MaxPower)
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return errors.New("scripting.instruction_limit must not be negative")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with CAVE_ prefix
	v.SetEnvPrefix("CAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// Default returns the built-in configuration with environment overrides applied and no file.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Default() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("battle.hit_points", 200)
	v.SetDefault("battle.elf_power", 3)
	v.SetDefault("battle.goblin_power", 3)
	v.SetDefault("battle.max_rounds", 0)

	v.SetDefault("search.max_power", 0)

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("render.color", false)
}
