package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Battle: BattleConfig{
			HitPoints:   200,
			ElfPower:    3,
			GoblinPower: 3,
		},
		Scripting: ScriptingConfig{
			Dir: "content/scripts",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
battle:
  hit_points: 100
  elf_power: 4
  goblin_power: 5
  max_rounds: 500
search:
  max_power: 60
scripting:
  dir: scripts
  instruction_limit: 5000
render:
  color: true
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.Battle.HitPoints)
	assert.Equal(t, 4, cfg.Battle.ElfPower)
	assert.Equal(t, 5, cfg.Battle.GoblinPower)
	assert.Equal(t, 500, cfg.Battle.MaxRounds)
	assert.Equal(t, 60, cfg.Search.MaxPower)
	assert.Equal(t, "scripts", cfg.Scripting.Dir)
	assert.Equal(t, 5000, cfg.Scripting.InstructionLimit)
	assert.True(t, cfg.Render.Color)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 200, cfg.Battle.HitPoints)
	assert.Equal(t, 3, cfg.Battle.ElfPower)
	assert.Equal(t, 3, cfg.Battle.GoblinPower)
	assert.Zero(t, cfg.Search.MaxPower)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("battle:\n  elf_power: 3\n"), 0644))
	t.Setenv("CAVE_BATTLE_ELF_POWER", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Battle.ElfPower)
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Battle.HitPoints)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("battle:\n  hit_points: 0\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "battle.hit_points")
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateBattle(t *testing.T) {
	cfg := validConfig()
	cfg.Battle.HitPoints = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Battle.ElfPower = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Battle.GoblinPower = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Battle.MaxRounds = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateSearchBoundMustExceedElfPower(t *testing.T) {
	cfg := validConfig()
	cfg.Search.MaxPower = 3
	assert.Error(t, cfg.Validate())

	cfg.Search.MaxPower = 4
	assert.NoError(t, cfg.Validate())

	cfg.Search.MaxPower = -5
	assert.Error(t, cfg.Validate())
}

func TestValidateScriptingLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Scripting.InstructionLimit = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateAggregatesAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "loud"
	cfg.Battle.HitPoints = 0
	cfg.Scripting.InstructionLimit = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "battle.hit_points")
	assert.Contains(t, err.Error(), "scripting.instruction_limit")
}

// Property-based tests

func TestPropertyPositiveRulesAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Battle.HitPoints = rapid.IntRange(1, 10000).Draw(t, "hit_points")
		cfg.Battle.ElfPower = rapid.IntRange(1, 300).Draw(t, "elf_power")
		cfg.Battle.GoblinPower = rapid.IntRange(1, 300).Draw(t, "goblin_power")
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid battle config %+v rejected: %v", cfg.Battle, err)
		}
	})
}

func TestPropertyNonPositivePowerRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Battle.GoblinPower = rapid.IntRange(-1000, 0).Draw(t, "goblin_power")
		if err := cfg.Validate(); err == nil {
			t.Fatalf("goblin_power=%d accepted", cfg.Battle.GoblinPower)
		}
	})
}
