package cave

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cavecombat/internal/game/combat"
)

const scenarioDir = "../../../content/scenarios"

func TestLoadScenarioFromBytes(t *testing.T) {
	sc, err := LoadScenarioFromBytes([]byte(`
scenario:
  id: skirmish
  name: "Skirmish"
  description: "Tiny fight."
  rules:
    elf_power: 10
  map: |
    #####
    #E.G#
    #####
  expect:
    rounds: 3
`))
	require.NoError(t, err)

	assert.Equal(t, "skirmish", sc.ID)
	assert.Equal(t, "Skirmish", sc.Name)
	assert.Equal(t, "Tiny fight.", sc.Description)
	assert.Equal(t, 1, sc.Map.Count(combat.Elf))
	require.NotNil(t, sc.Expect)
	assert.Equal(t, 3, sc.Expect.Rounds)

	rules := sc.RulesOr(combat.DefaultRules())
	assert.Equal(t, combat.Rules{HitPoints: 200, ElfPower: 10, GoblinPower: 3}, rules)
}

func TestScenario_RulesOrWithoutOverrides(t *testing.T) {
	sc := &Scenario{}
	base := combat.Rules{HitPoints: 9, ElfPower: 2, GoblinPower: 1}
	assert.Equal(t, base, sc.RulesOr(base))
}

func TestLoadScenarioFromBytes_Errors(t *testing.T) {
	_, err := LoadScenarioFromBytes([]byte("scenario: [unclosed"))
	assert.ErrorContains(t, err, "parsing scenario YAML")

	_, err = LoadScenarioFromBytes([]byte("scenario:\n  map: |\n    #E.G#\n"))
	assert.ErrorContains(t, err, "id must not be empty")

	_, err = LoadScenarioFromBytes([]byte("scenario:\n  id: empty\n  map: |\n    #...#\n"))
	assert.ErrorContains(t, err, "at least one unit")

	_, err = LoadScenarioFromBytes([]byte("scenario:\n  id: ragged\n  map: |\n    ###\n    ##\n"))
	assert.ErrorContains(t, err, "row 1")

	_, err = LoadScenarioFromBytes([]byte("scenario:\n  id: neg\n  map: |\n    #EG#\n  expect:\n    rounds: -1\n"))
	assert.ErrorContains(t, err, "non-negative")
}

func TestLoadScenariosFromDir_Content(t *testing.T) {
	scenarios, err := LoadScenariosFromDir(scenarioDir)
	require.NoError(t, err)
	require.Len(t, scenarios, 9)

	assert.Equal(t, "sample", scenarios[0].ID)
	for _, sc := range scenarios {
		assert.NotEmpty(t, sc.Name, sc.ID)
		require.NotNil(t, sc.Expect, sc.ID)
		assert.Equal(t, sc.Expect.Rounds*sc.Expect.RemainingHP, sc.Expect.Outcome, sc.ID)
		assert.Positive(t, sc.Map.Count(combat.Elf), sc.ID)
		assert.Positive(t, sc.Map.Count(combat.Goblin), sc.ID)
	}
}

func TestLoadScenariosFromDir_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	body := []byte("scenario:\n  id: twin\n  map: |\n    #EG#\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), body, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), body, 0644))

	_, err := LoadScenariosFromDir(dir)
	assert.ErrorContains(t, err, `"twin"`)
}

func TestLoadScenariosFromDir_Empty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	_, err := LoadScenariosFromDir(dir)
	assert.ErrorContains(t, err, "no scenario files")

	_, err = LoadScenariosFromDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
