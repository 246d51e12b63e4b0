package render

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cavecombat/internal/game/cave"
	"github.com/cory-johannsen/cavecombat/internal/game/combat"
)

const sample = "#######\n#.G...#\n#...EG#\n#.#.#G#\n#..G#E#\n#.....#\n#######"

func newBattlefield(t testing.TB, src string) *combat.Battlefield {
	t.Helper()
	m, err := cave.ParseString(src)
	require.NoError(t, err)
	b, err := combat.NewBattlefield(m.Terrain, m.Placements, combat.DefaultRules())
	require.NoError(t, err)
	return b
}

func TestBattlefield_WithHP(t *testing.T) {
	b := newBattlefield(t, sample)
	want := strings.Join([]string{
		"#######",
		"#.G...#   G(200)",
		"#...EG#   E(200), G(200)",
		"#.#.#G#   G(200)",
		"#..G#E#   G(200), E(200)",
		"#.....#",
		"#######",
	}, "\n") + "\n"
	assert.Equal(t, want, Battlefield(b, Options{}))
}

func TestBattlefield_HideHP(t *testing.T) {
	b := newBattlefield(t, sample)
	assert.Equal(t, sample+"\n", Battlefield(b, Options{HideHP: true}))
}

func TestBattlefield_Color(t *testing.T) {
	b := newBattlefield(t, "#EG#")
	got := Battlefield(b, Options{Color: true, HideHP: true})
	assert.Contains(t, got, Colorize(Green, "E"))
	assert.Contains(t, got, Colorize(Red, "G"))
	assert.Contains(t, got, Colorize(Dim, "#"))
	assert.Equal(t, "#EG#\n", StripANSI(got))
}

func TestSummary_Decided(t *testing.T) {
	res := combat.Result{Rounds: 47, RemainingHP: 590, Winner: combat.Goblin, Decided: true}
	assert.Equal(t, "Combat ends after 47 full rounds\nGoblins win with 590 total hit points left\nOutcome: 47 * 590 = 27730", Summary(res))

	res.Winner = combat.Elf
	assert.Contains(t, Summary(res), "Elves win")
}

func TestSummary_Undecided(t *testing.T) {
	res := combat.Result{Rounds: 3, RemainingHP: 400}
	assert.Equal(t, "Combat stopped after 3 full rounds with 400 total hit points left\nOutcome: 3 * 400 = 1200", Summary(res))
}

// Property: a rendered map without HP parses back into the same terrain and placements.
func TestPropertyRenderRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 10).Draw(t, "w")
		h := rapid.IntRange(1, 6).Draw(t, "h")
		rows := make([]string, h)
		for y := range rows {
			rows[y] = rapid.StringMatching(`[#.EG]{`+strconv.Itoa(w)+`}`).Draw(t, "row")
		}
		m, err := cave.Parse(rows)
		require.NoError(t, err)
		b, err := combat.NewBattlefield(m.Terrain, m.Placements, combat.DefaultRules())
		require.NoError(t, err)

		out := Battlefield(b, Options{HideHP: true})
		assert.Equal(t, strings.Join(rows, "\n")+"\n", out)

		back, err := cave.ParseString(out)
		require.NoError(t, err)
		assert.Equal(t, m.Placements, back.Placements)
	})
}
