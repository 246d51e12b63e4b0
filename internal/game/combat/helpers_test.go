package combat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cavecombat/internal/game/cave"
	"github.com/cory-johannsen/cavecombat/internal/game/combat"
	"github.com/cory-johannsen/cavecombat/internal/game/grid"
	"github.com/cory-johannsen/cavecombat/internal/render"
)

// parseMap parses a map literal whose lines may be indented.
func parseMap(t testing.TB, src string) *cave.Map {
	t.Helper()
	var rows []string
	for _, line := range strings.Split(src, "\n") {
		rows = append(rows, strings.TrimSpace(line))
	}
	m, err := cave.Parse(rows)
	require.NoError(t, err)
	return m
}

func newField(t testing.TB, src string, rules combat.Rules) *combat.Battlefield {
	t.Helper()
	m := parseMap(t, src)
	b, err := combat.NewBattlefield(m.Terrain, m.Placements, rules)
	require.NoError(t, err)
	return b
}

// drawn renders b without HP annotations, one trimmed row per line.
func drawn(b *combat.Battlefield) string {
	return strings.TrimRight(render.Battlefield(b, render.Options{HideHP: true}), "\n")
}

// annotated renders b with HP annotations.
func annotated(b *combat.Battlefield) string {
	return strings.TrimRight(render.Battlefield(b, render.Options{}), "\n")
}

// block strips indentation from a multi-line literal.
func block(src string) string {
	var rows []string
	for _, line := range strings.Split(strings.TrimSpace(src), "\n") {
		rows = append(rows, strings.TrimSpace(line))
	}
	return strings.Join(rows, "\n")
}

func pt(x, y int) grid.Point { return grid.Point{X: x, Y: y} }

func mustUnitAt(t testing.TB, b *combat.Battlefield, p grid.Point) *combat.Unit {
	t.Helper()
	u, ok := b.UnitAt(p)
	require.True(t, ok, "expected a unit at %s", p)
	return u
}
