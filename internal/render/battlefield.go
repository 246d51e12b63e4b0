package render

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/cavecombat/internal/game/combat"
	"github.com/cory-johannsen/cavecombat/internal/game/grid"
)

// Options controls battlefield rendering.
type Options struct {
	// Color enables ANSI colours: elves green, goblins red, walls dim.
	Color bool
	// HideHP drops the per-row "   G(200), E(131)" suffix.
	HideHP bool
}

// Battlefield renders b one row per line, each row followed by the HP of the units on it
// in reading order, e.g. "#.G.E#   G(200), E(131)".
//
// Postcondition: With Color false, the map part of every line parses back with cave.Parse.
func Battlefield(b *combat.Battlefield, opts Options) string {
	g := b.Terrain()
	var sb strings.Builder
	for y := 0; y < g.Height(); y++ {
		var row []*combat.Unit
		for x := 0; x < g.Width(); x++ {
			p := grid.Point{X: x, Y: y}
			if u, ok := b.UnitAt(p); ok {
				row = append(row, u)
				sb.WriteString(unitGlyph(u, opts.Color))
				continue
			}
			sb.WriteString(terrainGlyph(g.At(p), opts.Color))
		}
		if !opts.HideHP && len(row) > 0 {
			labels := make([]string, 0, len(row))
			for _, u := range row {
				labels = append(labels, fmt.Sprintf("%c(%d)", u.Faction.Rune(), u.HP))
			}
			sb.WriteString("   ")
			sb.WriteString(strings.Join(labels, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summary renders the battle outcome as a short multi-line report.
func Summary(res combat.Result) string {
	switch {
	case res.Decided:
		return fmt.Sprintf("Combat ends after %d full rounds\n%s win with %d total hit points left\nOutcome: %d * %d = %d",
			res.Rounds, factionTitle(res.Winner), res.RemainingHP, res.Rounds, res.RemainingHP, res.Score())
	default:
		return fmt.Sprintf("Combat stopped after %d full rounds with %d total hit points left\nOutcome: %d * %d = %d",
			res.Rounds, res.RemainingHP, res.Rounds, res.RemainingHP, res.Score())
	}
}

func factionTitle(f combat.Faction) string {
	switch f {
	case combat.Elf:
		return "Elves"
	case combat.Goblin:
		return "Goblins"
	default:
		return "Nobody"
	}
}

func unitGlyph(u *combat.Unit, color bool) string {
	s := string(u.Faction.Rune())
	if !color {
		return s
	}
	if u.Faction == combat.Elf {
		return Colorize(Green, s)
	}
	return Colorize(Red, s)
}

func terrainGlyph(t grid.Terrain, color bool) string {
	if color && t == grid.Wall {
		return Colorize(Dim, t.String())
	}
	return t.String()
}
