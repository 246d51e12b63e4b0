// Package cave turns textual cave maps and scenario files into terrain and unit placements.
package cave

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cory-johannsen/cavecombat/internal/game/combat"
	"github.com/cory-johannsen/cavecombat/internal/game/grid"
)

// ErrEmptyMap is returned when a map has no rows.
var ErrEmptyMap = errors.New("cave: empty map")

// Map is a parsed cave: static terrain plus the initial unit placements.
type Map struct {
	Terrain    *grid.Grid
	Placements []combat.Placement
}

// Count returns the number of placements for faction f.
func (m *Map) Count(f combat.Faction) int {
	n := 0
	for _, p := range m.Placements {
		if p.Faction == f {
			n++
		}
	}
	return n
}

// Parse builds a Map from rows of '#', '.', 'E' and 'G'. Unit cells are open terrain.
//
// Precondition: rows are the lines of the map, top to bottom.
// Postcondition: Returns a Map whose terrain is len(rows[0]) x len(rows), or an error for
// an empty map, ragged rows, or an unknown rune.
func Parse(rows []string) (*Map, error) {
	rows = trimBlankRows(rows)
	if len(rows) == 0 {
		return nil, ErrEmptyMap
	}
	width := len([]rune(rows[0]))
	if width == 0 {
		return nil, ErrEmptyMap
	}

	m := &Map{Terrain: grid.New(width, len(rows))}
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("cave: row %d has width %d, expected %d", y, len(runes), width)
		}
		for x, r := range runes {
			p := grid.Point{X: x, Y: y}
			switch r {
			case '#':
				m.Terrain.SetWall(p)
			case '.':
			default:
				f, ok := combat.FactionFromRune(r)
				if !ok {
					return nil, fmt.Errorf("cave: unknown rune %q at %s", r, p)
				}
				m.Placements = append(m.Placements, combat.Placement{Faction: f, Pos: p})
			}
		}
	}
	return m, nil
}

// ParseString splits s into lines and parses them. Trailing carriage returns are ignored.
func ParseString(s string) (*Map, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return Parse(strings.Split(s, "\n"))
}

// LoadFile reads and parses the map at path.
//
// Postcondition: Returns a Map or an error naming path.
func LoadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cave file %s: %w", path, err)
	}
	m, err := ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing cave file %s: %w", path, err)
	}
	return m, nil
}

// trimBlankRows drops leading and trailing rows that are empty or whitespace only.
func trimBlankRows(rows []string) []string {
	start, end := 0, len(rows)
	for start < end && strings.TrimSpace(rows[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(rows[end-1]) == "" {
		end--
	}
	return rows[start:end]
}
