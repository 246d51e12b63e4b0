package combat

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cory-johannsen/cavecombat/internal/game/grid"
)

// ErrInvalidPlacement is returned when an initial placement is off the map, on a wall,
// or shares a cell with another placement.
var ErrInvalidPlacement = errors.New("invalid placement")

// Battlefield is the aggregate root of one battle: terrain, the live unit store and the
// casualty log. It is owned and mutated by exactly one Scheduler.
type Battlefield struct {
	// ID correlates log lines for one battle run.
	ID string

	terrain    *grid.Grid
	rules      Rules
	units      []*Unit
	occupied   map[grid.Point]*Unit
	casualties []Faction
}

// NewBattlefield places one fresh unit per placement on terrain under rules.
// Unit IDs are assigned in reading order of the placements.
//
// Precondition: terrain must be non-nil.
// Postcondition: Returns a Battlefield with len(placements) living units, or an error wrapping
// ErrInvalidPlacement, or a rules validation error.
func NewBattlefield(terrain *grid.Grid, placements []Placement, rules Rules) (*Battlefield, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("validating rules: %w", err)
	}

	sorted := make([]Placement, len(placements))
	copy(sorted, placements)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pos.Less(sorted[j].Pos) })

	b := &Battlefield{
		ID:       uuid.NewString(),
		terrain:  terrain,
		rules:    rules,
		units:    make([]*Unit, 0, len(sorted)),
		occupied: make(map[grid.Point]*Unit, len(sorted)),
	}
	for i, p := range sorted {
		if !terrain.IsOpen(p.Pos) {
			return nil, fmt.Errorf("%w: %s at %s is not an open cell", ErrInvalidPlacement, p.Faction, p.Pos)
		}
		if _, taken := b.occupied[p.Pos]; taken {
			return nil, fmt.Errorf("%w: %s at %s shares a cell", ErrInvalidPlacement, p.Faction, p.Pos)
		}
		u := &Unit{
			ID:      i,
			Faction: p.Faction,
			HP:      rules.HitPoints,
			Power:   rules.Power(p.Faction),
			Pos:     p.Pos,
		}
		b.units = append(b.units, u)
		b.occupied[u.Pos] = u
	}
	return b, nil
}

// Terrain returns the static terrain map.
func (b *Battlefield) Terrain() *grid.Grid { return b.terrain }

// Rules returns the rules the battlefield was built with.
func (b *Battlefield) Rules() Rules { return b.rules }

// UnitAt returns the living unit at p.
//
// Postcondition: Returns (unit, true) iff a living unit occupies p.
func (b *Battlefield) UnitAt(p grid.Point) (*Unit, bool) {
	u, ok := b.occupied[p]
	return u, ok
}

// IsFree reports whether p is open terrain with no living unit on it.
func (b *Battlefield) IsFree(p grid.Point) bool {
	if !b.terrain.IsOpen(p) {
		return false
	}
	_, taken := b.occupied[p]
	return !taken
}

// MoveUnit relocates the living unit at from to to.
//
// Precondition: a living unit stands at from; to is free and adjacent to from.
// Postcondition: UnitAt(to) returns the moved unit; from is free.
// Panics on any precondition violation: these indicate a defect in the scheduler.
func (b *Battlefield) MoveUnit(from, to grid.Point) {
	u, ok := b.occupied[from]
	if !ok {
		panic(fmt.Sprintf("combat: MoveUnit from %s: no living unit there", from))
	}
	if !b.IsFree(to) {
		panic(fmt.Sprintf("combat: MoveUnit %s from %s to %s: destination not free", u, from, to))
	}
	if !from.Adjacent(to) {
		panic(fmt.Sprintf("combat: MoveUnit %s from %s to %s: not a single orthogonal step", u, from, to))
	}
	delete(b.occupied, from)
	u.Pos = to
	b.occupied[to] = u
}

// remove takes a dead unit off the map and records the casualty.
func (b *Battlefield) remove(u *Unit) {
	if b.occupied[u.Pos] != u {
		panic(fmt.Sprintf("combat: removing %s which is not on the map", u))
	}
	delete(b.occupied, u.Pos)
	b.casualties = append(b.casualties, u.Faction)
}

// Units returns every unit, living or dead, in ID order.
func (b *Battlefield) Units() []*Unit {
	out := make([]*Unit, len(b.units))
	copy(out, b.units)
	return out
}

// Living returns a snapshot of the living units in reading order of their current cells.
//
// Postcondition: Every returned unit is alive; the slice is independent of later moves.
func (b *Battlefield) Living() []*Unit {
	out := make([]*Unit, 0, len(b.occupied))
	idx := make([]int, 0, len(b.occupied))
	for p := range b.occupied {
		idx = append(idx, b.terrain.Index(p))
	}
	sort.Ints(idx)
	for _, i := range idx {
		out = append(out, b.occupied[b.terrain.PointAt(i)])
	}
	return out
}

// LivingCount returns the number of living units of faction f.
func (b *Battlefield) LivingCount(f Faction) int {
	n := 0
	for _, u := range b.occupied {
		if u.Faction == f {
			n++
		}
	}
	return n
}

// TotalLiving returns the number of living units across both factions.
func (b *Battlefield) TotalLiving() int { return len(b.occupied) }

// RemainingHP returns the sum of HP over living units.
//
// Postcondition: Returns >= 0.
func (b *Battlefield) RemainingHP() int {
	total := 0
	for _, u := range b.occupied {
		total += u.HP
	}
	return total
}

// Casualties returns a copy of the casualty log: the faction of every dead unit in order of death.
func (b *Battlefield) Casualties() []Faction {
	out := make([]Faction, len(b.casualties))
	copy(out, b.casualties)
	return out
}

// HasCasualty reports whether faction f has lost at least one unit.
func (b *Battlefield) HasCasualty(f Faction) bool {
	for _, c := range b.casualties {
		if c == f {
			return true
		}
	}
	return false
}

// AdjacentEnemies returns the living enemies orthogonally adjacent to u, in reading order.
func (b *Battlefield) AdjacentEnemies(u *Unit) []*Unit {
	var out []*Unit
	for _, n := range b.terrain.Neighbors(u.Pos) {
		if e, ok := b.occupied[n]; ok && e.Faction != u.Faction {
			out = append(out, e)
		}
	}
	return out
}

// TargetCells returns the free cells orthogonally adjacent to any living enemy of f,
// deduplicated and in reading order.
func (b *Battlefield) TargetCells(f Faction) []grid.Point {
	seen := make(map[grid.Point]bool)
	var out []grid.Point
	for _, u := range b.occupied {
		if u.Faction == f {
			continue
		}
		for _, n := range b.terrain.Neighbors(u.Pos) {
			if seen[n] || !b.IsFree(n) {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	grid.SortReadingOrder(out)
	return out
}
