package combat

import (
	"github.com/cory-johannsen/cavecombat/internal/game/grid"
)

const unreached = -1

// Pathfinder runs breadth-first searches over the free cells of a Battlefield.
// It holds no state between calls and observes occupancy at call time.
type Pathfinder struct {
	field *Battlefield
}

// NewPathfinder returns a Pathfinder over b.
func NewPathfinder(b *Battlefield) *Pathfinder {
	return &Pathfinder{field: b}
}

// Distances returns the step distance from src to every cell, indexed by grid.Index.
// Only free cells are expanded; src itself is the root even though its own unit occupies it.
//
// Postcondition: dist[Index(src)] == 0; unreachable cells hold -1.
func (pf *Pathfinder) Distances(src grid.Point) []int {
	g := pf.field.terrain
	dist := make([]int, g.Len())
	for i := range dist {
		dist[i] = unreached
	}
	dist[g.Index(src)] = 0
	frontier := []grid.Point{src}
	for len(frontier) > 0 {
		var next []grid.Point
		for _, p := range frontier {
			d := dist[g.Index(p)]
			for _, n := range g.Neighbors(p) {
				ni := g.Index(n)
				if dist[ni] != unreached || !pf.field.IsFree(n) {
					continue
				}
				dist[ni] = d + 1
				next = append(next, n)
			}
		}
		frontier = next
	}
	return dist
}

// Move describes the outcome of a path search for one unit.
type Move struct {
	// Destination is the chosen in-range cell.
	Destination grid.Point
	// Step is the first cell to enter on the way to Destination.
	Step grid.Point
	// Distance is the number of steps from the source to Destination.
	Distance int
}

// BestMove picks the nearest reachable candidate (ties by reading order of the candidate)
// and then the first step toward it (ties by reading order of the step).
//
// Precondition: src holds the moving unit; candidates are free cells.
// Postcondition: ok is false iff no candidate is reachable; otherwise Step is a free
// neighbour of src lying on a shortest path to Destination.
func (pf *Pathfinder) BestMove(src grid.Point, candidates []grid.Point) (Move, bool) {
	g := pf.field.terrain
	fromSrc := pf.Distances(src)

	best := Move{Distance: unreached}
	for _, c := range candidates {
		d := fromSrc[g.Index(c)]
		if d <= 0 {
			continue
		}
		if best.Distance == unreached || d < best.Distance || (d == best.Distance && c.Less(best.Destination)) {
			best = Move{Destination: c, Distance: d}
		}
	}
	if best.Distance == unreached {
		return Move{}, false
	}

	fromDest := pf.Distances(best.Destination)
	for _, n := range g.Neighbors(src) {
		if !pf.field.IsFree(n) {
			continue
		}
		if fromDest[g.Index(n)]+1 == best.Distance {
			best.Step = n
			return best, true
		}
	}
	// A reachable destination always has a first step on a shortest path.
	panic("combat: BestMove found a destination without a first step from " + src.String())
}
