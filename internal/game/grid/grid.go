// Package grid provides the bounded terrain map a battle is played on.
// It knows nothing about units; occupancy is tracked by the combat package.
package grid

import (
	"fmt"
	"sort"
)

// Point is a cell coordinate. X grows to the right, Y grows downward.
type Point struct {
	X int
	Y int
}

// String returns "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Less reports whether p precedes q in reading order: top-to-bottom, then left-to-right.
//
// Postcondition: Returns true iff p.Y < q.Y, or p.Y == q.Y and p.X < q.X.
func (p Point) Less(q Point) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// Adjacent reports whether p and q share an edge.
func (p Point) Adjacent(q Point) bool {
	dx, dy := p.X-q.X, p.Y-q.Y
	return (dx == 0 && (dy == 1 || dy == -1)) || (dy == 0 && (dx == 1 || dx == -1))
}

// orthogonal offsets listed in reading order: up, left, right, down.
var orthogonal = [4]Point{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}

// SortReadingOrder sorts pts in place by reading order.
func SortReadingOrder(pts []Point) {
	sort.Slice(pts, func(i, j int) bool { return pts[i].Less(pts[j]) })
}

// Terrain is the static content of a cell.
type Terrain int

const (
	Open Terrain = iota
	Wall
)

// String returns the map rune for the terrain.
func (t Terrain) String() string {
	switch t {
	case Open:
		return "."
	case Wall:
		return "#"
	default:
		return "?"
	}
}

// Grid is a rectangular terrain map. Cells outside the bounds behave as walls.
type Grid struct {
	width  int
	height int
	cells  []Terrain
}

// New creates a width x height grid with every cell open.
//
// Precondition: width >= 1 and height >= 1.
// Postcondition: Returns a grid where IsOpen is true for every in-bounds point.
func New(width, height int) *Grid {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("grid: invalid dimensions %dx%d", width, height))
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Terrain, width*height),
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// InBounds reports whether p lies inside the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Index maps p to its row-major cell index. Reading order and index order coincide.
//
// Precondition: InBounds(p).
func (g *Grid) Index(p Point) int {
	return p.Y*g.width + p.X
}

// PointAt is the inverse of Index.
func (g *Grid) PointAt(idx int) Point {
	return Point{X: idx % g.width, Y: idx / g.width}
}

// SetWall marks p as a wall.
//
// Precondition: InBounds(p).
func (g *Grid) SetWall(p Point) {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("grid: SetWall out of bounds at %s", p))
	}
	g.cells[g.Index(p)] = Wall
}

// At returns the terrain at p; out-of-bounds points report Wall.
func (g *Grid) At(p Point) Terrain {
	if !g.InBounds(p) {
		return Wall
	}
	return g.cells[g.Index(p)]
}

// IsOpen reports whether p is in bounds and not a wall.
func (g *Grid) IsOpen(p Point) bool {
	return g.At(p) == Open
}

// Neighbors returns the in-bounds orthogonal neighbours of p in reading order.
// Diagonals are never included.
//
// Postcondition: len(result) <= 4; every element is InBounds and Adjacent to p.
func (g *Grid) Neighbors(p Point) []Point {
	out := make([]Point, 0, 4)
	for _, d := range orthogonal {
		n := Point{X: p.X + d.X, Y: p.Y + d.Y}
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}
