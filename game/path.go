package game

import "slices"

// Path is the sequence of cells held by the snake, head first.
type Path []Cell

var initialPath = Path{{X: 8, Y: 12}, {X: 7, Y: 12}, {X: 6, Y: 12}}

// InitialPath returns the starting three cell segment folded onto g.
func InitialPath(g Grid) Path {
	p := make(Path, len(initialPath))
	for i, c := range initialPath {
		p[i] = g.Wrap(c, 0, 0)
	}
	return p
}

func (p Path) Head() Cell {
	return p[0]
}

func (p Path) Tail() Cell {
	return p[len(p)-1]
}

func (p Path) Contains(c Cell) bool {
	return slices.Contains(p, c)
}

// Advance moves the head one step in d and returns the resulting path.
//
// The new head is checked against p before anything is extended; a hit is a
// self-collision and the returned path is nil with collided set. Otherwise
// the tail is dropped unless isFood reports food on the new head, in which
// case the path grows by one. p itself is never modified.
func (p Path) Advance(g Grid, d Direction, isFood func(Cell) bool) (next Path, collided bool) {
	dx, dy := d.Delta()
	head := g.Wrap(p.Head(), dx, dy)
	if p.Contains(head) {
		return nil, true
	}

	size := len(p)
	if isFood(head) {
		size++
	}
	next = make(Path, 0, size)
	next = append(next, head)
	next = append(next, p[:size-1]...)
	return next, false
}

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	return slices.Clone(p)
}
