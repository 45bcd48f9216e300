package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidCoordinate is returned when a cell lies outside the grid.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Cell is a grid coordinate. X grows to the right, Y grows downwards.
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid is a toroidal board: leaving one edge re-enters from the opposite one.
type Grid struct {
	Width  int
	Height int
}

// RandomCell samples a cell uniformly from the grid. The cell may be occupied.
func (g Grid) RandomCell(rng *rand.Rand) Cell {
	return Cell{X: rng.IntN(g.Width), Y: rng.IntN(g.Height)}
}

// Wrap moves c by (dx, dy) and folds the result back onto the grid.
func (g Grid) Wrap(c Cell, dx, dy int) Cell {
	return Cell{
		X: mod(c.X+dx, g.Width),
		Y: mod(c.Y+dy, g.Height),
	}
}

// InBounds reports whether c lies on the grid.
func (g Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// Validate returns ErrInvalidCoordinate if c lies outside the grid.
func (g Grid) Validate(c Cell) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %s on %dx%d grid", ErrInvalidCoordinate, c, g.Width, g.Height)
	}
	return nil
}

// ValidateSize checks that both dimensions lie in [minDimension, maxDimension].
func (g Grid) ValidateSize() error {
	if g.Width < minDimension || g.Height < minDimension {
		return fmt.Errorf("%w: %dx%d, minimum %d", ErrNotBigEnoughDimension, g.Width, g.Height, minDimension)
	}
	if g.Width > maxDimension || g.Height > maxDimension {
		return fmt.Errorf("%w: %dx%d, maximum %d", ErrDimensionTooLarge, g.Width, g.Height, maxDimension)
	}
	return nil
}

// Size is the number of cells on the grid.
func (g Grid) Size() int {
	return g.Width * g.Height
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
