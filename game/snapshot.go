package game

// CellType classifies a cell for rendering.
type CellType uint8

const (
	CellEmpty CellType = iota
	CellSnake
	CellFood
)

func (t CellType) String() string {
	switch t {
	case CellSnake:
		return "snake"
	case CellFood:
		return "food"
	default:
		return "empty"
	}
}

// Snapshot is an immutable copy of the engine state.
type Snapshot struct {
	Grid    Grid
	Path    Path
	Foods   []Food
	Heading Direction
	Score   int
}

// CellAt classifies c. Food takes precedence over the snake.
func (s Snapshot) CellAt(c Cell) (CellType, error) {
	if err := s.Grid.Validate(c); err != nil {
		return CellEmpty, err
	}
	for _, f := range s.Foods {
		if f.Cell == c {
			return CellFood, nil
		}
	}
	if s.Path.Contains(c) {
		return CellSnake, nil
	}
	return CellEmpty, nil
}

// Cells classifies the whole grid in row-major order.
func (s Snapshot) Cells() []CellType {
	cells := make([]CellType, s.Grid.Size())
	for _, c := range s.Path {
		cells[c.Y*s.Grid.Width+c.X] = CellSnake
	}
	for _, f := range s.Foods {
		cells[f.Y*s.Grid.Width+f.X] = CellFood
	}
	return cells
}
