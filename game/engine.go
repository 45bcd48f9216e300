package game

import (
	"math/rand/v2"
)

// Outcome describes what a tick did to the path.
type Outcome uint8

const (
	Moved    Outcome = iota // Advanced without eating.
	Ate                     // Advanced onto food and grew.
	Collided                // Ran into itself; the run was reset.
)

func (o Outcome) String() string {
	switch o {
	case Ate:
		return "ate"
	case Collided:
		return "collided"
	default:
		return "moved"
	}
}

// TickResult reports the effect of one AdvanceTick.
type TickResult struct {
	Outcome Outcome
	Head    Cell // Head after the tick; the initial head after a reset.
	Score   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for food timestamps.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithRand replaces the random source used for food placement.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// Engine owns the state of one game: the path, the food registry, the
// steering and the score. It is not safe for concurrent use; a session
// drives it from a single goroutine.
type Engine struct {
	cfg      Config
	grid     Grid
	path     Path
	foods    *FoodRegistry
	steering *Steering
	score    int
	clock    Clock
	rng      *rand.Rand
}

// seedFood is where the first food item waits when a game starts.
var seedFood = Cell{X: 4, Y: 10}

// NewEngine validates cfg and returns an engine in its initial state.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		grid:     cfg.Grid(),
		foods:    NewFoodRegistry(cfg.FoodLifetime),
		steering: NewSteering(),
		clock:    SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	e.path = InitialPath(e.grid)
	e.seed()
	return e, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// AdvanceTick moves the snake one step along the current heading.
func (e *Engine) AdvanceTick() TickResult {
	next, collided := e.path.Advance(e.grid, e.steering.Heading(), e.foods.Contains)
	if collided {
		e.reset()
		return TickResult{Outcome: Collided, Head: e.path.Head(), Score: e.score}
	}

	e.path = next
	e.steering.Commit()
	head := next.Head()
	if e.consume(head) {
		return TickResult{Outcome: Ate, Head: head, Score: e.score}
	}
	return TickResult{Outcome: Moved, Head: head, Score: e.score}
}

// SpawnFood adds one food item on a free cell. On a saturated grid it
// returns ErrGridSaturated and leaves the registry unchanged.
func (e *Engine) SpawnFood() (Food, error) {
	return e.foods.Spawn(e.grid, e.rng, e.clock.Now(), e.path.Contains)
}

// SweepFood removes expired food and returns how many items went away.
func (e *Engine) SweepFood() int {
	return e.foods.SweepExpired(e.clock.Now())
}

// SetDirection requests a turn for the next tick. A turn back along the last
// move is ignored and reported as false.
func (e *Engine) SetDirection(d Direction) bool {
	return e.steering.Turn(d)
}

func (e *Engine) Heading() Direction {
	return e.steering.Heading()
}

func (e *Engine) Score() int {
	return e.score
}

// Path returns a copy of the current path.
func (e *Engine) Path() Path {
	return e.path.Clone()
}

// Foods returns a copy of the live food items.
func (e *Engine) Foods() []Food {
	return e.foods.Items()
}

// CellAt classifies c against the live state.
func (e *Engine) CellAt(c Cell) (CellType, error) {
	if err := e.grid.Validate(c); err != nil {
		return CellEmpty, err
	}
	switch {
	case e.foods.Contains(c):
		return CellFood, nil
	case e.path.Contains(c):
		return CellSnake, nil
	default:
		return CellEmpty, nil
	}
}

// Snapshot copies the state for readers outside the session loop.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Grid:    e.grid,
		Path:    e.path.Clone(),
		Foods:   e.foods.Items(),
		Heading: e.steering.Heading(),
		Score:   e.score,
	}
}
