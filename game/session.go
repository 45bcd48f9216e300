package game

// reset starts a new run after a self-collision. Score, heading and path are
// replaced together. Food stays on the board except under the new path.
func (e *Engine) reset() {
	e.score = 0
	e.steering.Reset()
	e.path = InitialPath(e.grid)
	for _, c := range e.path {
		e.foods.Consume(c)
	}
}

// Restart puts the engine back to its initial state, food included.
func (e *Engine) Restart() {
	e.reset()
	e.foods = NewFoodRegistry(e.cfg.FoodLifetime)
	e.seed()
}

func (e *Engine) seed() {
	if c := e.grid.Wrap(seedFood, 0, 0); !e.path.Contains(c) {
		e.foods.add(c, e.clock.Now())
	}
}

// consume eats the food at head, if any, and credits the score.
func (e *Engine) consume(head Cell) bool {
	if !e.foods.Consume(head) {
		return false
	}
	e.score++
	return true
}

// Place puts a food item at c, stamped with the current time. It fails with
// ErrInvalidCoordinate off the grid and returns false when c is already
// taken by food or by the path.
func (e *Engine) Place(c Cell) (bool, error) {
	if err := e.grid.Validate(c); err != nil {
		return false, err
	}
	if e.path.Contains(c) {
		return false, nil
	}
	return e.foods.add(c, e.clock.Now()), nil
}
