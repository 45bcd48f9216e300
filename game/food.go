package game

import (
	"errors"
	"math/rand/v2"
	"slices"
	"time"
)

// maxSpawnAttempts bounds the rejection sampling in Spawn so a full grid
// cannot stall the session loop.
const maxSpawnAttempts = 1024

// ErrGridSaturated is returned by Spawn when no free cell was found.
var ErrGridSaturated = errors.New("no free cell for food")

// Food is an item waiting on the grid since ArrivalTime.
type Food struct {
	Cell
	ArrivalTime time.Time
}

// FoodRegistry keeps the live food items in arrival order.
type FoodRegistry struct {
	items    []Food
	lifetime time.Duration
}

func NewFoodRegistry(lifetime time.Duration) *FoodRegistry {
	return &FoodRegistry{lifetime: lifetime}
}

// Spawn places a new item on a cell that is neither food nor occupied.
// It gives up with ErrGridSaturated after maxSpawnAttempts samples.
func (r *FoodRegistry) Spawn(g Grid, rng *rand.Rand, now time.Time, occupied func(Cell) bool) (Food, error) {
	for range maxSpawnAttempts {
		c := g.RandomCell(rng)
		if occupied(c) || r.Contains(c) {
			continue
		}
		f := Food{Cell: c, ArrivalTime: now}
		r.items = append(r.items, f)
		return f, nil
	}
	return Food{}, ErrGridSaturated
}

// add places an item at a known cell. It is a no-op if food is already there.
func (r *FoodRegistry) add(c Cell, now time.Time) bool {
	if r.Contains(c) {
		return false
	}
	r.items = append(r.items, Food{Cell: c, ArrivalTime: now})
	return true
}

// SweepExpired drops every item whose age reached the lifetime and returns
// how many were removed. Every item is checked, not only a leading run.
func (r *FoodRegistry) SweepExpired(now time.Time) int {
	before := len(r.items)
	r.items = slices.DeleteFunc(r.items, func(f Food) bool {
		return now.Sub(f.ArrivalTime) >= r.lifetime
	})
	return before - len(r.items)
}

// Consume removes the item at c and reports whether there was one.
func (r *FoodRegistry) Consume(c Cell) bool {
	i := r.index(c)
	if i < 0 {
		return false
	}
	r.items = slices.Delete(r.items, i, i+1)
	return true
}

func (r *FoodRegistry) Contains(c Cell) bool {
	return r.index(c) >= 0
}

// Items returns a copy of the live items, oldest first.
func (r *FoodRegistry) Items() []Food {
	return slices.Clone(r.items)
}

func (r *FoodRegistry) Len() int {
	return len(r.items)
}

func (r *FoodRegistry) index(c Cell) int {
	return slices.IndexFunc(r.items, func(f Food) bool {
		return f.Cell == c
	})
}
