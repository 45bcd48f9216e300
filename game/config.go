package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotBigEnoughDimension = errors.New("dimension is not big enough")
	ErrDimensionTooLarge     = errors.New("dimension is too large")
	ErrInvalidInterval       = errors.New("interval must be positive")
)

const (
	// minDimension keeps the initial three cell path free of overlaps.
	minDimension = 3
	maxDimension = 1024
)

// Config holds the grid size and the timing of a session.
type Config struct {
	Width           int           // Grid width in cells.
	Height          int           // Grid height in cells.
	FoodLifetime    time.Duration // Age at which a food item expires.
	FoodInterval    time.Duration // Period between food spawns.
	RefreshInterval time.Duration // Period between expiry sweeps.
	TickInterval    time.Duration // Period between path advances.
}

// DefaultConfig returns the classic 25x25 board timings.
func DefaultConfig() Config {
	return Config{
		Width:           25,
		Height:          25,
		FoodLifetime:    10 * time.Second,
		FoodInterval:    3 * time.Second,
		RefreshInterval: time.Second,
		TickInterval:    500 * time.Millisecond,
	}
}

// Validate checks the dimensions and that every period is positive.
func (c Config) Validate() error {
	if err := c.Grid().ValidateSize(); err != nil {
		return err
	}

	intervals := []struct {
		name string
		d    time.Duration
	}{
		{"food lifetime", c.FoodLifetime},
		{"food interval", c.FoodInterval},
		{"refresh interval", c.RefreshInterval},
		{"tick interval", c.TickInterval},
	}
	for _, in := range intervals {
		if in.d <= 0 {
			return fmt.Errorf("%w: %s is %s", ErrInvalidInterval, in.name, in.d)
		}
	}
	return nil
}

func (c Config) Grid() Grid {
	return Grid{Width: c.Width, Height: c.Height}
}
