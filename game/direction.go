package game

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownDirection = errors.New("unknown direction")

// Direction is one of the four unit headings.
type Direction uint8

const (
	Right Direction = iota
	Left
	Up
	Down
)

var directionNames = [...]string{
	Right: "right",
	Left:  "left",
	Up:    "up",
	Down:  "down",
}

// Delta returns the unit step of d. Up decreases Y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Left:
		return -1, 0
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	default:
		return 1, 0
	}
}

// Opposite returns the heading that would reverse d.
func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Up:
		return Down
	case Down:
		return Up
	default:
		return Left
	}
}

func (d Direction) Valid() bool {
	return int(d) < len(directionNames)
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// ParseDirection accepts the direction names case-insensitively.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d, n := range directionNames {
		if n == name {
			return Direction(d), nil
		}
	}
	return Right, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Steering holds the requested heading and the heading the snake last moved
// along. A request that reverses the last move is refused; later requests
// before the next move replace earlier ones.
type Steering struct {
	heading Direction
	applied Direction
}

// NewSteering returns a Steering heading Right.
func NewSteering() *Steering {
	return &Steering{heading: Right, applied: Right}
}

func (s *Steering) Heading() Direction {
	return s.heading
}

// Turn requests d for the next move unless it reverses the last move. It
// reports whether the request was taken; a refused turn leaves the state
// untouched.
func (s *Steering) Turn(d Direction) bool {
	if !d.Valid() || d == s.applied.Opposite() {
		return false
	}
	s.heading = d
	return true
}

// Commit records that the snake moved along the requested heading.
func (s *Steering) Commit() {
	s.applied = s.heading
}

// Reset restores the initial heading.
func (s *Steering) Reset() {
	s.heading = Right
	s.applied = Right
}
