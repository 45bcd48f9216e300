// Package view draws snake snapshots on a terminal and maps key presses to
// directions.
package view

import (
	"fmt"

	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/gdamore/tcell/v2"
)

const (
	headRune  = '@'
	bodyRune  = 'o'
	foodRune  = '*'
	emptyRune = '.'

	// The grid starts below the score line.
	gridTop = 1
)

var (
	defStyle   = tcell.StyleDefault.Background(tcell.ColorDefault).Foreground(tcell.ColorDefault)
	snakeStyle = defStyle.Foreground(tcell.ColorYellowGreen)
	headStyle  = snakeStyle.Bold(true)
	foodStyle  = defStyle.Foreground(tcell.ColorDarkOrange)
	emptyStyle = defStyle.Foreground(tcell.ColorDimGray)
)

// Render draws the score line and the grid of snap onto screen and shows it.
func Render(screen tcell.Screen, snap game.Snapshot) {
	screen.Clear()
	drawText(screen, 0, 0, fmt.Sprintf("Score: %d", snap.Score), defStyle)

	cells := snap.Cells()
	for y := 0; y < snap.Grid.Height; y++ {
		for x := 0; x < snap.Grid.Width; x++ {
			r, style := emptyRune, emptyStyle
			switch cells[y*snap.Grid.Width+x] {
			case game.CellSnake:
				r, style = bodyRune, snakeStyle
			case game.CellFood:
				r, style = foodRune, foodStyle
			}
			screen.SetContent(x, y+gridTop, r, nil, style)
		}
	}

	if len(snap.Path) > 0 {
		head := snap.Path.Head()
		screen.SetContent(head.X, head.Y+gridTop, headRune, nil, headStyle)
	}
	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
