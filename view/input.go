package view

import (
	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/gdamore/tcell/v2"
)

// KeyDirection maps arrows, hjkl and wasd to a direction.
func KeyDirection(ev *tcell.EventKey) (game.Direction, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return game.Up, true
	case tcell.KeyDown:
		return game.Down, true
	case tcell.KeyLeft:
		return game.Left, true
	case tcell.KeyRight:
		return game.Right, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k', 'w':
			return game.Up, true
		case 'j', 's':
			return game.Down, true
		case 'h', 'a':
			return game.Left, true
		case 'l', 'd':
			return game.Right, true
		}
	}
	return game.Right, false
}

// IsQuit reports whether ev asks to leave the game.
func IsQuit(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return true
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == 'q'
}

// IsRestart reports whether ev asks for a fresh run.
func IsRestart(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyRune && ev.Rune() == 'r'
}
