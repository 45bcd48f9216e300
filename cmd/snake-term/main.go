// Command snake-term plays a local snake session in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/beka-birhanu/vinom-snake-server/config"
	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/beka-birhanu/vinom-snake-server/logger"
	"github.com/beka-birhanu/vinom-snake-server/service"
	"github.com/beka-birhanu/vinom-snake-server/view"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "snake-term: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	gameLogger, err := logger.New("SNAKE-TERM", config.ColorYellow)
	if err != nil {
		return err
	}

	engine, err := game.NewEngine(config.Envs.Game())
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	enc := service.Protobuf{}
	g, err := service.NewGame(uuid.New(), engine, enc, gameLogger)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	last := engine.Snapshot()
	go screen.ChannelEvents(events, quit)
	go g.Start(config.Envs.SessionLimit())

	// Input listener, session and screen go down together.
	defer func() {
		close(quit)
		g.Stop()
		screen.Fini()
	}()

	view.Render(screen, last)

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				view.Render(screen, last)
			case *tcell.EventKey:
				if view.IsQuit(ev) {
					return nil
				}
				if err := handleKey(g, enc, ev); err != nil {
					gameLogger.Warning(fmt.Sprintf("sending key: %s", err))
				}
			}
		case payload, ok := <-g.StateChan():
			if !ok {
				return nil
			}
			snap, err := decode(enc, payload)
			if err != nil {
				gameLogger.Error(err.Error())
				continue
			}
			last = snap
			view.Render(screen, last)
		}
	}
}

func handleKey(g *service.Game, enc service.Protobuf, ev *tcell.EventKey) error {
	if view.IsRestart(ev) {
		return g.Act([]byte{service.RestartActionType})
	}
	d, ok := view.KeyDirection(ev)
	if !ok {
		return nil
	}
	payload, err := enc.MarshalAction(d)
	if err != nil {
		return err
	}
	return g.Act(append([]byte{service.MoveActionType}, payload...))
}

func decode(enc service.Protobuf, payload []byte) (game.Snapshot, error) {
	state, err := enc.UnmarshalGameState(payload)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("decoding state: %w", err)
	}
	return enc.DecodeSnapshot(state)
}
