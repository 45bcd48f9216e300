package service

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/beka-birhanu/vinom-snake-server/service/i"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// Game-related errors.
var (
	ErrGameStopped  = errors.New("game stopped")
	ErrNilEngine    = errors.New("engine is nil")
	ErrEmptyAction  = errors.New("empty action")
	ErrUnknownType  = errors.New("unknown action type")
	ErrNilGameState = errors.New("game state unavailable")
)

// Action record types, the first byte of every record a player sends.
const (
	MoveActionType         byte = 3 << iota // Payload: direction name.
	StateRequestActionType                  // No payload.
	RestartActionType                       // No payload.
)

const (
	stateBufferSize  = 8
	actionBufferSize = 16
)

type stateReply struct {
	state *structpb.Struct
	err   error
}

// Game runs one snake session. Every change to the engine happens on the
// goroutine running Start; other goroutines talk to it through channels.
type Game struct {
	id         uuid.UUID
	engine     *game.Engine
	encoder    i.GameEncoder
	logger     i.Logger
	version    int64                // Game state version for synchronization.
	started    atomic.Bool          // Set once Start runs.
	stop       chan struct{}        // Closed to signal stop.
	stopOnce   sync.Once            // Guards closing stop.
	done       chan struct{}        // Closed once the loop has exited.
	stateChan  chan []byte          // Channel for broadcasting state changes.
	actionChan chan []byte          // Channel for incoming actions.
	queryChan  chan chan stateReply // Snapshot requests served by the loop.
	endChan    chan []byte          // Channel to signal game completion.
	final      *structpb.Struct     // State recorded when the loop exited.
	sync.RWMutex                    // Guards final.
}

// NewGame wraps engine in a session identified by id.
func NewGame(id uuid.UUID, engine *game.Engine, e i.GameEncoder, logger i.Logger) (*Game, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	return &Game{
		id:         id,
		engine:     engine,
		encoder:    e,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		stateChan:  make(chan []byte, stateBufferSize),
		actionChan: make(chan []byte, actionBufferSize),
		queryChan:  make(chan chan stateReply),
		endChan:    make(chan []byte, 1),
	}, nil
}

// Start runs the session loop: the move, spawn and sweep timers plus player
// actions, all applied one at a time. It returns when Stop is called or
// gameDuration elapses; zero means no time limit. All timers are released
// before it returns.
func (g *Game) Start(gameDuration time.Duration) {
	g.started.Store(true)
	defer g.finish()

	select {
	case <-g.stop:
		return
	default:
	}

	cfg := g.engine.Config()
	tick := time.NewTicker(cfg.TickInterval)
	defer tick.Stop()
	spawn := time.NewTicker(cfg.FoodInterval)
	defer spawn.Stop()
	sweep := time.NewTicker(cfg.RefreshInterval)
	defer sweep.Stop()

	var timeout <-chan time.Time
	if gameDuration > 0 {
		timer := time.NewTimer(gameDuration)
		defer timer.Stop()
		timeout = timer.C
	}

	g.publish()
	for {
		select {
		case <-g.stop:
			return
		case <-timeout:
			g.logger.Info(fmt.Sprintf("session %s reached its time limit", g.id))
			return
		case action := <-g.actionChan:
			if err := g.handleAction(action); err != nil {
				g.logger.Warning(fmt.Sprintf("session %s: %s", g.id, err))
			}
		case reply := <-g.queryChan:
			state, err := g.state(false)
			reply <- stateReply{state: state, err: err}
		case <-tick.C:
			g.advance()
		case <-spawn.C:
			g.spawnFood()
		case <-sweep.C:
			if g.engine.SweepFood() > 0 {
				g.changed()
			}
		}
	}
}

// handleAction processes incoming actions based on their type.
func (g *Game) handleAction(action []byte) error {
	if len(action) == 0 {
		return ErrEmptyAction
	}

	switch action[0] {
	case MoveActionType:
		d, err := g.encoder.UnmarshalAction(action[1:])
		if err != nil {
			return err
		}
		if g.engine.SetDirection(d) {
			g.changed()
		}
	case StateRequestActionType:
		g.publish()
	case RestartActionType:
		g.engine.Restart()
		g.changed()
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, action[0])
	}
	return nil
}

func (g *Game) advance() {
	res := g.engine.AdvanceTick()
	if res.Outcome == game.Collided {
		g.logger.Info(fmt.Sprintf("session %s: snake collided with itself, run reset", g.id))
	}
	g.changed()
}

func (g *Game) spawnFood() {
	if _, err := g.engine.SpawnFood(); err != nil {
		g.logger.Warning(fmt.Sprintf("session %s: skipping food spawn: %s", g.id, err))
		return
	}
	g.changed()
}

func (g *Game) changed() {
	g.version++
	g.publish()
}

// publish sends the current state without blocking the loop. A reader that
// falls behind misses intermediate states; the final one goes to EndChan.
func (g *Game) publish() {
	payload, err := g.payload(false)
	if err != nil {
		g.logger.Error(fmt.Sprintf("session %s: encoding state: %s", g.id, err))
		return
	}

	select {
	case g.stateChan <- payload:
	default:
	}
}

func (g *Game) state(ended bool) (*structpb.Struct, error) {
	return g.encoder.NewGameState(g.id, g.version, g.engine.Snapshot(), ended)
}

func (g *Game) payload(ended bool) ([]byte, error) {
	state, err := g.state(ended)
	if err != nil {
		return nil, err
	}
	return g.encoder.MarshalGameState(state)
}

// finish records the final state, delivers it on endChan and closes the
// output channels.
func (g *Game) finish() {
	g.stopOnce.Do(func() { close(g.stop) })

	final, err := g.state(true)
	if err != nil {
		g.logger.Error(fmt.Sprintf("session %s: encoding final state: %s", g.id, err))
	}
	g.Lock()
	g.final = final
	g.Unlock()

	close(g.stateChan)
	if final != nil {
		if payload, err := g.encoder.MarshalGameState(final); err == nil {
			g.endChan <- payload
		}
	}
	close(g.endChan)
	close(g.done)
}

// Stop ends the game and waits until the loop has released its timers.
// It is safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
	if g.started.Load() {
		<-g.done
	}
}

// Act queues an action record for the loop.
func (g *Game) Act(action []byte) error {
	select {
	case <-g.stop:
		return ErrGameStopped
	default:
	}

	select {
	case <-g.stop:
		return ErrGameStopped
	case g.actionChan <- action:
		return nil
	}
}

// Snapshot returns the current state record, or the final one once the
// game has ended. A game stopped before its loop ever ran has no state and
// returns ErrGameStopped.
func (g *Game) Snapshot() (*structpb.Struct, error) {
	reply := make(chan stateReply, 1)
	select {
	case g.queryChan <- reply:
		r := <-reply
		return r.state, r.err
	case <-g.done:
		return g.finalState()
	case <-g.stop:
		if !g.started.Load() {
			return nil, ErrGameStopped
		}
		<-g.done
		return g.finalState()
	}
}

func (g *Game) finalState() (*structpb.Struct, error) {
	g.RLock()
	defer g.RUnlock()
	if g.final == nil {
		return nil, ErrNilGameState
	}
	return g.final, nil
}

// ID returns the session ID.
func (g *Game) ID() uuid.UUID {
	return g.id
}

// StateChan returns the state change channel.
func (g *Game) StateChan() <-chan []byte {
	return g.stateChan
}

// EndChan returns the end channel for the game.
func (g *Game) EndChan() <-chan []byte {
	return g.endChan
}
