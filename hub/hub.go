// Package hub coordinates the players gathered in one place. Every line a
// player sends is parsed by that player's command controller and handed to
// the hub's current stage: the lobby while players pick decks, then the
// game.
package hub

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/minaorangina/deckhub/command"
	"github.com/minaorangina/deckhub/deck"
	"github.com/minaorangina/deckhub/fsm"
	"github.com/minaorangina/deckhub/game"
	"github.com/minaorangina/deckhub/players"
	"github.com/minaorangina/deckhub/protocol"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var (
	ErrGameInProgress = eris.New("game in progress")
	ErrHubFull        = eris.New("hub is full")
	ErrNameTaken      = eris.New("name taken")
	ErrNotInHub       = eris.New("player not in hub")
	ErrHubClosed      = eris.New("hub closed")
	ErrFnHubFull      = func(max int) error {
		return eris.Wrapf(ErrHubFull, "maximum of %d players allowed", max)
	}
)

// DefaultMaxPlayers is used when no maximum is configured
const DefaultMaxPlayers = 4

const repositoryTimeout = 5 * time.Second

// Request is a command sent by a player, as seen by a stage
type Request struct {
	Cmd  *command.Compiled[protocol.ServerCommand]
	From *players.Player
}

// Engine is a running game
type Engine interface {
	Start()
	Process(m game.Move)
	Over() bool
	Winner() string
}

// EngineFactory constructs the game when every player is ready
type EngineFactory func(table game.Table, seats []game.Seat) (Engine, error)

// GameEngine returns a factory for games played by rules
func GameEngine(rules game.Rules) EngineFactory {
	return func(table game.Table, seats []game.Seat) (Engine, error) {
		g, err := game.New(table, seats, rules)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

// Options configure a Hub
type Options struct {
	Decks      deck.Repository
	NewEngine  EngineFactory
	MaxPlayers int
	Logger     zerolog.Logger
	Context    context.Context
}

type inbound struct {
	playerID string
	line     string
}

type arrival struct {
	player *players.Player
	result chan error
}

type departure struct {
	playerID string
	done     chan struct{}
}

// Hub holds the players, the current stage and the running game, if any.
// All processing is serialised by mu.
type Hub struct {
	mu         sync.Mutex
	id         string
	players    players.Players
	machine    *fsm.Machine[Request, *Hub]
	engine     Engine
	decks      deck.Repository
	newEngine  EngineFactory
	maxPlayers int
	log        zerolog.Logger
	ctx        context.Context

	registerCh   chan arrival
	unregisterCh chan departure
	inboundCh    chan inbound
	done         chan struct{}
}

// New constructs a hub in the lobby
func New(id string, opts Options) *Hub {
	if opts.NewEngine == nil {
		opts.NewEngine = GameEngine(game.DefaultRules)
	}
	if opts.Decks == nil {
		opts.Decks = deck.NewLibrary(deck.DefaultRules)
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = DefaultMaxPlayers
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	return &Hub{
		id:           id,
		players:      players.Players{},
		machine:      fsm.New[Request, *Hub](Lobby),
		decks:        opts.Decks,
		newEngine:    opts.NewEngine,
		maxPlayers:   opts.MaxPlayers,
		log:          opts.Logger.With().Str("hub_id", id).Logger(),
		ctx:          opts.Context,
		registerCh:   make(chan arrival),
		unregisterCh: make(chan departure),
		inboundCh:    make(chan inbound),
		done:         make(chan struct{}),
	}
}

func (h *Hub) ID() string {
	return h.id
}

// Stage returns the current stage
func (h *Hub) Stage() Stage {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.machine.Current()
}

// StageName returns the name of the current stage
func (h *Hub) StageName() string {
	return StageName(h.Stage())
}

// Engine returns the running game, or nil outside a game
func (h *Hub) Engine() Engine {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.engine
}

// Players returns the names of the players, in join order
func (h *Hub) Players() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.players.Names()
}

// Find finds a player by id
func (h *Hub) Find(id string) (*players.Player, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.players.Find(id)
}

// Join adds p to the hub. Players can only join in the lobby.
func (h *Hub) Join(p *players.Player) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.machine.Current() != Lobby {
		return ErrGameInProgress
	}
	if _, ok := h.players.Find(p.ID()); ok {
		return nil
	}
	if len(h.players) >= h.maxPlayers {
		return ErrFnHubFull(h.maxPlayers)
	}
	if _, ok := h.players.FindByName(p.Name()); ok {
		return eris.Wrapf(ErrNameTaken, "'%s' is already in the hub", p.Name())
	}

	h.players = players.AddPlayer(h.players, p)
	p.Commands().SetEnabled(protocol.LobbyCommands...)
	h.log.Info().Str("player_id", p.ID()).Str("name", p.Name()).Msg("player joined")
	h.broadcast(protocol.Broadcast(p.Name() + " has joined the hub."))

	return nil
}

// Leave removes the player with id from the hub. Leaving a game concedes it.
func (h *Hub) Leave(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if p, ok := h.players.Find(id); ok {
		h.leave(p)
	}
}

func (h *Hub) leave(p *players.Player) {
	h.players = players.RemovePlayer(h.players, p.ID())
	p.Commands().SetEnabled()
	p.ClearFlag(players.Ready)
	h.log.Info().Str("player_id", p.ID()).Msg("player left")
	h.broadcast(protocol.Broadcast(p.Name() + " has left the hub."))

	switch h.machine.Current() {
	case Game:
		h.machine.Process(Request{
			Cmd:  p.Commands().Compile(protocol.Concede),
			From: p,
		}, h)
	case Lobby:
		// the one player everyone was waiting for may have just left
		if len(h.players) > 0 && h.players.All(players.Ready) {
			first := h.players[0]
			h.machine.Process(Request{
				Cmd:  first.Commands().Compile(protocol.Ready),
				From: first,
			}, h)
		}
	}
}

// Dispatch parses line with p's command controller and processes it.
// Unknown and disabled commands are refused before any stage sees them.
func (h *Hub) Dispatch(p *players.Player, line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.players.Find(p.ID()); !ok {
		return eris.Wrapf(ErrNotInHub, "player %s", p.ID())
	}

	cc := p.Commands().Parse(line)
	h.log.Debug().Str("player_id", p.ID()).Str("command", cc.String()).Msg("dispatch")

	cmd, ok := cc.Command()
	switch {
	case !ok && strings.TrimSpace(cc.Rest(0)) == "":
		return nil
	case !ok:
		h.transmit(p, protocol.Error("Unknown command"))
		return nil
	case !cc.IsEnabled():
		h.transmit(p, protocol.Error("Command not available"))
		return nil
	case cmd == protocol.Quit:
		h.leave(p)
		if err := p.Close(); err != nil {
			h.log.Warn().Err(err).Str("player_id", p.ID()).Msg("closing connection")
		}
		return nil
	}

	h.machine.Process(Request{Cmd: cc, From: p}, h)
	return nil
}

// Broadcast sends text to every player
func (h *Hub) Broadcast(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.broadcast(text)
}

// Transmit sends text to p
func (h *Hub) Transmit(p *players.Player, text string) {
	h.transmit(p, text)
}

func (h *Hub) broadcast(text string) {
	for _, p := range h.players {
		h.transmit(p, text)
	}
}

func (h *Hub) transmit(p *players.Player, text string) {
	if err := p.Transmit(text); err != nil {
		h.log.Warn().Err(err).Str("player_id", p.ID()).Msg("transmit failed")
	}
}

func (h *Hub) repositoryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(h.ctx, repositoryTimeout)
}

// table is the hub as seen by the game it runs. Its calls arrive while the
// hub is already locked.
type table struct {
	h *Hub
}

func (t table) Broadcast(text string) {
	t.h.broadcast(text)
}

// Done is closed once Listen has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Register queues p to join the hub and waits for the outcome. A refused
// joiner has already been told why and hung up on. ErrHubClosed means the
// hub stopped before p could join.
func (h *Hub) Register(p *players.Player) error {
	a := arrival{player: p, result: make(chan error, 1)}
	select {
	case h.registerCh <- a:
		return <-a.result
	case <-h.done:
		return ErrHubClosed
	}
}

// Unregister queues the player with id to leave the hub and waits until
// they have left
func (h *Hub) Unregister(id string) {
	d := departure{playerID: id, done: make(chan struct{})}
	select {
	case h.unregisterCh <- d:
		<-d.done
	case <-h.done:
	}
}

// Receive queues a line sent by the player with id
func (h *Hub) Receive(id, line string) {
	select {
	case h.inboundCh <- inbound{playerID: id, line: line}:
	case <-h.done:
	}
}

// Listen processes queued registrations and lines until ctx is done.
// Once it returns, nothing more is queued. It must be called only once.
func (h *Hub) Listen(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return

		case a := <-h.registerCh:
			err := h.Join(a.player)
			if err != nil {
				h.transmit(a.player, protocol.Error(err.Error()))
				a.player.Close()
			}
			a.result <- err

		case d := <-h.unregisterCh:
			h.Leave(d.playerID)
			close(d.done)

		case msg := <-h.inboundCh:
			p, ok := h.Find(msg.playerID)
			if !ok {
				h.log.Warn().Str("player_id", msg.playerID).Msg("message from unknown player")
				continue
			}
			if err := h.Dispatch(p, msg.line); err != nil {
				h.log.Error().Err(err).Send()
			}
		}
	}
}
