package players

import (
	"strings"

	"github.com/minaorangina/deckhub/command"
	"github.com/minaorangina/deckhub/deck"
	"github.com/minaorangina/deckhub/protocol"
	uuid "github.com/satori/go.uuid"
)

// NewID constructs a player ID
func NewID() string {
	return uuid.NewV4().String()
}

// Conn represents a connection to a player in the real world
type Conn interface {
	Send(data []byte) error
	Close() error
}

// Flag is a status a player can have
type Flag int

const (
	Ready Flag = iota
)

func (f Flag) String() string {
	switch f {
	case Ready:
		return "ready"
	}
	return ""
}

// Player represents a player connected to a hub.
// A Player is mutated only by the hub it belongs to.
type Player struct {
	id    string
	name  string
	conn  Conn
	cmds  *command.Controller[protocol.ServerCommand]
	flags map[Flag]struct{}
	deck  *deck.Deck
}

// NewPlayer constructs a new player. The always-on commands are enabled
// and masked so that no stage can take them away.
func NewPlayer(id, name string, conn Conn) *Player {
	p := &Player{
		id:    id,
		name:  name,
		conn:  conn,
		flags: map[Flag]struct{}{},
	}

	p.cmds = command.NewController(protocol.Server, p)
	p.cmds.Enable(protocol.AlwaysOn...)
	p.cmds.Mask(protocol.AlwaysOn...)

	return p
}

func (p *Player) ID() string {
	return p.id
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) String() string {
	return p.name
}

// Commands returns the player's command controller
func (p *Player) Commands() *command.Controller[protocol.ServerCommand] {
	return p.cmds
}

// Deck returns the selected deck, or nil
func (p *Player) Deck() *deck.Deck {
	return p.deck
}

// SetDeck attaches a deck to the player
func (p *Player) SetDeck(d *deck.Deck) {
	p.deck = d
}

func (p *Player) HasFlag(f Flag) bool {
	_, ok := p.flags[f]
	return ok
}

func (p *Player) SetFlag(f Flag) {
	p.flags[f] = struct{}{}
}

func (p *Player) ClearFlag(f Flag) {
	delete(p.flags, f)
}

// Transmit sends a line of text to the player
func (p *Player) Transmit(text string) error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Send([]byte(text))
}

// Close closes the player's connection
func (p *Player) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// Players represents all players in a hub
type Players []*Player

// NewPlayers returns a set of Players
func NewPlayers(p ...*Player) Players {
	return Players(p)
}

// AddPlayer adds a player to a set of Players
func AddPlayer(ps Players, p *Player) Players {
	if _, ok := ps.Find(p.ID()); !ok {
		return Players(append(ps, p))
	}
	return ps
}

// RemovePlayer removes the player with id from a set of Players
func RemovePlayer(ps Players, id string) Players {
	remaining := Players{}
	for _, p := range ps {
		if p.ID() != id {
			remaining = append(remaining, p)
		}
	}
	return remaining
}

// Find finds a player by id
func (ps Players) Find(id string) (*Player, bool) {
	for _, p := range ps {
		if got := p.ID(); got == id {
			return p, true
		}
	}
	return nil, false
}

// FindByName finds a player by name, ignoring case
func (ps Players) FindByName(name string) (*Player, bool) {
	for _, p := range ps {
		if strings.EqualFold(p.Name(), name) {
			return p, true
		}
	}
	return nil, false
}

// All reports whether every player has flag f. It is false for no players.
func (ps Players) All(f Flag) bool {
	if len(ps) == 0 {
		return false
	}
	for _, p := range ps {
		if !p.HasFlag(f) {
			return false
		}
	}
	return true
}

// Names returns the name of every player, in order
func (ps Players) Names() []string {
	names := []string{}
	for _, p := range ps {
		names = append(names, p.Name())
	}
	return names
}
