// Package game is a minimal turn-taking game. Players take turns passing
// until all but one have conceded.
package game

import (
	"fmt"
	"strings"

	"github.com/minaorangina/deckhub/deck"
	"github.com/minaorangina/deckhub/fsm"
	"github.com/minaorangina/deckhub/protocol"
	"github.com/rotisserie/eris"
)

var (
	ErrTooFewPlayers   = eris.New("too few players")
	ErrFnTooFewPlayers = func(min int) error {
		return eris.Wrapf(ErrTooFewPlayers, "minimum of %d players required", min)
	}
)

// Seat is a player at the table
type Seat interface {
	ID() string
	Name() string
	Transmit(text string) error
}

// Table is where announcements go
type Table interface {
	Broadcast(text string)
}

// decked seats bring their own cards
type decked interface {
	Deck() *deck.Deck
}

// Move is a command made by a seated player
type Move struct {
	Cmd  protocol.ServerCommand
	Args []string
	From Seat
}

// Rules configure a game
type Rules struct {
	MinPlayers int
	HandSize   int
}

// DefaultRules are used when no rules are configured
var DefaultRules = Rules{MinPlayers: 2, HandSize: 7}

type seat struct {
	Seat
	library deck.Pile
	hand    []string
}

// Game holds the state of one game. It is driven by the hub it belongs to
// and is not safe for concurrent use.
type Game struct {
	table   Table
	rules   Rules
	seats   []*seat
	turn    int
	winner  Seat
	machine *fsm.Machine[Move, *Game]
}

// New constructs a game for seats, in turn order. Nothing is announced
// until Start.
func New(table Table, seats []Seat, rules Rules) (*Game, error) {
	if len(seats) < rules.MinPlayers {
		return nil, ErrFnTooFewPlayers(rules.MinPlayers)
	}

	g := &Game{
		table:   table,
		rules:   rules,
		machine: fsm.New[Move, *Game](playing),
	}
	for _, s := range seats {
		st := &seat{Seat: s}
		if d, ok := s.(decked); ok && d.Deck() != nil {
			st.library = d.Deck().Library()
			st.library.Shuffle()
		}
		g.seats = append(g.seats, st)
	}

	return g, nil
}

// Start deals the opening hands and announces the first turn
func (g *Game) Start() {
	for _, s := range g.seats {
		s.hand = s.library.Deal(g.rules.HandSize)
		if len(s.hand) > 0 {
			s.Transmit(protocol.Responsef("Your opening hand: %s", strings.Join(s.hand, ", ")))
		}
	}
	g.announceTurn()
}

// Process applies a move
func (g *Game) Process(m Move) {
	g.machine.Process(m, g)
}

// Over reports whether the game has finished
func (g *Game) Over() bool {
	return g.machine.Current() == finished
}

// Winner returns the winner's name, or "" while the game is undecided
func (g *Game) Winner() string {
	if g.winner == nil {
		return ""
	}
	return g.winner.Name()
}

// Current returns the seat whose turn it is, or nil once the game is over
func (g *Game) Current() Seat {
	if g.Over() || len(g.seats) == 0 {
		return nil
	}
	return g.seats[g.turn].Seat
}

// Seats returns the names of the players still in the game, in turn order
func (g *Game) Seats() []string {
	names := make([]string, 0, len(g.seats))
	for _, s := range g.seats {
		names = append(names, s.Name())
	}
	return names
}

// HandSize returns the number of cards in the hand of the seat with id
func (g *Game) HandSize(id string) int {
	if idx := g.find(id); idx >= 0 {
		return len(g.seats[idx].hand)
	}
	return 0
}

func (g *Game) find(id string) int {
	for i, s := range g.seats {
		if s.ID() == id {
			return i
		}
	}
	return -1
}

func (g *Game) announceTurn() {
	g.table.Broadcast(protocol.Broadcast(fmt.Sprintf("%s to play.", g.seats[g.turn].Name())))
}

func (g *Game) advance() {
	g.turn = (g.turn + 1) % len(g.seats)

	s := g.seats[g.turn]
	if drawn := s.library.Deal(1); len(drawn) > 0 {
		s.hand = append(s.hand, drawn...)
		s.Transmit(protocol.Responsef("You draw %s.", drawn[0]))
	}
	g.announceTurn()
}

// remove takes the seat at idx out of the turn order, keeping the turn with
// whoever held it unless that was the removed seat.
func (g *Game) remove(idx int) {
	g.seats = append(g.seats[:idx], g.seats[idx+1:]...)
	if len(g.seats) == 0 {
		g.turn = 0
		return
	}
	if idx < g.turn {
		g.turn--
	}
	g.turn %= len(g.seats)
}
