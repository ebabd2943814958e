package hub

import (
	"fmt"
	"sort"
	"strings"

	"github.com/minaorangina/deckhub/deck"
	"github.com/minaorangina/deckhub/fsm"
	"github.com/minaorangina/deckhub/game"
	"github.com/minaorangina/deckhub/players"
	"github.com/minaorangina/deckhub/protocol"
)

// Stage is a phase of a hub
type Stage = fsm.State[Request, *Hub]

var (
	// Lobby is where players pick their decks and get ready
	Lobby Stage = lobby{}
	// Game is where a game is running
	Game Stage = inGame{}
)

// StageName returns the name of s
func StageName(s Stage) string {
	if named, ok := s.(fmt.Stringer); ok {
		return named.String()
	}
	return "UNKNOWN"
}

type lobby struct{}

func (lobby) String() string { return "LOBBY" }

func (lobby) Process(req Request, h *Hub) Stage {
	p := req.From
	cmd, _ := req.Cmd.Command()

	if handleAlwaysOn(cmd, req, h) {
		return Lobby
	}

	switch cmd {
	case protocol.ListDecks:
		ctx, cancel := h.repositoryContext()
		defer cancel()

		names, err := h.decks.ListDecks(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("listing decks")
			h.transmit(p, protocol.Error("Could not list decks."))
			return Lobby
		}
		sort.Strings(names)
		h.transmit(p, protocol.Responsef("Decks:\n%s", protocol.List(names)))

	case protocol.ShowDeck:
		name := req.Cmd.Rest(1)
		if name == "" {
			h.transmit(p, protocol.Error("Which deck? Usage: show <deck>"))
			return Lobby
		}

		ctx, cancel := h.repositoryContext()
		defer cancel()

		cards, err := h.decks.GetDeck(ctx, name)
		if err != nil {
			h.transmit(p, protocol.Error(err.Error()))
			return Lobby
		}
		h.transmit(p, protocol.Responsef("%s:\n%s", name, protocol.List(deck.Lines(cards))))

	case protocol.SelectDeck:
		name := req.Cmd.Rest(1)
		if name == "" {
			h.transmit(p, protocol.Error("Which deck? Usage: select <deck>"))
			return Lobby
		}

		ctx, cancel := h.repositoryContext()
		defer cancel()

		d, err := h.decks.BuildDeck(ctx, p.ID(), name)
		if err != nil {
			h.transmit(p, protocol.Error(err.Error()))
			return Lobby
		}
		p.SetDeck(d)
		h.transmit(p, protocol.Responsef("Selected deck %s (%d cards).", d.Name, d.Size()))

	case protocol.Ready:
		if p.Deck() == nil {
			h.transmit(p, protocol.Error("You must select deck first."))
			return Lobby
		}

		p.SetFlag(players.Ready)
		if !h.players.All(players.Ready) {
			h.broadcast(protocol.Broadcast(fmt.Sprintf("%s is ready. Waiting for all players to be ready.", p.Name())))
			return Lobby
		}

		seats := make([]game.Seat, 0, len(h.players))
		for _, p := range h.players {
			seats = append(seats, p)
		}
		engine, err := h.newEngine(table{h}, seats)
		if err != nil {
			h.log.Warn().Err(err).Msg("starting game")
			h.transmit(p, protocol.Error(err.Error()))
			return Lobby
		}

		h.broadcast(protocol.Broadcast(fmt.Sprintf("Starting a game. %s goes first.", h.players[0].Name())))
		h.engine = engine
		return Game

	case protocol.Unready:
		p.ClearFlag(players.Ready)
		h.broadcast(protocol.Broadcast(p.Name() + " is not ready."))

	default:
		h.transmit(p, protocol.Error("Command not available"))
	}

	return Lobby
}

func (lobby) OnEnter(prev Stage, h *Hub) {
	h.engine = nil
	for _, p := range h.players {
		p.ClearFlag(players.Ready)
		p.Commands().SetEnabled(protocol.LobbyCommands...)
	}
	h.broadcast(protocol.Broadcast("Waiting for players."))
}

func (lobby) OnExit(next Stage, h *Hub) {}

type inGame struct{}

func (inGame) String() string { return "GAME" }

func (inGame) Process(req Request, h *Hub) Stage {
	cmd, _ := req.Cmd.Command()

	if handleAlwaysOn(cmd, req, h) {
		return Game
	}
	if cmd == protocol.EndGame {
		return Lobby
	}

	h.engine.Process(game.Move{Cmd: cmd, Args: req.Cmd.Args(), From: req.From})
	if h.engine.Over() {
		return Lobby
	}
	return Game
}

func (inGame) OnEnter(prev Stage, h *Hub) {
	for _, p := range h.players {
		p.Commands().SetEnabled(protocol.GameCommands...)
	}
	h.engine.Start()
}

func (inGame) OnExit(next Stage, h *Hub) {
	winner := h.engine.Winner()
	if winner == "" {
		winner = "none"
	}
	h.broadcast(protocol.Broadcast("Winner: " + winner))
}

// handleAlwaysOn handles the commands every stage shares. It reports
// whether cmd was one of them.
func handleAlwaysOn(cmd protocol.ServerCommand, req Request, h *Hub) bool {
	p := req.From

	switch cmd {
	case protocol.Help:
		h.transmit(p, strings.Join(helpLines(req), "\n"))

	case protocol.Who:
		lines := []string{}
		for _, other := range h.players {
			lines = append(lines, describe(other))
		}
		h.transmit(p, protocol.Responsef("Players:\n%s", protocol.List(lines)))

	case protocol.Say:
		text := req.Cmd.Rest(1)
		if text == "" {
			h.transmit(p, protocol.Error("Say what?"))
			return true
		}
		h.broadcast(protocol.Chat(p.Name(), text))

	default:
		return false
	}

	return true
}

// helpLines returns the help for the command named by argument 1, or for
// every command when it names none.
func helpLines(req Request) []string {
	cmds := req.Cmd.Controller()
	target := req.Cmd.Arg(1)

	if target != "" {
		if lines := cmds.HelpFor(target); len(lines) > 0 {
			return lines
		}
		if cmd, ok := cmds.Vocabulary().Lookup(target); ok {
			return []string{cmds.Vocabulary().Help(cmd)}
		}
	}
	return cmds.HelpAll()
}

func describe(p *players.Player) string {
	status := []string{}
	if p.HasFlag(players.Ready) {
		status = append(status, "ready")
	}
	if d := p.Deck(); d != nil {
		status = append(status, "deck "+d.Name)
	} else {
		status = append(status, "no deck")
	}
	return fmt.Sprintf("%s (%s)", p.Name(), strings.Join(status, ", "))
}
