// Package protocol defines the commands a player can send to a hub and the
// plain text formatting of what the hub sends back.
package protocol

import "github.com/minaorangina/deckhub/command"

// ServerCommand represents a command sent by a player
type ServerCommand int

const (
	Help ServerCommand = iota
	Who
	Say
	Quit
	ListDecks
	ShowDeck
	SelectDeck
	Ready
	Unready
	Pass
	Concede
	EndGame
)

// Server is the vocabulary of ServerCommand. Order matters: when two
// commands share an alias the one declared first wins.
var Server = command.NewVocabulary[ServerCommand](
	command.Spec{Name: "HELP", Aliases: []string{"help", "h", "?"},
		Help: "lists commands, or explains the one given: help [command]"},
	command.Spec{Name: "WHO", Aliases: []string{"who", "w"},
		Help: "lists players in the hub"},
	command.Spec{Name: "SAY", Aliases: []string{"say", "'"},
		Help: "sends a message to everyone in the hub: say <text>"},
	command.Spec{Name: "QUIT", Aliases: []string{"quit", "q", "exit"},
		Help: "leaves the hub"},
	command.Spec{Name: "LIST_DECKS", Aliases: []string{"decks", "ld"},
		Help: "lists available decks"},
	command.Spec{Name: "SHOW_DECK", Aliases: []string{"show", "sd"},
		Help: "lists the cards in a deck: show <deck>"},
	command.Spec{Name: "SELECT_DECK", Aliases: []string{"select", "sel", "deck"},
		Help: "chooses the deck you will play with: select <deck>"},
	command.Spec{Name: "READY", Aliases: []string{"ready", "r"},
		Help: "marks you ready; the game starts once everyone is"},
	command.Spec{Name: "UNREADY", Aliases: []string{"unready", "ur"},
		Help: "takes back your ready"},
	command.Spec{Name: "PASS", Aliases: []string{"pass", "p"},
		Help: "ends your turn"},
	command.Spec{Name: "CONCEDE", Aliases: []string{"concede", "gg"},
		Help: "gives up the current game"},
	command.Spec{Name: "END_GAME", Aliases: []string{"end", "eg"},
		Help: "ends the game and returns everyone to the lobby"},
)

// Always-on commands, available in every stage
var AlwaysOn = []ServerCommand{Help, Who, Say, Quit}

// LobbyCommands are the commands enabled while players gather
var LobbyCommands = []ServerCommand{ListDecks, ShowDeck, SelectDeck, Ready, Unready}

// GameCommands are the commands enabled while a game is running
var GameCommands = []ServerCommand{Pass, Concede, EndGame}

func (c ServerCommand) String() string {
	return Server.Name(c)
}
