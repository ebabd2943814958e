// Command cli runs a hub in the terminal. Every line read is
// "<player>: <command>"; players join the first time they speak.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/minaorangina/deckhub/config"
	"github.com/minaorangina/deckhub/deck"
	"github.com/minaorangina/deckhub/hub"
	"github.com/minaorangina/deckhub/players"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	level, _ := cfg.Level()
	log = log.Level(level)

	lib, err := deck.LoadFile(cfg.DeckFile, cfg.DeckRules())
	if err != nil {
		log.Fatal().Err(err).Msg("could not open deck library")
	}

	h := hub.New("LOCAL", hub.Options{
		Decks:      lib,
		NewEngine:  hub.GameEngine(cfg.GameRules()),
		MaxPlayers: cfg.MaxPlayers,
		Logger:     log,
	})

	fmt.Println(`Type "<player>: <command>", for example "Harry: help".`)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		name, line, ok := strings.Cut(scanner.Text(), ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			fmt.Println(`Expected "<player>: <command>"`)
			continue
		}

		p := findOrJoin(h, name)
		if p == nil {
			continue
		}
		if err := h.Dispatch(p, line); err != nil {
			fmt.Println(err.Error())
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal().Err(err).Msg("reading input")
	}
}

var seated = players.Players{}

func findOrJoin(h *hub.Hub, name string) *players.Player {
	if p, ok := seated.FindByName(name); ok {
		if _, inHub := h.Find(p.ID()); inHub {
			return p
		}
		seated = players.RemovePlayer(seated, p.ID())
	}

	p := players.NewPlayer(players.NewID(), name, players.NewWriterConn(os.Stdout, "["+name+"] "))
	if err := h.Join(p); err != nil {
		fmt.Println(err.Error())
		return nil
	}
	seated = players.AddPlayer(seated, p)
	return p
}
