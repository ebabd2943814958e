package game

import (
	"fmt"

	"github.com/minaorangina/deckhub/fsm"
	"github.com/minaorangina/deckhub/protocol"
)

type state = fsm.State[Move, *Game]

var (
	playing  state = playingState{}
	finished state = finishedState{}
)

type playingState struct {
	fsm.NoHooks[Move, *Game]
}

func (playingState) Process(m Move, g *Game) state {
	idx := g.find(m.From.ID())
	if idx < 0 {
		m.From.Transmit(protocol.Error("You are not playing."))
		return playing
	}

	switch m.Cmd {
	case protocol.Pass:
		if idx != g.turn {
			m.From.Transmit(protocol.Error("It is not your turn."))
			return playing
		}
		g.advance()
		return playing

	case protocol.Concede:
		wasTurn := idx == g.turn
		g.remove(idx)
		g.table.Broadcast(protocol.Broadcast(fmt.Sprintf("%s concedes.", m.From.Name())))

		if len(g.seats) == 1 {
			g.winner = g.seats[0].Seat
			return finished
		}
		if len(g.seats) == 0 {
			return finished
		}
		if wasTurn {
			g.announceTurn()
		}
		return playing
	}

	m.From.Transmit(protocol.Error("Command not available"))
	return playing
}

type finishedState struct {
	fsm.NoHooks[Move, *Game]
}

func (finishedState) Process(m Move, g *Game) state {
	m.From.Transmit(protocol.Error("The game is over."))
	return finished
}

func (finishedState) OnEnter(prev state, g *Game) {
	g.table.Broadcast(protocol.Broadcast("Game over."))
}
