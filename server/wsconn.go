package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/deckhub/hub"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Messages queued for a peer before it counts as too slow.
	sendBufferSize = 64
)

var (
	ErrConnClosed     = eris.New("connection closed")
	ErrSendBufferFull = eris.New("send buffer full")
)

// wsConn is a players.Conn over a websocket. Sends are queued and written
// by writePump, so they never block the hub.
type wsConn struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	send   chan []byte
	closed bool
	log    zerolog.Logger
}

func newWSConn(c *websocket.Conn, log zerolog.Logger) *wsConn {
	wc := &wsConn{
		conn: c,
		send: make(chan []byte, sendBufferSize),
		log:  log,
	}
	go wc.writePump()
	return wc
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}

	select {
	case c.send <- append([]byte{}, data...):
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops the write pump once everything queued has been written
func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump forwards every text frame to h as a line from playerID. When
// the peer goes away the player leaves the hub.
func (c *wsConn) readPump(h *hub.Hub, playerID string) {
	defer func() {
		h.Unregister(playerID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Str("player_id", playerID).Msg("connection lost")
			}
			return
		}
		h.Receive(playerID, string(msg))
	}
}
