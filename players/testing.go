package players

import (
	"sync"
)

// TestConn is a Conn that remembers everything sent to it
type TestConn struct {
	mu     sync.Mutex
	lines  []string
	closed bool
	err    error
}

func NewTestConn() *TestConn {
	return &TestConn{}
}

func (tc *TestConn) Send(data []byte) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.err != nil {
		return tc.err
	}
	tc.lines = append(tc.lines, string(data))
	return nil
}

func (tc *TestConn) Close() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.closed = true
	return nil
}

// FailWith makes every following Send return err
func (tc *TestConn) FailWith(err error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.err = err
}

// Lines returns everything received so far
func (tc *TestConn) Lines() []string {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	return append([]string{}, tc.lines...)
}

// Last returns the last line received, or ""
func (tc *TestConn) Last() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if len(tc.lines) == 0 {
		return ""
	}
	return tc.lines[len(tc.lines)-1]
}

// Reset forgets everything received so far
func (tc *TestConn) Reset() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.lines = nil
}

func (tc *TestConn) Closed() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	return tc.closed
}

// APlayer returns a player with a TestConn
func APlayer(id, name string) (*Player, *TestConn) {
	conn := NewTestConn()
	return NewPlayer(id, name, conn), conn
}

// SomePlayers returns two players with TestConns
func SomePlayers() (Players, []*TestConn) {
	player1, conn1 := APlayer(NewID(), "Harry")
	player2, conn2 := APlayer(NewID(), "Sally")
	return NewPlayers(player1, player2), []*TestConn{conn1, conn2}
}
