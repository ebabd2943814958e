// Package store keeps track of the hubs a server is running and of the
// players who have been given an id but have not connected yet.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/minaorangina/deckhub/hub"
	"github.com/rotisserie/eris"
)

var (
	ErrUnknownHubID    = eris.New("unknown hub ID")
	ErrUnknownPlayerID = eris.New("unknown player ID")
	ErrHubExists       = eris.New("hub already exists")
	ErrFnUnknownHubID  = func(hubID string) error {
		return eris.Wrapf(ErrUnknownHubID, "hub with id \"%s\" does not exist", hubID)
	}
	ErrFnUnknownPlayerID = func(hubID, playerID string) error {
		return eris.Wrapf(ErrUnknownPlayerID, "no player \"%s\" expected in hub \"%s\"", playerID, hubID)
	}
)

// PendingPlayer is what a Player is constructed from once it connects
type PendingPlayer struct {
	PlayerID string
	Name     string
	Admin    bool
}

type HubStore interface {
	FindHub(hubID string) *hub.Hub
	AddHub(h *hub.Hub) error
	RemoveHub(hubID string)
	RemoveIdleHub(hubID string) bool
	HubIDs() []string
	NumPending(hubID string) int
	FindPendingPlayer(hubID, playerID string) *PendingPlayer
	AddPendingPlayer(hubID string, p PendingPlayer) error
	ClaimPendingPlayer(hubID, playerID string) (PendingPlayer, error)
	ReleaseClaim(hubID string)
}

// InMemoryHubStore maps hub id to hub
type InMemoryHubStore struct {
	mu             sync.RWMutex
	Hubs           map[string]*hub.Hub
	PendingPlayers map[string][]PendingPlayer
	// claimed players who have not reached their hub yet
	Connecting map[string]int
}

// NewInMemoryHubStore constructs an InMemoryHubStore
func NewInMemoryHubStore() *InMemoryHubStore {
	return &InMemoryHubStore{
		Hubs:           map[string]*hub.Hub{},
		PendingPlayers: map[string][]PendingPlayer{},
		Connecting:     map[string]int{},
	}
}

func (s *InMemoryHubStore) FindHub(hubID string) *hub.Hub {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Hubs[hubID]
}

func (s *InMemoryHubStore) AddHub(h *hub.Hub) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.Hubs[h.ID()]; exists {
		return eris.Wrapf(ErrHubExists, "hub with id %s already exists", h.ID())
	}

	s.Hubs[h.ID()] = h
	return nil
}

// RemoveHub forgets a hub and anyone still expected to join it
func (s *InMemoryHubStore) RemoveHub(hubID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.Hubs, hubID)
	delete(s.PendingPlayers, hubID)
	delete(s.Connecting, hubID)
}

// RemoveIdleHub removes a hub only if it has no players and nobody is
// pending or connecting. It reports whether the hub was removed.
func (s *InMemoryHubStore) RemoveIdleHub(hubID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.Hubs[hubID]
	if !ok || s.numPending(hubID) > 0 || len(h.Players()) > 0 {
		return false
	}

	delete(s.Hubs, hubID)
	delete(s.PendingPlayers, hubID)
	delete(s.Connecting, hubID)
	return true
}

// HubIDs returns the ids of every hub, sorted
func (s *InMemoryHubStore) HubIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.Hubs))
	for id := range s.Hubs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *InMemoryHubStore) FindPendingPlayer(hubID, playerID string) *PendingPlayer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.PendingPlayers[hubID] {
		if p.PlayerID == playerID {
			found := p
			return &found
		}
	}

	return nil
}

// NumPending returns how many players are expected to join a hub, counting
// claimed players whose claim has not been released
func (s *InMemoryHubStore) NumPending(hubID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.numPending(hubID)
}

func (s *InMemoryHubStore) numPending(hubID string) int {
	return len(s.PendingPlayers[hubID]) + s.Connecting[hubID]
}

// AddPendingPlayer records a player who is expected to connect to a hub.
// The hub must exist and be in its lobby, and the name must be free.
func (s *InMemoryHubStore) AddPendingPlayer(hubID string, p PendingPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.Hubs[hubID]
	if !ok {
		return ErrFnUnknownHubID(hubID)
	}
	if h.Stage() != hub.Lobby {
		return hub.ErrGameInProgress
	}

	taken := h.Players()
	for _, pending := range s.PendingPlayers[hubID] {
		taken = append(taken, pending.Name)
	}
	for _, name := range taken {
		if strings.EqualFold(name, p.Name) {
			return eris.Wrapf(hub.ErrNameTaken, "'%s' is already in the hub", p.Name)
		}
	}

	s.PendingPlayers[hubID] = append(s.PendingPlayers[hubID], p)
	return nil
}

// ClaimPendingPlayer removes and returns a pending player. Each pending
// player can be claimed once. The player still counts as pending until
// ReleaseClaim is called.
func (s *InMemoryHubStore) ClaimPendingPlayer(hubID, playerID string) (PendingPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.PendingPlayers[hubID]
	for i, p := range pending {
		if p.PlayerID == playerID {
			s.PendingPlayers[hubID] = append(pending[:i:i], pending[i+1:]...)
			s.Connecting[hubID]++
			return p, nil
		}
	}

	return PendingPlayer{}, ErrFnUnknownPlayerID(hubID, playerID)
}

// ReleaseClaim marks a claimed player as having reached their hub, or
// given up on it
func (s *InMemoryHubStore) ReleaseClaim(hubID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Connecting[hubID] <= 1 {
		delete(s.Connecting, hubID)
		return
	}
	s.Connecting[hubID]--
}
