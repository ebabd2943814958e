// Package server exposes hubs over HTTP. Players create or join a hub with
// a JSON request, then connect a websocket and exchange lines of text.
package server

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/deckhub/hub"
	"github.com/minaorangina/deckhub/players"
	"github.com/minaorangina/deckhub/protocol"
	"github.com/minaorangina/deckhub/store"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NewHubReq struct {
	Name string `json:"name"`
}

type PendingHubRes struct {
	HubID    string   `json:"hub_id"`
	PlayerID string   `json:"player_id"`
	Name     string   `json:"name"`
	Admin    bool     `json:"is_admin"`
	Players  []string `json:"players"`
}

type JoinHubReq struct {
	HubID string `json:"hub_id"`
	Name  string `json:"name"`
}

type GetHubRes struct {
	HubID   string   `json:"hub_id"`
	Stage   string   `json:"stage"`
	Players []string `json:"players"`
}

// Options configure a HubServer
type Options struct {
	Store  store.HubStore
	NewHub func(id string) *hub.Hub
	Logger zerolog.Logger
}

// HubServer serves hubs
type HubServer struct {
	store  store.HubStore
	newHub func(id string) *hub.Hub
	log    zerolog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	http.Server
}

// NewHubID constructs a six letter hub code
func NewHubID() string {
	letters := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	code := make([]byte, 0, 6)

	for i := 0; i < 6; i++ {
		code = append(code, letters[rand.Intn(len(letters))])
	}

	return string(code)
}

// NewServer creates a new HubServer
func NewServer(opts Options) *HubServer {
	if opts.Store == nil {
		opts.Store = store.NewInMemoryHubStore()
	}
	if opts.NewHub == nil {
		log := opts.Logger
		opts.NewHub = func(id string) *hub.Hub {
			return hub.New(id, hub.Options{Logger: log})
		}
	}

	s := &HubServer{
		store:   opts.Store,
		newHub:  opts.NewHub,
		log:     opts.Logger,
		cancels: map[string]context.CancelFunc{},
	}

	router := http.NewServeMux()
	router.Handle("/new", http.HandlerFunc(s.HandleNewHub))
	router.Handle("/join", http.HandlerFunc(s.HandleJoinHub))
	router.Handle("/hub/", http.HandlerFunc(s.HandleFindHub))
	router.Handle("/ws", http.HandlerFunc(s.HandleWS))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.log}),
		handlers.PrintRecoveryStack(true),
	)

	s.Handler = recovery(handlers.CombinedLoggingHandler(s.log, cors(router)))

	return s
}

// ServeHTTP serves http
func (s *HubServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler.ServeHTTP(w, r)
}

// Shutdown stops every hub, then the http server
func (s *HubServer) Shutdown(ctx context.Context) error {
	s.log.Info().Strs("hubs", s.store.HubIDs()).Msg("shutting down")

	s.mu.Lock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.mu.Unlock()

	return s.Server.Shutdown(ctx)
}

// HandleNewHub handles a request to create a new hub
func (s *HubServer) HandleNewHub(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var data NewHubReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		s.writeParseError(err, w)
		return
	}

	if strings.TrimSpace(data.Name) == "" {
		writeText(w, http.StatusBadRequest, "Missing player name")
		return
	}

	h, err := s.startHub()
	if err != nil {
		s.log.Error().Err(err).Msg("starting hub")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	playerID := players.NewID()
	err = s.store.AddPendingPlayer(h.ID(), store.PendingPlayer{PlayerID: playerID, Name: data.Name, Admin: true})
	if err != nil {
		s.log.Error().Err(err).Msg("adding creator")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, PendingHubRes{
		HubID:    h.ID(),
		PlayerID: playerID,
		Name:     data.Name,
		Admin:    true,
		Players:  h.Players(),
	})
}

// HandleFindHub reports on the hub at /hub/<id>
func (s *HubServer) HandleFindHub(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	hubID := strings.TrimPrefix(r.URL.Path, "/hub/")
	if hubID == "" {
		writeText(w, http.StatusBadRequest, "missing hub ID")
		return
	}

	h := s.store.FindHub(hubID)
	if h == nil {
		writeText(w, http.StatusNotFound, unknownHubIDMsg(hubID))
		return
	}

	s.writeJSON(w, http.StatusOK, GetHubRes{
		HubID:   h.ID(),
		Stage:   h.StageName(),
		Players: h.Players(),
	})
}

// HandleJoinHub handles a request to join an existing hub
func (s *HubServer) HandleJoinHub(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var data JoinHubReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		s.writeParseError(err, w)
		return
	}

	if data.HubID == "" {
		writeText(w, http.StatusBadRequest, "Missing hub ID")
		return
	}
	if strings.TrimSpace(data.Name) == "" {
		writeText(w, http.StatusBadRequest, "Missing player name")
		return
	}

	h := s.store.FindHub(data.HubID)
	if h == nil {
		writeText(w, http.StatusNotFound, unknownHubIDMsg(data.HubID))
		return
	}

	playerID := players.NewID()
	err = s.store.AddPendingPlayer(data.HubID, store.PendingPlayer{PlayerID: playerID, Name: data.Name})
	switch {
	case eris.Is(err, hub.ErrGameInProgress), eris.Is(err, hub.ErrNameTaken):
		writeText(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.log.Error().Err(err).Str("hub_id", data.HubID).Msg("adding pending player")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, PendingHubRes{
		HubID:    data.HubID,
		PlayerID: playerID,
		Name:     data.Name,
		Players:  h.Players(),
	})
}

// HandleWS connects a pending player to their hub
func (s *HubServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	hubID, playerID := query.Get("hub_id"), query.Get("player_id")
	if hubID == "" {
		writeText(w, http.StatusBadRequest, "missing hub ID")
		return
	}
	if playerID == "" {
		writeText(w, http.StatusBadRequest, "missing player ID")
		return
	}

	h := s.store.FindHub(hubID)
	if h == nil {
		writeText(w, http.StatusNotFound, unknownHubIDMsg(hubID))
		return
	}

	pending, err := s.store.ClaimPendingPlayer(hubID, playerID)
	if err != nil {
		writeText(w, http.StatusBadRequest, "unknown player ID")
		return
	}

	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		s.log.Warn().Err(err).Str("player_id", playerID).Msg("could not upgrade to websocket")
		s.store.ReleaseClaim(hubID)
		s.reap(h)
		return
	}

	log := s.log.With().Str("hub_id", hubID).Str("player_id", playerID).Logger()
	conn := newWSConn(rawConn, log)
	player := players.NewPlayer(pending.PlayerID, pending.Name, conn)

	if !s.connect(h, player) {
		s.reap(h)
		return
	}
	go func() {
		conn.readPump(h, player.ID())
		s.reap(h)
	}()
}

// startHub creates a hub with a fresh id, stores it and starts its loop
func (s *HubServer) startHub() (*hub.Hub, error) {
	for attempt := 0; attempt < 10; attempt++ {
		h := s.newHub(NewHubID())
		err := s.store.AddHub(h)
		if eris.Is(err, store.ErrHubExists) {
			continue
		}
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithCancel(context.Background())
		s.mu.Lock()
		s.cancels[h.ID()] = cancel
		s.mu.Unlock()

		go h.Listen(ctx)
		return h, nil
	}
	return nil, eris.New("could not find a free hub ID")
}

// connect registers a claimed player with h and releases the claim. It
// reports whether the player made it into the hub; if not, their
// connection has been told why and closed.
func (s *HubServer) connect(h *hub.Hub, p *players.Player) bool {
	err := h.Register(p)
	s.store.ReleaseClaim(h.ID())

	switch {
	case eris.Is(err, hub.ErrHubClosed):
		p.Transmit(protocol.Error("This hub has closed."))
		p.Close()
		return false
	case err != nil:
		s.log.Info().Err(err).Str("hub_id", h.ID()).Str("player_id", p.ID()).Msg("player refused")
		return false
	}
	return true
}

// reap stops and forgets h once nobody is in it or on their way
func (s *HubServer) reap(h *hub.Hub) {
	if !s.store.RemoveIdleHub(h.ID()) {
		return
	}

	s.mu.Lock()
	cancel, ok := s.cancels[h.ID()]
	delete(s.cancels, h.ID())
	s.mu.Unlock()

	if ok {
		cancel()
	}
	s.log.Info().Str("hub_id", h.ID()).Msg("hub closed")
}

func (s *HubServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Msg("encoding response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

func (s *HubServer) writeParseError(err error, w http.ResponseWriter) {
	if err == io.EOF {
		writeText(w, http.StatusBadRequest, "Missing body")
		return
	}
	s.log.Debug().Err(err).Msg("bad request body")
	writeText(w, http.StatusBadRequest, "Malformed body")
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

func unknownHubIDMsg(unknownID string) string {
	return "unknown hub ID '" + unknownID + "'"
}

type recoveryLogger struct {
	log zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error().Msgf("%v", v)
}
