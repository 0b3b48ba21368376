package game

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/PankajKumar-11/DrawChain/internal/config"
	"github.com/PankajKumar-11/DrawChain/internal/words"
	"github.com/PankajKumar-11/DrawChain/internal/ws"
)

// RoomDescription is the public listing entry for a room.
type RoomDescription struct {
	ID         string `json:"roomId"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Phase      string `json:"phase"`
	Started    bool   `json:"started"`
}

// Registry is the process-wide room map plus the connection-to-room
// index used for routing. Rooms are created on the first join carrying
// a config and delete themselves once empty; everything inside a room
// stays owned by its actor goroutine.
type Registry struct {
	mu           sync.RWMutex
	rooms        map[string]*Room
	descriptions map[string]RoomDescription
	sessions     map[string]*Room

	cfg  config.GameConfig
	word words.Source
	log  zerolog.Logger
}

func NewRegistry(cfg config.GameConfig, src words.Source, log zerolog.Logger) *Registry {
	return &Registry{
		rooms:        make(map[string]*Room),
		descriptions: make(map[string]RoomDescription),
		sessions:     make(map[string]*Room),
		cfg:          cfg,
		word:         src,
		log:          log,
	}
}

// Join resolves or creates the target room and runs the join through
// its actor. A bare join against an unknown room is the caller's
// problem only; supplying a config is the create-intent.
func (reg *Registry) Join(connID string, out sink, payload JoinRoomPayload) (*Room, error) {
	if payload.RoomID == "" || payload.Username == "" {
		return nil, ErrBadRoomID
	}

	reg.mu.Lock()
	room, ok := reg.rooms[payload.RoomID]
	if !ok {
		if payload.Config == nil {
			reg.mu.Unlock()
			return nil, ErrRoomNotFound
		}
		room = newRoom(payload.RoomID, reg.cfg, reg.word, reg, reg.log)
		room.applyConfig(*payload.Config)
		reg.rooms[payload.RoomID] = room
		go room.run()
		reg.log.Info().Str("room", payload.RoomID).Msg("room created")
	}
	reg.mu.Unlock()

	req := joinRequest{
		connID:   connID,
		out:      out,
		username: payload.Username,
		avatar:   payload.Avatar,
		errc:     make(chan error, 1),
	}
	select {
	case room.joins <- req:
	case <-room.done:
		return nil, ErrRoomNotFound
	}
	if err := <-req.errc; err != nil {
		return nil, err
	}

	reg.mu.Lock()
	reg.sessions[connID] = room
	reg.mu.Unlock()
	return room, nil
}

// Deliver routes a room-scoped envelope from a joined connection to
// its room actor. Envelopes from connections that never joined are
// dropped.
func (reg *Registry) Deliver(connID string, env ws.Envelope) {
	reg.mu.RLock()
	room := reg.sessions[connID]
	reg.mu.RUnlock()
	if room == nil {
		return
	}
	room.Deliver(connID, env)
}

// Disconnect reports a transport loss to the connection's room, if any.
func (reg *Registry) Disconnect(connID string) {
	reg.mu.RLock()
	room := reg.sessions[connID]
	reg.mu.RUnlock()
	if room == nil {
		return
	}
	room.Disconnect(connID)
}

// Descriptions lists the rooms for the public games endpoint.
func (reg *Registry) Descriptions() []RoomDescription {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]RoomDescription, 0, len(reg.descriptions))
	for _, d := range reg.descriptions {
		out = append(out, d)
	}
	return out
}

func (reg *Registry) updateDescription(d RoomDescription) {
	reg.mu.Lock()
	if _, ok := reg.rooms[d.ID]; ok {
		reg.descriptions[d.ID] = d
	}
	reg.mu.Unlock()
}

func (reg *Registry) removeRoom(id string) {
	reg.mu.Lock()
	delete(reg.rooms, id)
	delete(reg.descriptions, id)
	reg.mu.Unlock()
	reg.log.Info().Str("room", id).Msg("room removed")
}

func (reg *Registry) dropSession(connID string) {
	reg.mu.Lock()
	delete(reg.sessions, connID)
	reg.mu.Unlock()
}
