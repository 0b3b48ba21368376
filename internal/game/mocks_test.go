package game

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PankajKumar-11/DrawChain/internal/config"
	"github.com/PankajKumar-11/DrawChain/internal/ws"
)

// --- WordSource ---

type MockWordSource struct {
	mock.Mock
}

func (m *MockWordSource) Pick(n int) []string {
	args := m.Called(n)
	return args.Get(0).([]string)
}

// --- recording sink ---

type recorderSink struct {
	mu     sync.Mutex
	sent   []ws.Envelope
	closed bool
}

func (r *recorderSink) Send(env ws.Envelope) {
	r.mu.Lock()
	r.sent = append(r.sent, env)
	r.mu.Unlock()
}

func (r *recorderSink) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

func (r *recorderSink) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *recorderSink) ofType(t ws.MessageType) []ws.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ws.Envelope
	for _, env := range r.sent {
		if env.Type == t {
			out = append(out, env)
		}
	}
	return out
}

// lastUpdate decodes the most recent game-update the sink received.
func (r *recorderSink) lastUpdate(t *testing.T) GameUpdate {
	t.Helper()
	updates := r.ofType(ws.TypeGameUpdate)
	require.NotEmpty(t, updates, "no game-update received")
	var gu GameUpdate
	require.NoError(t, json.Unmarshal(updates[len(updates)-1].Payload, &gu))
	return gu
}

func (r *recorderSink) notices(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, env := range r.ofType(ws.TypeNotice) {
		var n NoticePayload
		require.NoError(t, json.Unmarshal(env.Payload, &n))
		out = append(out, n.Text)
	}
	return out
}

// --- fixtures ---

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		MaxPlayers:         20,
		DefaultRounds:      3,
		DefaultDrawSeconds: 80,
		SelectSeconds:      15,
		GraceSeconds:       10,
		WordChoices:        3,
	}
}

// newTestRoom builds an unstarted room whose handlers are driven
// directly by the test, plus its owning registry.
func newTestRoom(id string, src *MockWordSource) (*Room, *Registry) {
	reg := NewRegistry(testGameConfig(), src, zerolog.Nop())
	r := newRoom(id, testGameConfig(), src, reg, zerolog.Nop())
	reg.rooms[id] = r
	return r, reg
}

func join(t *testing.T, r *Room, connID, name string) *recorderSink {
	t.Helper()
	rec := &recorderSink{}
	req := joinRequest{
		connID:   connID,
		out:      rec,
		username: name,
		errc:     make(chan error, 1),
	}
	r.handleJoin(req)
	require.NoError(t, <-req.errc)
	return rec
}

func deliver(t *testing.T, r *Room, from string, msgType ws.MessageType, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	r.handleEnvelope(envelope{from: from, env: ws.Envelope{Type: msgType, Payload: data}})
}
