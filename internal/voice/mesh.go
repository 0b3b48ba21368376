// Package voice coordinates the N-to-N peer-connection bootstrap for
// room voice chat. The server side is a pure relay; this package is
// the participant-side negotiation logic: who offers, how early ICE
// candidates are buffered, and how dead connections get retried. The
// actual media transport sits behind the PeerConn interface.
package voice

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type ConnState int

const (
	StateNew ConnState = iota
	StateConnecting
	StateConnected
	StateFailed
	StateDisconnected
	StateClosed
)

const (
	SignalOffer     = "offer"
	SignalAnswer    = "answer"
	SignalCandidate = "candidate"
)

// Signal is one handshake message relayed through the server,
// uninterpreted in transit.
type Signal struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// PeerConn is one pairwise connection under negotiation. Answer and
// AcceptAnswer install the remote description; candidates may only be
// added after one of them succeeded.
type PeerConn interface {
	Offer() (json.RawMessage, error)
	Answer(offer json.RawMessage) (json.RawMessage, error)
	AcceptAnswer(answer json.RawMessage) error
	AddCandidate(candidate json.RawMessage) error
	State() ConnState
	Close()
}

// Dialer creates fresh peer connections.
type Dialer interface {
	Dial(peer string) (PeerConn, error)
}

// Sender delivers a signal to one named participant via the relay.
type Sender interface {
	SendSignal(target string, sig Signal) error
}

// ShouldInitiate is the glare rule: for any unordered pair the
// participant whose id sorts lower is the sole permitted initiator.
func ShouldInitiate(self, other string) bool {
	return self < other
}

type peerLink struct {
	conn      PeerConn
	initiator bool
	remoteSet bool
	pending   []json.RawMessage
}

// Mesh tracks the desired peer set for one participant and drives it
// toward a full mesh: a periodic reconciliation pass re-initiates
// toward missing peers and tears down failed connections so the next
// pass retries them.
type Mesh struct {
	self     string
	dialer   Dialer
	sender   Sender
	interval time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	roster map[string]struct{}
	peers  map[string]*peerLink

	stopOnce sync.Once
	done     chan struct{}
}

func NewMesh(self string, dialer Dialer, sender Sender, log zerolog.Logger) *Mesh {
	return &Mesh{
		self:     self,
		dialer:   dialer,
		sender:   sender,
		interval: 2 * time.Second,
		log:      log.With().Str("self", self).Logger(),
		roster:   make(map[string]struct{}),
		peers:    make(map[string]*peerLink),
		done:     make(chan struct{}),
	}
}

// Start launches the reconciliation loop.
func (m *Mesh) Start() {
	go m.run()
}

func (m *Mesh) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.mu.Lock()
		for peer, link := range m.peers {
			if link.conn != nil {
				link.conn.Close()
			}
			delete(m.peers, peer)
		}
		m.mu.Unlock()
	})
}

func (m *Mesh) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	m.Reconcile()
	for {
		select {
		case <-ticker.C:
			m.Reconcile()
		case <-m.done:
			return
		}
	}
}

// SetRoster replaces the desired peer set with the authoritative room
// membership. Connections to departed participants are closed
// immediately rather than waiting for transport failure.
func (m *Mesh) SetRoster(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roster := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == m.self {
			continue
		}
		roster[id] = struct{}{}
	}
	m.roster = roster

	for peer, link := range m.peers {
		if _, ok := roster[peer]; ok {
			continue
		}
		if link.conn != nil {
			link.conn.Close()
		}
		delete(m.peers, peer)
		m.log.Debug().Str("peer", peer).Msg("peer left roster, connection closed")
	}
}

// HandleSignal processes one relayed handshake message from a peer.
func (m *Mesh) HandleSignal(from string, sig Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch sig.Kind {
	case SignalOffer:
		return m.handleOffer(from, sig.Data)
	case SignalAnswer:
		return m.handleAnswer(from, sig.Data)
	case SignalCandidate:
		m.handleCandidate(from, sig.Data)
		return nil
	}
	return nil
}

func (m *Mesh) handleOffer(from string, offer json.RawMessage) error {
	// Glare: if we are the designated initiator for this pair, the
	// remote side must not offer. Drop and let our own offer win.
	if ShouldInitiate(m.self, from) {
		m.log.Debug().Str("peer", from).Msg("dropping offer from non-initiator side")
		return nil
	}

	link := m.peers[from]
	if link == nil {
		link = &peerLink{}
		m.peers[from] = link
	}
	if link.conn != nil {
		// A re-offer supersedes whatever negotiation was in flight.
		link.conn.Close()
		link.conn = nil
		link.remoteSet = false
	}

	conn, err := m.dialer.Dial(from)
	if err != nil {
		delete(m.peers, from)
		return err
	}
	answer, err := conn.Answer(offer)
	if err != nil {
		conn.Close()
		delete(m.peers, from)
		return err
	}
	link.conn = conn
	link.initiator = false
	link.remoteSet = true
	m.flushCandidates(from, link)

	return m.sender.SendSignal(from, Signal{Kind: SignalAnswer, Data: answer})
}

func (m *Mesh) handleAnswer(from string, answer json.RawMessage) error {
	link := m.peers[from]
	if link == nil || link.conn == nil || !link.initiator || link.remoteSet {
		return nil
	}
	if err := link.conn.AcceptAnswer(answer); err != nil {
		link.conn.Close()
		delete(m.peers, from)
		return err
	}
	link.remoteSet = true
	m.flushCandidates(from, link)
	return nil
}

// handleCandidate applies a candidate once the remote description is
// in place, otherwise buffers it in arrival order.
func (m *Mesh) handleCandidate(from string, candidate json.RawMessage) {
	link := m.peers[from]
	if link == nil {
		link = &peerLink{}
		m.peers[from] = link
	}
	if link.conn != nil && link.remoteSet {
		if err := link.conn.AddCandidate(candidate); err != nil {
			m.log.Debug().Err(err).Str("peer", from).Msg("candidate rejected")
		}
		return
	}
	link.pending = append(link.pending, candidate)
}

func (m *Mesh) flushCandidates(peer string, link *peerLink) {
	for _, candidate := range link.pending {
		if err := link.conn.AddCandidate(candidate); err != nil {
			m.log.Debug().Err(err).Str("peer", peer).Msg("buffered candidate rejected")
		}
	}
	link.pending = nil
}

// Reconcile makes one pass over the desired peers: tears down
// connections reporting failure and offers toward any peer this side
// must initiate that has no live connection. Retries are unbounded;
// teardown-before-retry keeps each pass to one attempt per peer.
func (m *Mesh) Reconcile() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for peer := range m.roster {
		link := m.peers[peer]
		if link != nil && link.conn != nil {
			switch link.conn.State() {
			case StateFailed, StateDisconnected, StateClosed:
				link.conn.Close()
				delete(m.peers, peer)
				m.log.Debug().Str("peer", peer).Msg("dead connection torn down")
			default:
				continue
			}
			// Torn down this pass; the next pass re-initiates.
			continue
		}
		if !ShouldInitiate(m.self, peer) {
			continue
		}
		m.initiate(peer, link)
	}
}

func (m *Mesh) initiate(peer string, link *peerLink) {
	conn, err := m.dialer.Dial(peer)
	if err != nil {
		m.log.Debug().Err(err).Str("peer", peer).Msg("dial failed")
		return
	}
	offer, err := conn.Offer()
	if err != nil {
		conn.Close()
		m.log.Debug().Err(err).Str("peer", peer).Msg("offer failed")
		return
	}
	if link == nil {
		link = &peerLink{}
		m.peers[peer] = link
	}
	link.conn = conn
	link.initiator = true
	link.remoteSet = false
	if err := m.sender.SendSignal(peer, Signal{Kind: SignalOffer, Data: offer}); err != nil {
		conn.Close()
		delete(m.peers, peer)
	}
}

// Connected reports the peers with an established connection.
func (m *Mesh) Connected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for peer, link := range m.peers {
		if link.conn != nil && link.conn.State() == StateConnected {
			out = append(out, peer)
		}
	}
	return out
}
