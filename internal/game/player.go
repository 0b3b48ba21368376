package game

import (
	"time"

	"github.com/PankajKumar-11/DrawChain/internal/ws"
)

// sink is where a player's frames go. Satisfied by *ws.Client; tests
// substitute a recorder. Close tears the underlying connection down
// when a newer connection supersedes it.
type sink interface {
	Send(env ws.Envelope)
	Close()
}

// Player is one identity inside a room. The identity survives
// reconnects: a rejoin under the same name swaps connID and out while
// score and guessed state stay put.
type Player struct {
	connID    string
	name      string
	avatar    string
	score     int
	guessed   bool
	connected bool

	muted    bool
	deafened bool

	// Armed on disconnect; fires a removal into the room actor after
	// the grace period unless the player reconnects first.
	removal *time.Timer

	out sink
}

func (p *Player) cancelRemoval() {
	if p.removal != nil {
		p.removal.Stop()
		p.removal = nil
	}
}

func (p *Player) send(env ws.Envelope) {
	if p.connected && p.out != nil {
		p.out.Send(env)
	}
}

func (p *Player) view() PlayerView {
	return PlayerView{
		ID:         p.connID,
		Username:   p.name,
		Avatar:     p.avatar,
		Score:      p.score,
		HasGuessed: p.guessed,
		Connected:  p.connected,
		IsMuted:    p.muted,
		IsDeafened: p.deafened,
	}
}
