package game

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/PankajKumar-11/DrawChain/internal/config"
	"github.com/PankajKumar-11/DrawChain/internal/words"
	"github.com/PankajKumar-11/DrawChain/internal/ws"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseSelecting
	PhaseDrawing
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "LOBBY"
	case PhaseSelecting:
		return "SELECTING"
	case PhaseDrawing:
		return "DRAWING"
	case PhaseEnded:
		return "ENDED"
	}
	return "UNKNOWN"
}

const drawerGuessReward = 50

// envelope is a client message tagged with the sending connection.
type envelope struct {
	from string
	env  ws.Envelope
}

type joinRequest struct {
	connID   string
	out      sink
	username string
	avatar   string
	errc     chan error
}

// Room owns one game session. All fields below the channel block are
// touched only by the actor goroutine (run), so every transition plus
// its broadcast is atomic relative to other messages for this room.
type Room struct {
	id            string
	phase         Phase
	players       []*Player
	drawerIndex   int
	currentWord   string
	wordOptions   []string
	currentRound  int
	maxRounds     int
	drawSeconds   int
	selectSeconds int
	timeLeft      int
	hostID        string
	maxPlayers    int
	wordChoices   int
	grace         time.Duration

	reg  *Registry
	word words.Source
	log  zerolog.Logger

	inbox       chan envelope
	joins       chan joinRequest
	disconnects chan string
	removals    chan string
	done        chan struct{}
}

func newRoom(id string, cfg config.GameConfig, src words.Source, reg *Registry, log zerolog.Logger) *Room {
	return &Room{
		id:            id,
		phase:         PhaseLobby,
		drawerIndex:   -1,
		currentRound:  0,
		maxRounds:     cfg.DefaultRounds,
		drawSeconds:   cfg.DefaultDrawSeconds,
		selectSeconds: cfg.SelectSeconds,
		maxPlayers:    cfg.MaxPlayers,
		wordChoices:   cfg.WordChoices,
		grace:         time.Duration(cfg.GraceSeconds) * time.Second,
		reg:           reg,
		word:          src,
		log:           log.With().Str("room", id).Logger(),
		inbox:         make(chan envelope, 1024),
		joins:         make(chan joinRequest, 16),
		disconnects:   make(chan string, 64),
		removals:      make(chan string, 64),
		done:          make(chan struct{}),
	}
}

func (r *Room) applyConfig(cfg RoomConfig) {
	if cfg.MaxRounds > 0 {
		r.maxRounds = cfg.MaxRounds
	}
	if cfg.DrawTime > 0 {
		r.drawSeconds = cfg.DrawTime
	}
	if cfg.MaxPlayers > 0 && cfg.MaxPlayers < r.maxPlayers {
		r.maxPlayers = cfg.MaxPlayers
	}
}

// Deliver hands a client envelope to the room actor. Messages for a
// room that is already gone are dropped, matching the no-op failure
// semantics of the protocol.
func (r *Room) Deliver(from string, env ws.Envelope) {
	select {
	case r.inbox <- envelope{from: from, env: env}:
	case <-r.done:
	}
}

// Disconnect reports a transport loss for one of the room's members.
func (r *Room) Disconnect(connID string) {
	select {
	case r.disconnects <- connID:
	case <-r.done:
	}
}

// run is the actor loop. The 1 Hz ticker is the room's single phase
// timer; selection and drawing deadlines are countdowns against it.
func (r *Room) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case req := <-r.joins:
			r.handleJoin(req)
		case e := <-r.inbox:
			r.handleEnvelope(e)
		case connID := <-r.disconnects:
			r.handleDisconnect(connID)
		case connID := <-r.removals:
			r.handleRemovalExpiry(connID)
		case <-ticker.C:
			r.handleTick()
		case <-r.done:
			return
		}
	}
}

// --- membership ---

func (r *Room) playerByConn(connID string) *Player {
	for _, p := range r.players {
		if p.connID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.players {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (r *Room) drawer() *Player {
	if r.drawerIndex < 0 || r.drawerIndex >= len(r.players) {
		return nil
	}
	return r.players[r.drawerIndex]
}

func (r *Room) handleJoin(req joinRequest) {
	// Reconciliation: connection id first, then name. A refresh shows
	// up as a new connection id with the same chosen name.
	existing := r.playerByConn(req.connID)
	if existing == nil {
		existing = r.playerByName(req.username)
	}

	if existing != nil {
		if existing.connected && existing.connID != req.connID && existing.out != nil {
			// The new connection supersedes the live one. Closing the
			// stale socket keeps a half-dead connection, whose loss the
			// server has not observed yet, from locking the name.
			existing.out.Close()
		}
		existing.cancelRemoval()
		oldID := existing.connID
		existing.connID = req.connID
		existing.avatar = req.avatar
		existing.connected = true
		existing.out = req.out
		if r.hostID == oldID {
			r.hostID = req.connID
		}
		if oldID != req.connID {
			r.reg.dropSession(oldID)
		}
		req.errc <- nil
		r.log.Info().Str("player", existing.name).Msg("player reconnected")
		r.notice(fmt.Sprintf("%s reconnected", existing.name))
		r.broadcast()
		r.reg.updateDescription(r.description())
		return
	}

	if len(r.players) >= r.maxPlayers {
		req.errc <- ErrRoomFull
		return
	}

	p := &Player{
		connID:    req.connID,
		name:      req.username,
		avatar:    req.avatar,
		connected: true,
		out:       req.out,
	}
	r.players = append(r.players, p)
	if len(r.players) == 1 {
		r.hostID = p.connID
	}
	req.errc <- nil

	r.log.Info().Str("player", p.name).Int("players", len(r.players)).Msg("player joined")
	r.notice(fmt.Sprintf("%s joined the room", p.name))
	r.broadcast()
	r.reg.updateDescription(r.description())
}

func (r *Room) handleDisconnect(connID string) {
	p := r.playerByConn(connID)
	if p == nil || !p.connected {
		return
	}
	p.connected = false
	p.out = nil
	p.cancelRemoval()
	p.removal = time.AfterFunc(r.grace, func() {
		select {
		case r.removals <- connID:
		case <-r.done:
		}
	})
	r.log.Info().Str("player", p.name).Msg("player disconnected, grace timer armed")
	r.broadcast()
}

func (r *Room) handleRemovalExpiry(connID string) {
	p := r.playerByConn(connID)
	if p == nil || p.connected {
		return
	}
	r.removePlayer(connID)
}

// removePlayer applies the removal priority cases: room deletion,
// sole-survivor auto-win, or host/drawer reassignment.
func (r *Room) removePlayer(connID string) {
	idx := -1
	for i, p := range r.players {
		if p.connID == connID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	p := r.players[idx]
	p.cancelRemoval()
	wasDrawer := r.phase != PhaseLobby && r.phase != PhaseEnded && idx == r.drawerIndex
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	if idx < r.drawerIndex {
		r.drawerIndex--
	}
	r.reg.dropSession(connID)
	r.log.Info().Str("player", p.name).Int("players", len(r.players)).Msg("player removed")

	if len(r.players) == 0 {
		r.shutdown()
		return
	}

	if len(r.players) < 2 && r.phase != PhaseLobby {
		r.notice(fmt.Sprintf("%s left the game", p.name))
		if r.phase != PhaseEnded {
			survivor := r.players[0]
			survivor.score += 100
			r.hostID = survivor.connID
			r.notice(fmt.Sprintf("%s wins!", survivor.name))
			r.endGame()
		} else {
			r.hostID = r.players[0].connID
			r.broadcast()
		}
		r.reg.updateDescription(r.description())
		return
	}

	if r.hostID == connID {
		r.hostID = r.players[0].connID
	}

	r.notice(fmt.Sprintf("%s left the game", p.name))
	switch {
	case wasDrawer:
		if r.phase == PhaseDrawing && r.currentWord != "" {
			r.notice(fmt.Sprintf("The word was %q", r.currentWord))
		}
		// The slice shifted left under the drawer slot; step back so
		// advanceTurn lands on the player who inherited it.
		r.drawerIndex--
		r.advanceTurn()
	case r.phase == PhaseDrawing && r.allNonDrawersGuessed():
		r.advanceTurn()
	default:
		r.broadcast()
	}
	r.reg.updateDescription(r.description())
}

// --- client messages ---

func (r *Room) handleEnvelope(e envelope) {
	switch e.env.Type {
	case ws.TypeStartGame:
		var payload StartGamePayload
		if err := json.Unmarshal(e.env.Payload, &payload); err != nil {
			return
		}
		r.handleStart(e.from, payload.Config)
	case ws.TypeSelectWord:
		var payload SelectWordPayload
		if err := json.Unmarshal(e.env.Payload, &payload); err != nil {
			return
		}
		r.handleSelectWord(e.from, payload.Word)
	case ws.TypeChatMessage:
		var payload ChatMessagePayload
		if err := json.Unmarshal(e.env.Payload, &payload); err != nil {
			return
		}
		r.handleChat(e.from, payload.Text)
	case ws.TypeDraw, ws.TypeFill, ws.TypeClear, ws.TypeUndo, ws.TypeRedo, ws.TypeEndDraw:
		r.relayCanvas(e)
	case ws.TypeVoiceSignal:
		var payload VoiceSignalPayload
		if err := json.Unmarshal(e.env.Payload, &payload); err != nil {
			return
		}
		r.handleVoiceSignal(e.from, payload)
	case ws.TypeVoiceState:
		var payload VoiceStatePayload
		if err := json.Unmarshal(e.env.Payload, &payload); err != nil {
			return
		}
		r.handleVoiceState(e.from, payload)
	}
}

func (r *Room) handleStart(from string, cfg RoomConfig) {
	sender := r.playerByConn(from)
	if sender == nil {
		return
	}
	if from != r.hostID {
		r.noticeTo(sender, "Only the host can start the game")
		return
	}
	if r.phase != PhaseLobby && r.phase != PhaseEnded {
		return
	}
	if len(r.players) < 2 {
		r.noticeTo(sender, "Need at least 2 players to start")
		return
	}

	r.applyConfig(cfg)
	r.currentRound = 1
	r.drawerIndex = -1
	r.currentWord = ""
	r.wordOptions = nil
	for _, p := range r.players {
		p.score = 0
		p.guessed = false
	}
	r.log.Info().Int("rounds", r.maxRounds).Int("drawTime", r.drawSeconds).Msg("game started")
	r.advanceTurn()
	r.reg.updateDescription(r.description())
}

// advanceTurn rotates the drawer, bumping the round on wraparound,
// and either enters word selection or ends the game.
func (r *Room) advanceTurn() {
	if len(r.players) == 0 {
		return
	}

	r.currentWord = ""
	r.wordOptions = nil
	r.drawerIndex++
	if r.drawerIndex >= len(r.players) {
		r.drawerIndex = 0
		r.currentRound++
	}

	if r.currentRound > r.maxRounds {
		r.endGame()
		return
	}

	r.phase = PhaseSelecting
	for _, p := range r.players {
		p.guessed = false
	}
	r.wordOptions = r.word.Pick(r.wordChoices)
	r.timeLeft = r.selectSeconds
	r.broadcast()
}

func (r *Room) handleSelectWord(from string, word string) {
	drawer := r.drawer()
	if r.phase != PhaseSelecting || drawer == nil || drawer.connID != from {
		return
	}
	found := false
	for _, w := range r.wordOptions {
		if w == word {
			found = true
			break
		}
	}
	if !found {
		return
	}
	r.selectWord(word)
}

func (r *Room) selectWord(word string) {
	drawer := r.drawer()
	if r.phase != PhaseSelecting || drawer == nil {
		return
	}
	r.currentWord = word
	r.wordOptions = nil
	r.phase = PhaseDrawing
	r.timeLeft = r.drawSeconds
	r.log.Debug().Str("drawer", drawer.name).Msg("word selected")
	r.broadcast()
	r.notice(fmt.Sprintf("%s has chosen a word!", drawer.name))
}

func (r *Room) handleChat(from string, text string) {
	p := r.playerByConn(from)
	if p == nil {
		return
	}

	drawer := r.drawer()
	guess := strings.TrimSpace(text)
	if r.phase == PhaseDrawing && p != drawer && !p.guessed &&
		strings.EqualFold(guess, r.currentWord) {
		p.guessed = true
		p.score += guessReward(r.timeLeft, r.drawSeconds)
		if drawer != nil {
			drawer.score += drawerGuessReward
		}
		r.notice(fmt.Sprintf("%s guessed the word!", p.name))
		r.broadcast()
		if r.allNonDrawersGuessed() {
			r.advanceTurn()
		}
		return
	}

	echo := ws.NewEnvelope(ws.TypeChatMessage, ChatMessagePayload{
		RoomID: r.id,
		User:   p.name,
		Text:   text,
	})
	for _, member := range r.players {
		member.send(echo)
	}
}

// guessReward scales with remaining time, floored at 10 points.
func guessReward(timeLeft, drawSeconds int) int {
	if drawSeconds <= 0 {
		return 10
	}
	reward := int(math.Ceil(float64(timeLeft) / float64(drawSeconds) * 500))
	if reward < 10 {
		reward = 10
	}
	return reward
}

func (r *Room) allNonDrawersGuessed() bool {
	drawer := r.drawer()
	for _, p := range r.players {
		if p == drawer {
			continue
		}
		if !p.guessed {
			return false
		}
	}
	return true
}

func (r *Room) relayCanvas(e envelope) {
	if r.playerByConn(e.from) == nil {
		return
	}
	for _, p := range r.players {
		if p.connID == e.from {
			continue
		}
		p.send(e.env)
	}
}

func (r *Room) handleVoiceSignal(from string, payload VoiceSignalPayload) {
	if r.playerByConn(from) == nil {
		return
	}
	target := r.playerByConn(payload.Target)
	if target == nil {
		return
	}
	payload.From = from
	target.send(ws.NewEnvelope(ws.TypeVoiceSignal, payload))
}

func (r *Room) handleVoiceState(from string, payload VoiceStatePayload) {
	p := r.playerByConn(from)
	if p == nil {
		return
	}
	p.muted = payload.IsMuted
	p.deafened = payload.IsDeafened
	payload.RoomID = r.id
	payload.From = from
	env := ws.NewEnvelope(ws.TypeVoiceState, payload)
	for _, member := range r.players {
		member.send(env)
	}
}

// --- timer ---

func (r *Room) handleTick() {
	switch r.phase {
	case PhaseSelecting:
		r.timeLeft--
		if r.timeLeft <= 0 && len(r.wordOptions) > 0 {
			// Forward progress: the drawer never gets to stall a room.
			r.selectWord(r.wordOptions[0])
		}
	case PhaseDrawing:
		r.timeLeft--
		env := ws.NewEnvelope(ws.TypeTimerUpdate, TimerUpdatePayload{Seconds: r.timeLeft})
		for _, p := range r.players {
			p.send(env)
		}
		if r.timeLeft <= 0 {
			r.notice(fmt.Sprintf("Time's up! The word was %q", r.currentWord))
			r.advanceTurn()
		}
	}
}

// --- endings ---

func (r *Room) endGame() {
	r.phase = PhaseEnded
	r.timeLeft = 0
	r.currentWord = ""
	r.wordOptions = nil

	standings := make([]PlayerView, 0, len(r.players))
	winnerID := ""
	best := -1
	for _, p := range r.players {
		standings = append(standings, p.view())
		if p.score > best {
			best = p.score
			winnerID = p.connID
		}
	}

	env := ws.NewEnvelope(ws.TypeGameEnded, GameEndedPayload{Players: standings, WinnerID: winnerID})
	for _, p := range r.players {
		p.send(env)
	}
	r.broadcast()
	r.log.Info().Msg("game ended")
	r.reg.updateDescription(r.description())
}

func (r *Room) shutdown() {
	for _, p := range r.players {
		p.cancelRemoval()
	}
	r.reg.removeRoom(r.id)
	close(r.done)
	r.log.Info().Msg("room closed")
}

// --- fan-out ---

func (r *Room) broadcast() {
	for _, p := range r.players {
		p.send(ws.NewEnvelope(ws.TypeGameUpdate, r.viewFor(p)))
	}
}

func (r *Room) notice(text string) {
	env := ws.NewEnvelope(ws.TypeNotice, NoticePayload{Text: text})
	for _, p := range r.players {
		p.send(env)
	}
}

func (r *Room) noticeTo(p *Player, text string) {
	p.send(ws.NewEnvelope(ws.TypeNotice, NoticePayload{Text: text}))
}

func (r *Room) description() RoomDescription {
	return RoomDescription{
		ID:         r.id,
		Players:    len(r.players),
		MaxPlayers: r.maxPlayers,
		Phase:      r.phase.String(),
		Started:    r.phase != PhaseLobby,
	}
}
