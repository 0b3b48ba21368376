package game

import "encoding/json"

// RoomConfig is the client-supplied game configuration, accepted on
// room creation and on start-game.
type RoomConfig struct {
	MaxRounds  int `json:"maxRounds"`
	DrawTime   int `json:"drawTime"`
	MaxPlayers int `json:"maxPlayers,omitempty"`
}

type JoinRoomPayload struct {
	RoomID   string      `json:"roomId"`
	Username string      `json:"username"`
	Avatar   string      `json:"avatar"`
	Config   *RoomConfig `json:"config,omitempty"`
}

type StartGamePayload struct {
	RoomID string     `json:"roomId"`
	Config RoomConfig `json:"config"`
}

type SelectWordPayload struct {
	RoomID string `json:"roomId"`
	Word   string `json:"word"`
}

type ChatMessagePayload struct {
	RoomID string `json:"roomId"`
	User   string `json:"user"`
	Text   string `json:"text"`
}

type VoiceSignalPayload struct {
	Target string          `json:"target"`
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from,omitempty"`
}

type VoiceStatePayload struct {
	RoomID     string `json:"roomId"`
	IsMuted    bool   `json:"isMuted"`
	IsDeafened bool   `json:"isDeafened"`
	From       string `json:"from,omitempty"`
}

// PlayerView is the public slice of a player shared in every update.
type PlayerView struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar,omitempty"`
	Score      int    `json:"score"`
	HasGuessed bool   `json:"hasGuessed"`
	Connected  bool   `json:"connected"`
	IsMuted    bool   `json:"isMuted"`
	IsDeafened bool   `json:"isDeafened"`
}

// GameUpdate is the per-recipient room view. Word and WordOptions are
// filled according to the recipient's role.
type GameUpdate struct {
	RoomID       string       `json:"roomId"`
	Phase        string       `json:"phase"`
	Players      []PlayerView `json:"players"`
	DrawerID     string       `json:"drawerId,omitempty"`
	CurrentRound int          `json:"currentRound"`
	MaxRounds    int          `json:"maxRounds"`
	Word         string       `json:"word,omitempty"`
	WordOptions  []string     `json:"wordOptions,omitempty"`
	TimeLeft     int          `json:"timeLeft"`
	HostID       string       `json:"hostId"`
}

type NoticePayload struct {
	Text string `json:"text"`
}

type TimerUpdatePayload struct {
	Seconds int `json:"seconds"`
}

type GameEndedPayload struct {
	Players  []PlayerView `json:"players"`
	WinnerID string       `json:"winnerId,omitempty"`
}

type JoinErrorPayload struct {
	Error string `json:"error"`
}
