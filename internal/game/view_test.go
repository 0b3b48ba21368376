package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskWord(t *testing.T) {
	assert.Equal(t, "___", maskWord("cat"))
	assert.Equal(t, "___ _____", maskWord("ice cream"), "spaces stay visible")
	assert.Equal(t, "", maskWord(""))
}

func TestViewFor_WordVisibility(t *testing.T) {
	r, _ := newTestRoom("r1", &MockWordSource{})
	drawer := &Player{connID: "conn-a", name: "alice", connected: true}
	guesser := &Player{connID: "conn-b", name: "bob", connected: true}
	solved := &Player{connID: "conn-c", name: "carol", connected: true, guessed: true}
	r.players = []*Player{drawer, guesser, solved}
	r.drawerIndex = 0
	r.phase = PhaseDrawing
	r.currentWord = "ice cream"

	assert.Equal(t, "ice cream", r.viewFor(drawer).Word)
	assert.Equal(t, "___ _____", r.viewFor(guesser).Word)
	assert.Equal(t, "ice cream", r.viewFor(solved).Word, "a solver sees the word")
}

func TestViewFor_OptionsOnlyForDrawer(t *testing.T) {
	r, _ := newTestRoom("r1", &MockWordSource{})
	drawer := &Player{connID: "conn-a", connected: true}
	other := &Player{connID: "conn-b", connected: true}
	r.players = []*Player{drawer, other}
	r.drawerIndex = 0
	r.phase = PhaseSelecting
	r.wordOptions = []string{"cat", "dog", "sun"}

	assert.Equal(t, []string{"cat", "dog", "sun"}, r.viewFor(drawer).WordOptions)
	assert.Empty(t, r.viewFor(other).WordOptions)
	assert.Equal(t, "conn-a", r.viewFor(other).DrawerID)
}
