package game

// viewFor computes the room view one recipient is allowed to see.
// Always built fresh per recipient, never cached or shared.
func (r *Room) viewFor(recipient *Player) GameUpdate {
	gu := GameUpdate{
		RoomID:       r.id,
		Phase:        r.phase.String(),
		Players:      make([]PlayerView, 0, len(r.players)),
		CurrentRound: r.currentRound,
		MaxRounds:    r.maxRounds,
		TimeLeft:     r.timeLeft,
		HostID:       r.hostID,
	}
	for _, p := range r.players {
		gu.Players = append(gu.Players, p.view())
	}

	drawer := r.drawer()
	if drawer != nil {
		gu.DrawerID = drawer.connID
	}

	switch r.phase {
	case PhaseSelecting:
		if drawer != nil && recipient == drawer {
			gu.WordOptions = append([]string(nil), r.wordOptions...)
		}
	case PhaseDrawing:
		if recipient == drawer || recipient.guessed {
			gu.Word = r.currentWord
		} else {
			gu.Word = maskWord(r.currentWord)
		}
	}
	return gu
}

// maskWord hides a word letter for letter, keeping word boundaries so
// guessers can see its shape.
func maskWord(word string) string {
	masked := []rune(word)
	for i, ch := range masked {
		if ch != ' ' {
			masked[i] = '_'
		}
	}
	return string(masked)
}
